package consolidation

import "strings"

const unknownOriginLabel = "Unknown"

// OriginKey identifies a pickup location. The zero value is not valid; use OriginOf or UnknownOrigin.
type OriginKey struct {
	name    string
	unknown bool
}

// UnknownOrigin groups orders that arrive without a pickup location.
var UnknownOrigin = OriginKey{unknown: true}

// KnownOrigin builds a key for a named origin. Matching is exact and case-sensitive.
func KnownOrigin(name string) OriginKey {
	return OriginKey{name: name}
}

// OriginOf maps a raw origin string onto a key, treating blank strings as unknown.
func OriginOf(origin string) OriginKey {
	if strings.TrimSpace(origin) == "" {
		return UnknownOrigin
	}
	return KnownOrigin(origin)
}

// IsUnknown reports whether the key is the missing-origin sentinel.
func (k OriginKey) IsUnknown() bool {
	return k.unknown
}

// Name returns the origin label, or an empty string for the sentinel.
func (k OriginKey) Name() string {
	return k.name
}

// String renders the key for persistence and logs.
func (k OriginKey) String() string {
	if k.unknown {
		return unknownOriginLabel
	}
	return k.name
}

// OriginGroup is the set of orders sharing one pickup location, in input order.
type OriginGroup struct {
	Key    OriginKey
	Orders []Order
}

// GroupByOrigin partitions orders by origin. Groups appear in order of first occurrence.
func GroupByOrigin(orders []Order) []OriginGroup {
	index := make(map[OriginKey]int)
	groups := make([]OriginGroup, 0)

	for _, o := range orders {
		key := o.OriginKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, OriginGroup{Key: key})
		}
		groups[i].Orders = append(groups[i].Orders, o)
	}

	return groups
}
