package consolidation

import (
	"math"
	"time"
)

const (
	// DefaultMaxWeightLbs is the legal payload of a 53ft dry van.
	DefaultMaxWeightLbs = 45000.0
	// DefaultMaxVolumeCuft is the usable cube of a 53ft dry van.
	DefaultMaxVolumeCuft = 4000.0
	// DefaultTargetUtilization is the fill ratio planners aim for.
	DefaultTargetUtilization = 0.85
	// DefaultMinUtilization marks loads worth re-planning.
	DefaultMinUtilization = 0.60
	// DefaultTransitBuffer separates the pickup deadline from the earliest delivery deadline.
	DefaultTransitBuffer = 48 * time.Hour
)

// TruckType identifies the equipment a load is planned for.
type TruckType string

const (
	TruckDryVan  TruckType = "DRY_VAN"
	TruckReefer  TruckType = "REEFER"
	TruckFlatbed TruckType = "FLATBED"
)

// TruckTypes lists the equipment offered to planners.
var TruckTypes = []TruckType{TruckDryVan, TruckReefer, TruckFlatbed}

// DisplayName is the label persisted on load records.
func (t TruckType) DisplayName() string {
	switch t {
	case TruckDryVan:
		return "Dry Van 53ft"
	case TruckReefer:
		return "Reefer 53ft"
	case TruckFlatbed:
		return "Flatbed 48ft"
	default:
		return string(t)
	}
}

// ParseTruckType maps free text onto a known truck type, defaulting to dry van.
func ParseTruckType(s string) TruckType {
	for _, t := range TruckTypes {
		if string(t) == s {
			return t
		}
	}
	return TruckDryVan
}

// Capacity holds the ceilings and targets a load is planned against.
type Capacity struct {
	MaxWeightLbs      float64
	MaxVolumeCuft     float64
	TargetUtilization float64
	MinUtilization    float64
	TransitBuffer     time.Duration
}

// DefaultCapacity returns the standard dry van capacity model.
func DefaultCapacity() Capacity {
	return Capacity{
		MaxWeightLbs:      DefaultMaxWeightLbs,
		MaxVolumeCuft:     DefaultMaxVolumeCuft,
		TargetUtilization: DefaultTargetUtilization,
		MinUtilization:    DefaultMinUtilization,
		TransitBuffer:     DefaultTransitBuffer,
	}
}

// Fits reports whether the aggregate weight and volume stay within both ceilings.
func (c Capacity) Fits(weightLbs, volumeCuft float64) bool {
	return weightLbs <= c.MaxWeightLbs && volumeCuft <= c.MaxVolumeCuft
}

// Utilization returns the binding dimension as a rounded percentage of its ceiling.
func (c Capacity) Utilization(weightLbs, volumeCuft float64) int {
	var w, v float64
	if c.MaxWeightLbs > 0 {
		w = weightLbs / c.MaxWeightLbs
	}
	if c.MaxVolumeCuft > 0 {
		v = volumeCuft / c.MaxVolumeCuft
	}
	return int(math.Round(math.Max(w, v) * 100))
}

// Underutilized reports whether a utilization percentage sits below the minimum target.
func (c Capacity) Underutilized(utilization int) bool {
	return float64(utilization) < c.MinUtilization*100
}
