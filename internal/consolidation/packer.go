package consolidation

import (
	"slices"
	"strings"
)

// Packer is the deterministic first-fit planner. The zero value is not usable; use NewPacker.
type Packer struct {
	capacity  Capacity
	truckType TruckType
}

// NewPacker builds a packer for the given capacity model.
func NewPacker(capacity Capacity, truckType TruckType) Packer {
	if truckType == "" {
		truckType = TruckDryVan
	}
	return Packer{capacity: capacity, truckType: truckType}
}

// Capacity exposes the ceilings the packer plans against.
func (p Packer) Capacity() Capacity {
	return p.capacity
}

// Plan groups orders by origin and packs every group. Every input order lands in exactly one load.
func (p Packer) Plan(orders []Order) Plan {
	if len(orders) == 0 {
		return EmptyPlan()
	}

	loads := p.pack(orders)
	return Plan{
		Source:  SourceDeterministic,
		Loads:   loads,
		Summary: Summarize(loads, len(orders)),
	}
}

func (p Packer) pack(orders []Order) []Load {
	loads := make([]Load, 0)
	for _, group := range GroupByOrigin(orders) {
		loads = append(loads, p.PackGroup(group)...)
	}
	return loads
}

// PackGroup packs one origin group greedily in ascending destination order.
// A load is closed as soon as the next order would break either ceiling; an order too
// large on its own still gets a load, which comes back flagged Infeasible.
func (p Packer) PackGroup(group OriginGroup) []Load {
	ordered := slices.Clone(group.Orders)
	slices.SortStableFunc(ordered, func(a, b Order) int {
		return strings.Compare(a.Destination, b.Destination)
	})

	var (
		loads   []Load
		current []Stop
		weight  float64
		volume  float64
	)

	closeLoad := func() {
		if len(current) == 0 {
			return
		}
		loads = append(loads, Load{
			Origin:    group.Key,
			TruckType: p.truckType,
			Stops:     current,
		})
		current, weight, volume = nil, 0, 0
	}

	for _, o := range ordered {
		if len(current) > 0 && !p.capacity.Fits(weight+o.WeightLbs, volume+o.VolumeCuft) {
			closeLoad()
		}
		current = append(current, stopFromOrder(o, len(current)+1))
		weight += o.WeightLbs
		volume += o.VolumeCuft
	}
	closeLoad()

	return finalize(loads, p.capacity)
}
