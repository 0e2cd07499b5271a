package consolidation

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// NoOrdersMessage is reported when there is nothing to plan.
const NoOrdersMessage = "No unplanned orders available for optimization"

// Source records which planner produced a plan.
type Source string

const (
	SourceNone          Source = "none"
	SourceOracle        Source = "oracle"
	SourceDeterministic Source = "deterministic"
)

// Stop is one order's delivery point within a load.
type Stop struct {
	OrderID      int64
	OrderNumber  string
	Origin       string
	Destination  string
	WeightLbs    float64
	VolumeCuft   float64
	Priority     Priority
	MustArriveBy time.Time
	Sequence     int
}

func stopFromOrder(o Order, sequence int) Stop {
	return Stop{
		OrderID:      o.ID,
		OrderNumber:  o.Number,
		Origin:       o.Origin,
		Destination:  o.Destination,
		WeightLbs:    o.WeightLbs,
		VolumeCuft:   o.VolumeCuft,
		Priority:     o.Priority,
		MustArriveBy: o.MustArriveBy,
		Sequence:     sequence,
	}
}

// Load is a candidate truck dispatch with a single origin.
type Load struct {
	Origin        OriginKey
	TruckType     TruckType
	Stops         []Stop
	WeightLbs     float64
	VolumeCuft    float64
	Utilization   int
	Infeasible    bool
	Underutilized bool
	Reasoning     string
}

// OrderIDs lists the stop order ids in sequence.
func (l Load) OrderIDs() []int64 {
	ids := make([]int64, len(l.Stops))
	for i, s := range l.Stops {
		ids[i] = s.OrderID
	}
	return ids
}

// MustArriveBy returns the earliest stop deadline, and false when no stop has one.
func (l Load) MustArriveBy() (time.Time, bool) {
	var earliest time.Time
	for _, s := range l.Stops {
		if s.MustArriveBy.IsZero() {
			continue
		}
		if earliest.IsZero() || s.MustArriveBy.Before(earliest) {
			earliest = s.MustArriveBy
		}
	}
	return earliest, !earliest.IsZero()
}

// Summary aggregates a plan for reporting. CostSavingsPercent is informational only.
type Summary struct {
	TotalOrders        int
	TotalLoads         int
	AvgUtilization     int
	CostSavingsPercent int
	Message            string
}

// Plan is the ephemeral output of a planner.
type Plan struct {
	Source  Source
	Loads   []Load
	Summary Summary
	Repair  *RepairReport
}

// EmptyPlan is returned for an empty order set.
func EmptyPlan() Plan {
	return Plan{
		Source:  SourceNone,
		Loads:   []Load{},
		Summary: Summary{Message: NoOrdersMessage},
	}
}

// finalize renumbers stops and recomputes every derived load field.
func finalize(loads []Load, capacity Capacity) []Load {
	for i := range loads {
		l := &loads[i]
		l.Stops = Sequence(l.Stops)
		l.WeightLbs, l.VolumeCuft = 0, 0
		for _, s := range l.Stops {
			l.WeightLbs += s.WeightLbs
			l.VolumeCuft += s.VolumeCuft
		}
		if l.TruckType == "" {
			l.TruckType = TruckDryVan
		}
		l.Utilization = capacity.Utilization(l.WeightLbs, l.VolumeCuft)
		l.Infeasible = !capacity.Fits(l.WeightLbs, l.VolumeCuft)
		l.Underutilized = capacity.Underutilized(l.Utilization)
		if l.Reasoning == "" {
			l.Reasoning = describeLoad(*l)
		}
	}
	return loads
}

// Summarize computes the plan summary over the given loads.
func Summarize(loads []Load, totalOrders int) Summary {
	s := Summary{TotalOrders: totalOrders, TotalLoads: len(loads)}
	if len(loads) == 0 {
		return s
	}

	var utilization, stops int
	for _, l := range loads {
		utilization += l.Utilization
		stops += len(l.Stops)
	}

	s.AvgUtilization = int(math.Round(float64(utilization) / float64(len(loads))))
	avgStops := float64(stops) / float64(len(loads))
	s.CostSavingsPercent = int(math.Round(math.Min(50, (avgStops-1)*15)))
	return s
}

func describeLoad(l Load) string {
	destinations := make([]string, 0, 3)
	for i, s := range l.Stops {
		if i == 3 {
			break
		}
		destinations = append(destinations, s.Destination)
	}

	suffix := ""
	if len(l.Stops) > 3 {
		suffix = "..."
	}

	return fmt.Sprintf("Multi-stop load from %s with %d delivery stops: %s%s",
		l.Origin, len(l.Stops), strings.Join(destinations, ", "), suffix)
}
