package consolidation

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxDropFraction is the share of input orders a repaired plan may leave uncovered
// before it is discarded in favour of the deterministic planner.
const DefaultMaxDropFraction = 0.2

var (
	errMissingStops     = errors.New("candidate load has no stop list")
	errEmptyCandidate   = errors.New("candidate has no loads")
	errNoValidLoads     = errors.New("no loads survived validation")
	errTooManyUncovered = errors.New("too many orders left uncovered")
)

// RepairReport describes what the validator changed in an oracle candidate.
type RepairReport struct {
	CandidateLoads  int
	AcceptedLoads   int
	SplitLoads      int
	DroppedLoads    int
	DroppedOrders   int
	UnknownStops    int
	DuplicateStops  int
	OmittedOrders   int
	RenumberedLoads int
	BackfilledLoads int
	Fallback        bool
	FallbackReason  string
}

// Validator checks oracle candidates against the capacity model and repairs them.
type Validator struct {
	packer          Packer
	maxDropFraction float64
	logger          *zap.Logger
}

// NewValidator builds a validator that falls back to packer.
func NewValidator(packer Packer, maxDropFraction float64, logger *zap.Logger) Validator {
	if maxDropFraction < 0 {
		maxDropFraction = DefaultMaxDropFraction
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return Validator{packer: packer, maxDropFraction: maxDropFraction, logger: logger}
}

// Repair turns a proposal into a plan that covers every input order. Stops are resolved
// against the input orders, so weight, volume and origin never come from the oracle.
func (v Validator) Repair(orders []Order, proposal Proposal) Plan {
	if len(orders) == 0 {
		return EmptyPlan()
	}

	candidate, ok := proposal.Candidate()
	if !ok {
		return v.fallback(orders, RepairReport{}, proposal.Reason())
	}

	report := RepairReport{CandidateLoads: len(candidate.Loads)}
	if len(candidate.Loads) == 0 {
		return v.fallback(orders, report, errEmptyCandidate)
	}

	byID := make(map[int64]Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	claimed := make(map[int64]bool, len(orders))

	loads := make([]Load, 0, len(candidate.Loads))
	for i, cl := range candidate.Loads {
		if !cl.HasStops {
			return v.fallback(orders, report, fmt.Errorf("load %d: %w", i+1, errMissingStops))
		}

		stops := make([]Stop, 0, len(cl.Stops))
		for _, cs := range cl.Stops {
			o, known := byID[cs.OrderID]
			if !known {
				report.UnknownStops++
				continue
			}
			if claimed[o.ID] {
				report.DuplicateStops++
				continue
			}
			claimed[o.ID] = true
			stops = append(stops, stopFromOrder(o, cs.Sequence))
		}
		if len(stops) == 0 {
			v.logger.Warn("candidate load has no resolvable stops", zap.Int("load", i+1))
			continue
		}

		parts := splitByOrigin(stops)
		if len(parts) > 1 {
			report.SplitLoads++
			v.logger.Info("split mixed-origin candidate load",
				zap.Int("load", i+1),
				zap.Int("origins", len(parts)),
			)
		}

		for _, part := range parts {
			weight, volume := totals(part.stops)
			if !v.packer.capacity.Fits(weight, volume) {
				report.DroppedLoads++
				report.DroppedOrders += len(part.stops)
				v.logger.Warn("dropped over-capacity candidate load",
					zap.Int("load", i+1),
					zap.String("origin", part.key.String()),
					zap.Float64("weight_lbs", weight),
					zap.Float64("volume_cuft", volume),
					zap.Float64("reported_weight_lbs", cl.ReportedWeightLbs),
				)
				continue
			}

			if !Contiguous(part.stops) {
				report.RenumberedLoads++
			}

			reasoning := cl.Reasoning
			if len(parts) > 1 {
				reasoning = ""
			}
			loads = append(loads, Load{
				Origin:    part.key,
				TruckType: ParseTruckType(cl.TruckType),
				Stops:     Resequence(part.stops),
				Reasoning: reasoning,
			})
		}
	}

	if len(loads) == 0 {
		return v.fallback(orders, report, errNoValidLoads)
	}

	covered := make(map[int64]bool, len(orders))
	for _, l := range loads {
		for _, s := range l.Stops {
			covered[s.OrderID] = true
		}
	}
	uncovered := make([]Order, 0)
	for _, o := range orders {
		if !covered[o.ID] {
			uncovered = append(uncovered, o)
			if !claimed[o.ID] {
				report.OmittedOrders++
			}
		}
	}

	if fraction := float64(len(uncovered)) / float64(len(orders)); fraction > v.maxDropFraction {
		return v.fallback(orders, report, fmt.Errorf("%w: %d of %d", errTooManyUncovered, len(uncovered), len(orders)))
	}

	loads = finalize(loads, v.packer.capacity)
	if len(uncovered) > 0 {
		backfill := v.packer.pack(uncovered)
		report.BackfilledLoads = len(backfill)
		loads = append(loads, backfill...)
	}
	report.AcceptedLoads = len(loads) - report.BackfilledLoads

	return Plan{
		Source:  SourceOracle,
		Loads:   loads,
		Summary: Summarize(loads, len(orders)),
		Repair:  &report,
	}
}

func (v Validator) fallback(orders []Order, report RepairReport, reason error) Plan {
	report.Fallback = true
	if reason != nil {
		report.FallbackReason = reason.Error()
	}
	v.logger.Info("falling back to deterministic planner",
		zap.String("reason", report.FallbackReason),
		zap.Int("orders", len(orders)),
	)

	plan := v.packer.Plan(orders)
	plan.Repair = &report
	return plan
}

type originPart struct {
	key   OriginKey
	stops []Stop
}

func splitByOrigin(stops []Stop) []originPart {
	index := make(map[OriginKey]int)
	parts := make([]originPart, 0, 1)
	for _, s := range stops {
		key := OriginOf(s.Origin)
		i, ok := index[key]
		if !ok {
			i = len(parts)
			index[key] = i
			parts = append(parts, originPart{key: key})
		}
		parts[i].stops = append(parts[i].stops, s)
	}
	return parts
}

func totals(stops []Stop) (weight, volume float64) {
	for _, s := range stops {
		weight += s.WeightLbs
		volume += s.VolumeCuft
	}
	return weight, volume
}
