package dto

import (
	"time"

	"github.com/Additional-Code/loadplanner/internal/consolidation"
	"github.com/Additional-Code/loadplanner/internal/entity"
	loadsvc "github.com/Additional-Code/loadplanner/internal/service/load"
)

// OptimizeRequest is the body of POST /loads/optimize.
type OptimizeRequest struct {
	OrderIDs []int64 `json:"order_ids"`
	DryRun   bool    `json:"dry_run"`
	Async    bool    `json:"async"`
}

// StopResponse is one stop of a planned load.
type StopResponse struct {
	OrderID      int64      `json:"id"`
	OrderNumber  string     `json:"order_number,omitempty"`
	Origin       string     `json:"origin"`
	Destination  string     `json:"destination"`
	WeightLbs    float64    `json:"weight_lbs"`
	VolumeCuft   float64    `json:"volume_cuft"`
	Priority     string     `json:"priority"`
	MustArriveBy *time.Time `json:"must_arrive_by,omitempty"`
	Sequence     int        `json:"stop_sequence"`
}

// PlannedLoadResponse is a candidate load in a plan.
type PlannedLoadResponse struct {
	TruckType     string         `json:"truck_type"`
	Origin        string         `json:"origin"`
	Orders        []StopResponse `json:"orders"`
	WeightLbs     float64        `json:"total_weight_lbs"`
	VolumeCuft    float64        `json:"total_volume_cuft"`
	Utilization   int            `json:"utilization_percent"`
	Infeasible    bool           `json:"infeasible,omitempty"`
	Underutilized bool           `json:"underutilized,omitempty"`
	Reasoning     string         `json:"reasoning"`
}

// SummaryResponse aggregates a plan.
type SummaryResponse struct {
	TotalOrders        int    `json:"total_orders"`
	TotalLoads         int    `json:"total_loads"`
	AvgUtilization     int    `json:"avg_utilization"`
	CostSavingsPercent int    `json:"cost_savings_percent"`
	Message            string `json:"message,omitempty"`
}

// PlanResponse is the planner output.
type PlanResponse struct {
	Source  string                `json:"source"`
	Loads   []PlannedLoadResponse `json:"loads"`
	Summary SummaryResponse       `json:"summary"`
	Repair  *RepairResponse       `json:"repair,omitempty"`
}

// RepairResponse reports what validation changed in an oracle proposal.
type RepairResponse struct {
	CandidateLoads  int    `json:"candidate_loads"`
	AcceptedLoads   int    `json:"accepted_loads"`
	SplitLoads      int    `json:"split_loads"`
	DroppedLoads    int    `json:"dropped_loads"`
	DroppedOrders   int    `json:"dropped_orders"`
	UnknownStops    int    `json:"unknown_stops"`
	DuplicateStops  int    `json:"duplicate_stops"`
	OmittedOrders   int    `json:"omitted_orders"`
	RenumberedLoads int    `json:"renumbered_loads"`
	BackfilledLoads int    `json:"backfilled_loads"`
	Fallback        bool   `json:"fallback"`
	FallbackReason  string `json:"fallback_reason,omitempty"`
}

// OptimizeResponse carries the plan and, when committed, the commit report.
type OptimizeResponse struct {
	Plan   PlanResponse    `json:"plan"`
	Commit *loadsvc.Report `json:"commit,omitempty"`
	DryRun bool            `json:"dry_run"`
}

// NewOptimizeResponse converts an optimization result.
func NewOptimizeResponse(r *loadsvc.OptimizeResult) OptimizeResponse {
	return OptimizeResponse{
		Plan:   NewPlanResponse(r.Plan),
		Commit: r.Report,
		DryRun: r.DryRun,
	}
}

// NewPlanResponse converts a plan.
func NewPlanResponse(p consolidation.Plan) PlanResponse {
	loads := make([]PlannedLoadResponse, len(p.Loads))
	for i, l := range p.Loads {
		stops := make([]StopResponse, len(l.Stops))
		for j, s := range l.Stops {
			stops[j] = StopResponse{
				OrderID:     s.OrderID,
				OrderNumber: s.OrderNumber,
				Origin:      s.Origin,
				Destination: s.Destination,
				WeightLbs:   s.WeightLbs,
				VolumeCuft:  s.VolumeCuft,
				Priority:    string(s.Priority),
				Sequence:    s.Sequence,
			}
			if !s.MustArriveBy.IsZero() {
				deadline := s.MustArriveBy
				stops[j].MustArriveBy = &deadline
			}
		}
		loads[i] = PlannedLoadResponse{
			TruckType:     string(l.TruckType),
			Origin:        l.Origin.String(),
			Orders:        stops,
			WeightLbs:     l.WeightLbs,
			VolumeCuft:    l.VolumeCuft,
			Utilization:   l.Utilization,
			Infeasible:    l.Infeasible,
			Underutilized: l.Underutilized,
			Reasoning:     l.Reasoning,
		}
	}
	return PlanResponse{
		Source: string(p.Source),
		Loads:  loads,
		Summary: SummaryResponse{
			TotalOrders:        p.Summary.TotalOrders,
			TotalLoads:         p.Summary.TotalLoads,
			AvgUtilization:     p.Summary.AvgUtilization,
			CostSavingsPercent: p.Summary.CostSavingsPercent,
			Message:            p.Summary.Message,
		},
		Repair: newRepairResponse(p.Repair),
	}
}

func newRepairResponse(r *consolidation.RepairReport) *RepairResponse {
	if r == nil {
		return nil
	}
	return &RepairResponse{
		CandidateLoads:  r.CandidateLoads,
		AcceptedLoads:   r.AcceptedLoads,
		SplitLoads:      r.SplitLoads,
		DroppedLoads:    r.DroppedLoads,
		DroppedOrders:   r.DroppedOrders,
		UnknownStops:    r.UnknownStops,
		DuplicateStops:  r.DuplicateStops,
		OmittedOrders:   r.OmittedOrders,
		RenumberedLoads: r.RenumberedLoads,
		BackfilledLoads: r.BackfilledLoads,
		Fallback:        r.Fallback,
		FallbackReason:  r.FallbackReason,
	}
}

// LoadStopResponse is a committed stop link.
type LoadStopResponse struct {
	OrderID        int64 `json:"order_id"`
	SequenceNumber int   `json:"sequence_number"`
}

// LoadResponse is a committed load.
type LoadResponse struct {
	ID                 string             `json:"id"`
	Number             string             `json:"load_number"`
	TruckType          string             `json:"truck_type"`
	Origin             string             `json:"origin"`
	TotalWeightLbs     float64            `json:"total_weight_lbs"`
	TotalVolumeCuft    float64            `json:"total_volume_cuft"`
	UtilizationPercent int                `json:"utilization_percent"`
	Status             string             `json:"status"`
	AssignedCarrier    string             `json:"assigned_carrier"`
	Reasoning          string             `json:"reasoning,omitempty"`
	MustArriveBy       *time.Time         `json:"must_arrive_by,omitempty"`
	MustPickUpBy       *time.Time         `json:"must_pick_up_by,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	Stops              []LoadStopResponse `json:"stops,omitempty"`
}

// NewLoadResponse converts a stored load.
func NewLoadResponse(l *entity.Load) LoadResponse {
	resp := LoadResponse{
		ID:                 l.ID,
		Number:             l.Number,
		TruckType:          l.TruckType,
		Origin:             l.Origin,
		TotalWeightLbs:     l.TotalWeightLbs,
		TotalVolumeCuft:    l.TotalVolumeCuft,
		UtilizationPercent: l.UtilizationPercent,
		Status:             l.Status,
		AssignedCarrier:    l.AssignedCarrier,
		Reasoning:          l.Reasoning,
		MustArriveBy:       l.MustArriveBy,
		MustPickUpBy:       l.MustPickUpBy,
		CreatedAt:          l.CreatedAt,
	}
	for _, lo := range l.Orders {
		resp.Stops = append(resp.Stops, LoadStopResponse{OrderID: lo.OrderID, SequenceNumber: lo.SequenceNumber})
	}
	return resp
}

// NewLoadList converts a slice of stored loads.
func NewLoadList(loads []entity.Load) []LoadResponse {
	out := make([]LoadResponse, len(loads))
	for i := range loads {
		out[i] = NewLoadResponse(&loads[i])
	}
	return out
}
