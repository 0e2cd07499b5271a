package oracle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Additional-Code/loadplanner/internal/consolidation"
)

var (
	// ErrNoStructuredBlock means the reply contained no decodable JSON object.
	ErrNoStructuredBlock = errors.New("reply contains no JSON object")
	// ErrMissingLoads means the JSON object lacks the loads list.
	ErrMissingLoads = errors.New("reply is missing loads")
)

type replyPlan struct {
	Loads   *[]replyLoad  `json:"loads"`
	Summary *replySummary `json:"summary"`
}

type replyLoad struct {
	LoadID             string       `json:"load_id"`
	TruckType          string       `json:"truck_type"`
	Origin             string       `json:"origin"`
	Orders             *[]replyStop `json:"orders"`
	TotalWeightLbs     float64      `json:"total_weight_lbs"`
	TotalVolumeCuft    float64      `json:"total_volume_cuft"`
	UtilizationPercent float64      `json:"utilization_percent"`
	Reasoning          string       `json:"reasoning"`
}

type replyStop struct {
	ID           orderID `json:"id"`
	OrderNumber  string  `json:"order_number"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	WeightLbs    float64 `json:"weight_lbs"`
	VolumeCuft   float64 `json:"volume_cuft"`
	StopSequence int     `json:"stop_sequence"`
	Priority     string  `json:"priority"`
}

type replySummary struct {
	TotalOrders        int     `json:"total_orders"`
	TotalLoads         int     `json:"total_loads"`
	AvgUtilization     float64 `json:"avg_utilization"`
	CostSavingsPercent float64 `json:"cost_savings_percent"`
}

// orderID accepts ids written as JSON numbers or as quoted numbers.
type orderID int64

func (id *orderID) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("order id %q: %w", raw, err)
	}
	*id = orderID(v)
	return nil
}

// ParseReply extracts the first top-level JSON object from free text and maps it onto a
// candidate. Prose and code fences around the object are ignored.
func ParseReply(text string) (consolidation.Candidate, error) {
	block, err := firstObject(text)
	if err != nil {
		return consolidation.Candidate{}, err
	}

	var plan replyPlan
	if err := json.Unmarshal(block, &plan); err != nil {
		return consolidation.Candidate{}, fmt.Errorf("decode reply: %w", err)
	}
	if plan.Loads == nil {
		return consolidation.Candidate{}, ErrMissingLoads
	}

	candidate := consolidation.Candidate{Loads: make([]consolidation.CandidateLoad, 0, len(*plan.Loads))}
	for _, l := range *plan.Loads {
		cl := consolidation.CandidateLoad{
			Origin:              l.Origin,
			TruckType:           l.TruckType,
			HasStops:            l.Orders != nil,
			ReportedWeightLbs:   l.TotalWeightLbs,
			ReportedVolumeCuft:  l.TotalVolumeCuft,
			ReportedUtilization: l.UtilizationPercent,
			Reasoning:           l.Reasoning,
		}
		if l.Orders != nil {
			cl.Stops = make([]consolidation.CandidateStop, 0, len(*l.Orders))
			for _, s := range *l.Orders {
				cl.Stops = append(cl.Stops, consolidation.CandidateStop{
					OrderID:     int64(s.ID),
					Origin:      s.Origin,
					Destination: s.Destination,
					WeightLbs:   s.WeightLbs,
					VolumeCuft:  s.VolumeCuft,
					Sequence:    s.StopSequence,
				})
			}
		}
		candidate.Loads = append(candidate.Loads, cl)
	}

	return candidate, nil
}

// firstObject returns the first '{' that starts a complete JSON object.
func firstObject(text string) ([]byte, error) {
	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i

		var raw json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[start:]))
		if err := dec.Decode(&raw); err == nil {
			return raw, nil
		}
		offset = start + 1
	}
	return nil, ErrNoStructuredBlock
}
