package oracle

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Additional-Code/loadplanner/internal/consolidation"
)

const replyShape = `{
    "loads": [
        {
            "load_id": "LOAD_001",
            "truck_type": "DRY_VAN",
            "origin": "Toronto, ON",
            "orders": [
                {
                    "id": 101,
                    "order_number": "ORD-00101",
                    "origin": "Toronto, ON",
                    "destination": "Detroit, MI",
                    "weight_lbs": 12000,
                    "volume_cuft": 1000,
                    "stop_sequence": 1,
                    "priority": "Normal"
                }
            ],
            "total_weight_lbs": 12000,
            "total_volume_cuft": 1000,
            "utilization_percent": 27,
            "reasoning": "Why these stops belong together and why they are in this order."
        }
    ],
    "summary": {
        "total_orders": 1,
        "total_loads": 1,
        "avg_utilization": 27,
        "cost_savings_percent": 0
    }
}`

// BuildPrompt renders the planning problem for the oracle.
func BuildPrompt(orders []consolidation.Order, capacity consolidation.Capacity) string {
	target := formatNumber(math.Round(capacity.TargetUtilization*10000) / 100)

	truckTypes := make([]string, len(consolidation.TruckTypes))
	for i, t := range consolidation.TruckTypes {
		truckTypes[i] = string(t)
	}

	var b strings.Builder
	b.WriteString("You are a logistics expert specializing in load optimization for trucking.\n\n")

	b.WriteString("TRUCK CONSTRAINTS:\n")
	fmt.Fprintf(&b, "- Max Weight: %s lbs\n", formatNumber(capacity.MaxWeightLbs))
	fmt.Fprintf(&b, "- Max Volume: %s cubic feet\n", formatNumber(capacity.MaxVolumeCuft))
	fmt.Fprintf(&b, "- Available Truck Types: %s\n", strings.Join(truckTypes, ", "))
	fmt.Fprintf(&b, "- Target Utilization: %s%%\n\n", target)

	b.WriteString("ORDERS TO OPTIMIZE:\n")
	for _, o := range orders {
		b.WriteString(describeOrder(o))
		b.WriteByte('\n')
	}

	b.WriteString("\nTASK:\nCreate a load plan that:\n")
	b.WriteString("1. Groups orders from the SAME ORIGIN into multi-stop loads\n")
	b.WriteString("2. Puts several destination stops on each truck where capacity allows\n")
	b.WriteString("3. Sequences stops logically (geographic proximity, delivery deadlines)\n")
	b.WriteString("4. Keeps the running weight and volume within the truck constraints at every stop\n")
	fmt.Fprintf(&b, "5. Maximizes truck utilization (aim for %s%%+ capacity)\n", target)
	b.WriteString("6. Serves higher priority orders earlier in the sequence\n\n")

	b.WriteString("RULES:\n")
	b.WriteString("- Each load MUST have exactly ONE origin\n")
	b.WriteString("- Orders can only share a load if they share the same origin\n")
	b.WriteString("- Every order id above must appear in exactly one load\n")
	b.WriteString("- stop_sequence starts at 1 and increases by 1 within each load\n\n")

	b.WriteString("Return only a JSON object with this structure:\n")
	b.WriteString(replyShape)
	b.WriteByte('\n')

	return b.String()
}

func describeOrder(o consolidation.Order) string {
	origin := o.Origin
	if strings.TrimSpace(origin) == "" {
		origin = consolidation.UnknownOrigin.String()
	}
	priority := o.Priority
	if priority == "" {
		priority = consolidation.PriorityNormal
	}

	line := fmt.Sprintf("Order %d: %s lbs, %s cu.ft, From %s to %s, Priority: %s",
		o.ID, formatNumber(o.WeightLbs), formatNumber(o.VolumeCuft), origin, o.Destination, priority)
	if !o.MustArriveBy.IsZero() {
		line += ", Must arrive by: " + o.MustArriveBy.UTC().Format("2006-01-02T15:04Z")
	}
	return line
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
