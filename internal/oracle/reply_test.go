package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply_ProseAndFences(t *testing.T) {
	text := "Sure! Here is the plan {as requested}:\n```json\n" + `{
  "loads": [
    {
      "load_id": "LOAD_001",
      "truck_type": "REEFER",
      "origin": "Toronto, ON",
      "orders": [
        {"id": 3, "origin": "Toronto, ON", "destination": "Detroit, MI", "weight_lbs": 12000, "volume_cuft": 900, "stop_sequence": 2},
        {"id": "7", "origin": "Toronto, ON", "destination": "Buffalo, NY", "weight_lbs": 8000, "volume_cuft": 600, "stop_sequence": 1}
      ],
      "total_weight_lbs": 1,
      "reasoning": "Buffalo first, then Detroit."
    }
  ],
  "summary": {"total_orders": 2, "total_loads": 1}
}` + "\n```\nLet me know if you need {anything} else."

	candidate, err := ParseReply(text)

	require.NoError(t, err)
	require.Len(t, candidate.Loads, 1)
	load := candidate.Loads[0]
	assert.True(t, load.HasStops)
	assert.Equal(t, "REEFER", load.TruckType)
	assert.InDelta(t, 1, load.ReportedWeightLbs, 0.001)
	require.Len(t, load.Stops, 2)
	assert.Equal(t, int64(3), load.Stops[0].OrderID)
	assert.Equal(t, 2, load.Stops[0].Sequence)
	assert.Equal(t, int64(7), load.Stops[1].OrderID)
}

func TestParseReply_Failures(t *testing.T) {
	cases := []struct {
		name string
		text string
		want error
	}{
		{name: "no json", text: "I cannot help with that.", want: ErrNoStructuredBlock},
		{name: "truncated", text: `{"loads": [{"orders": [`, want: ErrNoStructuredBlock},
		{name: "missing loads", text: `{"plan": []}`, want: ErrMissingLoads},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseReply(tc.text)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseReply_BadOrderID(t *testing.T) {
	_, err := ParseReply(`{"loads": [{"orders": [{"id": "order_abc"}]}]}`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "order_abc")
}

func TestParseReply_LoadWithoutOrders(t *testing.T) {
	candidate, err := ParseReply(`{"loads": [{"origin": "Toronto, ON"}]}`)

	require.NoError(t, err)
	require.Len(t, candidate.Loads, 1)
	assert.False(t, candidate.Loads[0].HasStops)
}
