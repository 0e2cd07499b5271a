package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/loadplanner/internal/consolidation"
)

func TestNewPlanResponse(t *testing.T) {
	deadline := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	packer := consolidation.NewPacker(consolidation.DefaultCapacity(), consolidation.TruckReefer)
	plan := packer.Plan([]consolidation.Order{
		{ID: 1, Origin: "Toronto, ON", Destination: "B", WeightLbs: 100, VolumeCuft: 1, Priority: consolidation.PriorityHigh, MustArriveBy: deadline},
		{ID: 2, Destination: "A", WeightLbs: 100, VolumeCuft: 1},
	})

	resp := NewPlanResponse(plan)

	assert.Equal(t, "deterministic", resp.Source)
	require.Len(t, resp.Loads, 2)
	assert.Equal(t, "REEFER", resp.Loads[0].TruckType)
	assert.Equal(t, "Unknown", resp.Loads[1].Origin)
	require.NotNil(t, resp.Loads[0].Orders[0].MustArriveBy)
	assert.True(t, deadline.Equal(*resp.Loads[0].Orders[0].MustArriveBy))
	assert.Nil(t, resp.Loads[1].Orders[0].MustArriveBy)
	assert.Equal(t, 1, resp.Loads[0].Orders[0].Sequence)
	assert.Nil(t, resp.Repair)
	assert.Equal(t, 2, resp.Summary.TotalOrders)
}

func TestNewPlanResponse_Empty(t *testing.T) {
	resp := NewPlanResponse(consolidation.EmptyPlan())

	assert.Equal(t, "none", resp.Source)
	assert.NotNil(t, resp.Loads)
	assert.Equal(t, consolidation.NoOrdersMessage, resp.Summary.Message)
}

func TestNewRepairResponse(t *testing.T) {
	r := newRepairResponse(&consolidation.RepairReport{DroppedLoads: 1, Fallback: true, FallbackReason: "x"})

	require.NotNil(t, r)
	assert.Equal(t, 1, r.DroppedLoads)
	assert.True(t, r.Fallback)
}
