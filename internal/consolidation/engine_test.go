package consolidation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestEngine_EmptyInput(t *testing.T) {
	oracle := &stubOracle{}
	engine := NewEngine(NewPacker(DefaultCapacity(), TruckDryVan), DefaultMaxDropFraction, WithOracle(oracle, 10))

	plan := engine.Plan(context.Background(), nil)

	assert.Empty(t, plan.Loads)
	assert.Equal(t, NoOrdersMessage, plan.Summary.Message)
	assert.Zero(t, oracle.calls)
}

func TestEngine_WithoutOracleUsesPacker(t *testing.T) {
	engine := NewEngine(NewPacker(DefaultCapacity(), TruckDryVan), DefaultMaxDropFraction)

	plan := engine.Plan(context.Background(), torontoOrders())

	assert.Equal(t, SourceDeterministic, plan.Source)
	assert.Nil(t, plan.Repair)
	assert.Len(t, plan.Loads, 2)
}

func TestEngine_OracleCeiling(t *testing.T) {
	oracle := &stubOracle{proposal: Rejected(errors.New("should not be asked"))}
	engine := NewEngine(
		NewPacker(DefaultCapacity(), TruckDryVan),
		DefaultMaxDropFraction,
		WithOracle(oracle, 5),
		WithLogger(zaptest.NewLogger(t)),
	)

	plan := engine.Plan(context.Background(), torontoOrders())

	assert.Zero(t, oracle.calls)
	assert.Equal(t, SourceDeterministic, plan.Source)
	assert.Nil(t, plan.Repair, "routing around the oracle is not an oracle fallback")
	assert.Equal(t, NewPacker(DefaultCapacity(), TruckDryVan).Plan(torontoOrders()), plan)
}

func TestEngine_OracleFailureFallsBack(t *testing.T) {
	oracle := &stubOracle{proposal: Rejected(context.DeadlineExceeded)}
	engine := NewEngine(NewPacker(DefaultCapacity(), TruckDryVan), DefaultMaxDropFraction, WithOracle(oracle, 100))

	plan := engine.Plan(context.Background(), torontoOrders())

	assert.Equal(t, 1, oracle.calls)
	assert.Equal(t, SourceDeterministic, plan.Source)
	assert.Equal(t, NewPacker(DefaultCapacity(), TruckDryVan).Plan(torontoOrders()).Loads, plan.Loads)
}

func TestEngine_OracleProposalValidated(t *testing.T) {
	oracle := &stubOracle{proposal: Accepted(Candidate{Loads: []CandidateLoad{
		candidateLoad("Toronto, ON", stop(1, 1), stop(2, 2), stop(3, 3)),
		candidateLoad("Toronto, ON", stop(4, 1), stop(5, 2), stop(6, 3), stop(7, 4)),
	}})}
	engine := NewEngine(NewPacker(DefaultCapacity(), TruckDryVan), DefaultMaxDropFraction, WithOracle(oracle, 100))

	plan := engine.Plan(context.Background(), torontoOrders())

	assert.Equal(t, SourceOracle, plan.Source)
	require.Len(t, plan.Loads, 2)
	assert.Equal(t, []int64{4, 5, 6, 7}, plan.Loads[1].OrderIDs())
	assert.Equal(t, 2, plan.Summary.TotalLoads)
	assert.Equal(t, 38, plan.Summary.CostSavingsPercent)
}
