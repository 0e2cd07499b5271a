package consolidation

import (
	"context"

	"go.uber.org/zap"
)

// DefaultOracleMaxOrders is the largest order set sent to the oracle.
const DefaultOracleMaxOrders = 500

// Engine plans loads for an order set, preferring the oracle when it is eligible and
// always returning a plan that covers every order.
type Engine struct {
	packer          Packer
	validator       Validator
	oracle          Oracle
	oracleMaxOrders int
	logger          *zap.Logger
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithOracle enables the oracle path for order sets of at most maxOrders orders.
func WithOracle(oracle Oracle, maxOrders int) EngineOption {
	return func(e *Engine) {
		e.oracle = oracle
		if maxOrders > 0 {
			e.oracleMaxOrders = maxOrders
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine wires the deterministic planner, the validator and an optional oracle.
func NewEngine(packer Packer, maxDropFraction float64, opts ...EngineOption) *Engine {
	e := &Engine{
		packer:          packer,
		oracleMaxOrders: DefaultOracleMaxOrders,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.validator = NewValidator(packer, maxDropFraction, e.logger)
	return e
}

// Capacity returns the capacity model in use.
func (e *Engine) Capacity() Capacity {
	return e.packer.Capacity()
}

// Plan never fails: oracle problems turn into the deterministic plan.
func (e *Engine) Plan(ctx context.Context, orders []Order) Plan {
	if len(orders) == 0 {
		return EmptyPlan()
	}

	if e.oracle == nil {
		return e.packer.Plan(orders)
	}

	if len(orders) > e.oracleMaxOrders {
		e.logger.Info("order set exceeds oracle ceiling; using deterministic planner",
			zap.Int("orders", len(orders)),
			zap.Int("ceiling", e.oracleMaxOrders),
		)
		return e.packer.Plan(orders)
	}

	proposal := e.oracle.Propose(ctx, orders, e.packer.Capacity())
	if err := proposal.Reason(); err != nil {
		e.logger.Warn("oracle proposal rejected", zap.Error(err))
	}

	return e.validator.Repair(orders, proposal)
}
