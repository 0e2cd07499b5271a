package load

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Additional-Code/loadplanner/internal/cache"
)

const loadNumberKey = "loads:number"

// IDGenerator assigns load identity: a uuid plus a human load number drawn from a shared counter.
type IDGenerator struct {
	counter cache.Store
	prefix  string
	logger  *zap.Logger
}

// NewIDGenerator builds a generator. A nil counter, or one that cannot increment, yields
// uuid-derived numbers.
func NewIDGenerator(counter cache.Store, prefix string, logger *zap.Logger) *IDGenerator {
	if prefix == "" {
		prefix = "LOAD"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IDGenerator{counter: counter, prefix: prefix, logger: logger}
}

// Next returns a fresh load id and number.
func (g *IDGenerator) Next(ctx context.Context) (id, number string) {
	id = uuid.NewString()

	if g.counter != nil {
		n, err := g.counter.Incr(ctx, loadNumberKey)
		if err == nil {
			return id, fmt.Sprintf("%s-%06d", g.prefix, n)
		}
		if !errors.Is(err, cache.ErrUnsupported) {
			g.logger.Warn("load number counter unavailable; using uuid", zap.Error(err))
		}
	}

	return id, g.prefix + "-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:12])
}
