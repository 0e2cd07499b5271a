package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/loadplanner/internal/cache"
	"github.com/Additional-Code/loadplanner/internal/consolidation"
)

var oracleTracer = otel.Tracer("github.com/Additional-Code/loadplanner/oracle")

// DefaultTimeout bounds a single oracle round trip.
const DefaultTimeout = 120 * time.Second

// Adapter asks a Completer for a plan and turns the reply into a tagged proposal.
type Adapter struct {
	completer Completer
	cache     cache.Store
	cacheTTL  time.Duration
	timeout   time.Duration
	scope     string
	logger    *zap.Logger
}

// AdapterOption customizes an Adapter.
type AdapterOption func(*Adapter)

// WithCacheScope keys cached replies by scope as well as by prompt, so replies produced
// under one model configuration are never served for another.
func WithCacheScope(scope string) AdapterOption {
	return func(a *Adapter) { a.scope = scope }
}

// NewAdapter builds an Adapter. A nil store disables reply caching.
func NewAdapter(completer Completer, store cache.Store, cacheTTL, timeout time.Duration, logger *zap.Logger, opts ...AdapterOption) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		completer: completer,
		cache:     store,
		cacheTTL:  cacheTTL,
		timeout:   timeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ consolidation.Oracle = (*Adapter)(nil)

// Propose never returns an error; failures come back as rejected proposals.
func (a *Adapter) Propose(ctx context.Context, orders []consolidation.Order, capacity consolidation.Capacity) consolidation.Proposal {
	ctx, span := oracleTracer.Start(ctx, "Oracle.Propose", trace.WithAttributes(attribute.Int("orders", len(orders))))
	defer span.End()

	prompt := BuildPrompt(orders, capacity)
	key := cacheKey(a.scope, prompt)

	reply, cached := a.cachedReply(ctx, key)
	if !cached {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		started := time.Now()
		text, err := a.completer.Complete(callCtx, prompt)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("oracle timed out after %s: %w", a.timeout, err)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "oracle unavailable")
			return consolidation.Rejected(err)
		}
		a.logger.Debug("oracle replied", zap.Duration("elapsed", time.Since(started)), zap.Int("bytes", len(text)))
		reply = text
	}

	candidate, err := ParseReply(reply)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparseable reply")
		return consolidation.Rejected(fmt.Errorf("parse oracle reply: %w", err))
	}

	if !cached {
		a.storeReply(ctx, key, reply)
	}
	span.SetAttributes(attribute.Int("candidate.loads", len(candidate.Loads)), attribute.Bool("cache.hit", cached))

	return consolidation.Accepted(candidate)
}

func (a *Adapter) cachedReply(ctx context.Context, key string) (string, bool) {
	if a.cache == nil {
		return "", false
	}
	b, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			a.logger.Warn("oracle cache read failed", zap.Error(err))
		}
		return "", false
	}
	return string(b), true
}

func (a *Adapter) storeReply(ctx context.Context, key, reply string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Set(ctx, key, []byte(reply), a.cacheTTL); err != nil {
		a.logger.Warn("oracle cache write failed", zap.Error(err))
	}
}

func cacheKey(scope, prompt string) string {
	h := sha256.New()
	h.Write([]byte(scope))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	sum := h.Sum(nil)
	return "oracle:reply:" + hex.EncodeToString(sum[:])
}
