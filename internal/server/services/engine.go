// Package services is the lifecycle engine. Every mutating operation runs in
// one serializable transaction that re-reads the records it touches, asks the
// access policy, and performs the guarded write through the repositories.
// Any failure rolls the whole step back.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/logging"
	"github.com/dmitrijs2005/questkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "questkeeper/services"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store is the part of the record store gateway the engine needs.
type Store interface {
	WithSerializableTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Reader() dbx.DBTX
}

// engine carries the collaborators shared by the services.
type engine struct {
	store   Store
	repos   repomanager.RepositoryManager
	log     logging.Logger
	metrics metrics.Recorder
	tracer  trace.Tracer
	now     func() time.Time
}

func newEngine(store Store, repos repomanager.RepositoryManager, log logging.Logger, rec metrics.Recorder) engine {
	if log == nil {
		log = logging.Discard()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return engine{
		store:   store,
		repos:   repos,
		log:     log,
		metrics: rec,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
}

// transition runs fn as one serializable step on behalf of actor and records
// its outcome. kv are extra log fields naming the records involved.
func (e *engine) transition(ctx context.Context, op string, actor int64, fn func(ctx context.Context, tx dbx.DBTX) error, kv ...any) error {
	ctx, span := e.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("questkeeper.operation", op),
		attribute.Int64("questkeeper.actor", actor),
	))
	defer span.End()

	start := time.Now()
	err := e.store.WithSerializableTx(ctx, fn)
	e.metrics.Observe(op, err, time.Since(start))

	fields := append([]any{"operation", op, "actor", actor}, kv...)
	switch outcome := metrics.Outcome(err); outcome {
	case metrics.OutcomeOK:
		e.log.Info(ctx, "transition committed", fields...)
	case metrics.OutcomeError:
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition failed")
		e.log.Error(ctx, "transition failed", append(fields, "error", err)...)
	default:
		span.SetAttributes(attribute.String("questkeeper.outcome", outcome))
		e.log.Warn(ctx, "transition refused", append(fields, "outcome", outcome)...)
	}
	return err
}

// read runs a read-only query on the unscoped handle.
func (e *engine) read(ctx context.Context, op string, fn func(ctx context.Context, db dbx.DBTX) error) error {
	ctx, span := e.tracer.Start(ctx, op)
	defer span.End()

	err := fn(ctx, e.store.Reader())
	if err != nil && metrics.Outcome(err) == metrics.OutcomeError {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		e.log.Error(ctx, "read failed", "operation", op, "error", err)
	}
	return err
}

func validateInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInvalidInput, err)
	}
	return nil
}

func validateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInvalidInput, err)
	}
	return nil
}
