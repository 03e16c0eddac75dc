package cleanup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/passkeep/internal/platform/errors"
	platformotel "github.com/louisbranch/passkeep/internal/platform/otel"
	"github.com/louisbranch/passkeep/internal/services/vault/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/louisbranch/passkeep/internal/tools/cleanup"

var (
	// ErrLookup marks failures to resolve a table or one of its operations.
	ErrLookup = errors.New("cleanup lookup failed")
	// ErrJobExecution marks failures raised by a cleanup operation itself.
	ErrJobExecution = errors.New("cleanup job failed")
	// ErrReported marks run failures already written to the command output.
	ErrReported = errors.New("cleanup failed")
)

// Runner executes every job of a registry against live table handles.
type Runner struct {
	registry *Registry
	locator  storage.TableLocator
	logger   *zap.Logger
	tracer   trace.Tracer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the structured logger for job events.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the tracer used for run and job spans.
func WithTracer(tracer trace.Tracer) RunnerOption {
	return func(r *Runner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// NewRunner builds a runner over registry and locator.
func NewRunner(registry *Registry, locator storage.TableLocator, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: registry,
		locator:  locator,
		logger:   zap.NewNop(),
		tracer:   platformotel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every registered job in order and returns the per-job counts.
//
// The first lookup or job failure stops the run. The returned report then
// holds the jobs that completed before it, whose effects are not rolled back.
// Dry-run semantics are left to the operations.
func (r *Runner) Run(ctx context.Context, dryRun bool) (Report, error) {
	report := Report{DryRun: dryRun, Jobs: []JobResult{}}
	if r.registry == nil {
		return report, fmt.Errorf("cleanup registry is required")
	}
	if r.locator == nil {
		return report, fmt.Errorf("table locator is required")
	}

	ctx, span := r.tracer.Start(ctx, "cleanup.run", trace.WithAttributes(attribute.Bool("cleanup.dry_run", dryRun)))
	defer span.End()

	for _, tableName := range r.registry.Tables() {
		table, err := r.resolveTable(tableName)
		if err != nil {
			return report, r.fail(span, err)
		}
		for _, job := range r.registry.Jobs(tableName) {
			result, err := r.runJob(ctx, table, tableName, job, dryRun)
			if err != nil {
				return report, r.fail(span, err)
			}
			report.Jobs = append(report.Jobs, result)
			report.Total += result.Count
		}
	}

	span.SetAttributes(attribute.Int("cleanup.total", report.Total))
	r.logger.Info("cleanup run completed", zap.Bool("dry_run", dryRun), zap.Int("total", report.Total), zap.Int("jobs", len(report.Jobs)))
	return report, nil
}

func (r *Runner) resolveTable(tableName string) (storage.Table, error) {
	metadata := map[string]string{"table": tableName}
	if strings.TrimSpace(tableName) == "" {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeCleanupTableNotFound, "resolve table", metadata,
			fmt.Errorf("%w: table name is empty", ErrLookup))
	}
	table, err := r.locator.Table(tableName)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeCleanupTableNotFound, "resolve table "+tableName, metadata,
			fmt.Errorf("%w: %w", ErrLookup, err))
	}
	if table == nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeCleanupTableNotFound, "resolve table "+tableName, metadata,
			fmt.Errorf("%w: no handle returned", ErrLookup))
	}
	return table, nil
}

func (r *Runner) runJob(ctx context.Context, table storage.Table, tableName, job string, dryRun bool) (JobResult, error) {
	operation := OperationName(job)
	metadata := map[string]string{"table": tableName, "job": job, "operation": operation}
	cleanup, ok := table.Operation(operation)
	if !ok || cleanup == nil {
		return JobResult{}, apperrors.WrapWithMetadata(apperrors.CodeCleanupOperationNotFound, "resolve "+tableName+"."+operation, metadata,
			fmt.Errorf("%w: operation %s is not defined on table %s", ErrLookup, operation, tableName))
	}

	ctx, span := r.tracer.Start(ctx, "cleanup.job", trace.WithAttributes(
		attribute.String("cleanup.table", tableName),
		attribute.String("cleanup.job", job),
		attribute.Bool("cleanup.dry_run", dryRun),
	))
	defer span.End()

	count, err := cleanup(ctx, dryRun)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cleanup job failed")
		return JobResult{}, apperrors.WrapWithMetadata(apperrors.CodeCleanupJobFailed, "run "+tableName+"."+operation, metadata,
			fmt.Errorf("%w: %w", ErrJobExecution, err))
	}
	if count < 0 {
		return JobResult{}, apperrors.WrapWithMetadata(apperrors.CodeCleanupJobFailed, "run "+tableName+"."+operation, metadata,
			fmt.Errorf("%w: negative count %d", ErrJobExecution, count))
	}
	span.SetAttributes(attribute.Int("cleanup.count", count))
	r.logger.Debug("cleanup job completed",
		zap.String("table", tableName),
		zap.String("job", job),
		zap.Int("count", count),
		zap.Bool("dry_run", dryRun),
	)
	return JobResult{Table: tableName, Job: job, Count: count}, nil
}

func (r *Runner) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "cleanup run failed")
	r.logger.Error("cleanup run failed", zap.Error(err), zap.String("code", string(apperrors.CodeOf(err))))
	return err
}
