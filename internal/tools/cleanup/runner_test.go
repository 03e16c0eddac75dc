package cleanup

import (
	"context"
	"errors"
	"reflect"
	"testing"

	apperrors "github.com/louisbranch/passkeep/internal/platform/errors"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunExecutesJobsInOrder(t *testing.T) {
	locator := newFakeLocator(
		&fakeTable{name: "Favorites", counts: map[string]int{"cleanupSoftDeletedUsers": 2, "cleanupHardDeletedResources": 0}},
		&fakeTable{name: "Secrets", counts: map[string]int{"cleanupHardDeletedPermissions": 1}},
	)
	registry := NewRegistry(
		TableJobs{Table: "Favorites", Jobs: []string{"Soft Deleted Users", "Hard Deleted Resources"}},
		TableJobs{Table: "Secrets", Jobs: []string{"Hard Deleted Permissions"}},
	)

	report, err := NewRunner(registry, locator).Run(context.Background(), true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	wantJobs := []JobResult{
		{Table: "Favorites", Job: "Soft Deleted Users", Count: 2},
		{Table: "Favorites", Job: "Hard Deleted Resources", Count: 0},
		{Table: "Secrets", Job: "Hard Deleted Permissions", Count: 1},
	}
	if !reflect.DeepEqual(report.Jobs, wantJobs) {
		t.Fatalf("jobs = %#v, want %#v", report.Jobs, wantJobs)
	}
	if report.Total != 3 || !report.DryRun {
		t.Fatalf("report = %+v, want total 3 in dry-run", report)
	}
	wantCalls := []call{
		{table: "Favorites", operation: "cleanupSoftDeletedUsers", dryRun: true},
		{table: "Favorites", operation: "cleanupHardDeletedResources", dryRun: true},
		{table: "Secrets", operation: "cleanupHardDeletedPermissions", dryRun: true},
	}
	if !reflect.DeepEqual(locator.calls, wantCalls) {
		t.Fatalf("calls = %#v, want %#v", locator.calls, wantCalls)
	}
}

func TestRunPassesFixMode(t *testing.T) {
	locator := newFakeLocator(&fakeTable{name: "Widgets", counts: map[string]int{"cleanupSoftDeletedThings": 4}})
	registry := NewRegistry(TableJobs{Table: "Widgets", Jobs: []string{"Soft Deleted Things"}})

	report, err := NewRunner(registry, locator).Run(context.Background(), false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.DryRun || report.Total != 4 {
		t.Fatalf("report = %+v, want fix mode total 4", report)
	}
	if len(locator.calls) != 1 || locator.calls[0].dryRun {
		t.Fatalf("calls = %#v, want one fix-mode call", locator.calls)
	}
}

func TestRunDuplicateJobsRunTwice(t *testing.T) {
	locator := newFakeLocator(&fakeTable{name: "Secrets", counts: map[string]int{"cleanupSoftDeletedUsers": 1}})
	registry := NewRegistry(TableJobs{Table: "Secrets", Jobs: []string{"Soft Deleted Users", "Soft Deleted Users"}})

	report, err := NewRunner(registry, locator).Run(context.Background(), true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(locator.calls) != 2 || report.Total != 2 {
		t.Fatalf("calls = %d total = %d, want 2 and 2", len(locator.calls), report.Total)
	}
}

func TestRunUnknownTableStopsAfterEarlierTables(t *testing.T) {
	locator := newFakeLocator(&fakeTable{name: "Secrets", counts: map[string]int{"cleanupSoftDeletedUsers": 1}})
	registry := NewRegistry(
		TableJobs{Table: "Secrets", Jobs: []string{"Soft Deleted Users"}},
		TableJobs{Table: "Gadgets", Jobs: []string{"Soft Deleted Users"}},
	)

	report, err := NewRunner(registry, locator).Run(context.Background(), false)
	if !errors.Is(err, ErrLookup) {
		t.Fatalf("err = %v, want ErrLookup", err)
	}
	if errors.Is(err, ErrJobExecution) {
		t.Fatalf("err = %v, did not expect ErrJobExecution", err)
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeCleanupTableNotFound {
		t.Fatalf("code = %s, want %s", code, apperrors.CodeCleanupTableNotFound)
	}
	if len(locator.calls) != 1 || locator.calls[0].table != "Secrets" {
		t.Fatalf("calls = %#v, want the Secrets job to have run", locator.calls)
	}
	if len(report.Jobs) != 1 || report.Total != 1 {
		t.Fatalf("partial report = %+v, want the Secrets result", report)
	}
}

func TestRunEmptyTableName(t *testing.T) {
	registry := NewRegistry(TableJobs{Table: "", Jobs: []string{"Soft Deleted Users"}})
	_, err := NewRunner(registry, newFakeLocator()).Run(context.Background(), true)
	if !errors.Is(err, ErrLookup) {
		t.Fatalf("err = %v, want ErrLookup", err)
	}
}

func TestRunMissingOperation(t *testing.T) {
	locator := newFakeLocator(&fakeTable{name: "Secrets", counts: map[string]int{"cleanupSoftDeletedUsers": 0}})
	registry := NewRegistry(TableJobs{Table: "Secrets", Jobs: []string{"Soft Deleted Users", "Soft Deleted Groups"}})

	_, err := NewRunner(registry, locator).Run(context.Background(), true)
	if !errors.Is(err, ErrLookup) {
		t.Fatalf("err = %v, want ErrLookup", err)
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeCleanupOperationNotFound {
		t.Fatalf("code = %s, want %s", code, apperrors.CodeCleanupOperationNotFound)
	}
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected apperrors.Error, got %T", err)
	}
	if domainErr.Metadata["operation"] != "cleanupSoftDeletedGroups" {
		t.Fatalf("metadata = %v, want operation cleanupSoftDeletedGroups", domainErr.Metadata)
	}
}

func TestRunJobErrorIsExecutionError(t *testing.T) {
	boom := errors.New("disk full")
	locator := newFakeLocator(&fakeTable{
		name:   "Comments",
		counts: map[string]int{"cleanupSoftDeletedUsers": 5},
		errs:   map[string]error{"cleanupHardDeletedUsers": boom},
	})
	registry := NewRegistry(TableJobs{Table: "Comments", Jobs: []string{"Soft Deleted Users", "Hard Deleted Users"}})

	report, err := NewRunner(registry, locator).Run(context.Background(), false)
	if !errors.Is(err, ErrJobExecution) {
		t.Fatalf("err = %v, want ErrJobExecution", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want cause preserved", err)
	}
	if errors.Is(err, ErrLookup) {
		t.Fatalf("err = %v, did not expect ErrLookup", err)
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeCleanupJobFailed {
		t.Fatalf("code = %s, want %s", code, apperrors.CodeCleanupJobFailed)
	}
	if report.Total != 5 {
		t.Fatalf("partial total = %d, want 5", report.Total)
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	if _, err := NewRunner(nil, newFakeLocator()).Run(context.Background(), true); err == nil {
		t.Fatal("expected error for nil registry")
	}
	if _, err := NewRunner(NewRegistry(), nil).Run(context.Background(), true); err == nil {
		t.Fatal("expected error for nil locator")
	}
}

func TestRunEmptyRegistry(t *testing.T) {
	report, err := NewRunner(NewRegistry(), newFakeLocator()).Run(context.Background(), true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Total != 0 || len(report.Jobs) != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
}

func TestRunLogsJobsAndFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	locator := newFakeLocator(&fakeTable{name: "Secrets", counts: map[string]int{"cleanupSoftDeletedUsers": 2}})
	registry := NewRegistry(
		TableJobs{Table: "Secrets", Jobs: []string{"Soft Deleted Users"}},
		TableJobs{Table: "Gadgets", Jobs: []string{"Soft Deleted Users"}},
	)

	if _, err := NewRunner(registry, locator, WithLogger(zap.New(core))).Run(context.Background(), true); err == nil {
		t.Fatal("expected lookup error")
	}

	completed := logs.FilterMessage("cleanup job completed").All()
	if len(completed) != 1 {
		t.Fatalf("job logs = %d, want 1", len(completed))
	}
	fields := completed[0].ContextMap()
	if fields["table"] != "Secrets" || fields["count"] != int64(2) {
		t.Fatalf("job log fields = %v", fields)
	}
	failed := logs.FilterMessage("cleanup run failed").All()
	if len(failed) != 1 {
		t.Fatalf("failure logs = %d, want 1", len(failed))
	}
	if failed[0].ContextMap()["code"] != string(apperrors.CodeCleanupTableNotFound) {
		t.Fatalf("failure log fields = %v", failed[0].ContextMap())
	}
}

func TestRunRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	locator := newFakeLocator(&fakeTable{name: "Secrets", counts: map[string]int{"cleanupSoftDeletedUsers": 1, "cleanupHardDeletedUsers": 0}})
	registry := NewRegistry(TableJobs{Table: "Secrets", Jobs: []string{"Soft Deleted Users", "Hard Deleted Users"}})

	runner := NewRunner(registry, locator, WithTracer(provider.Tracer("test")))
	if _, err := runner.Run(context.Background(), true); err != nil {
		t.Fatalf("run: %v", err)
	}

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	want := []string{"cleanup.job", "cleanup.job", "cleanup.run"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("spans = %v, want %v", names, want)
	}
}
