package queue_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"clipforge/internal/queue"
	"clipforge/internal/testsupport"
)

func TestOpenCreatesSchemaAndInsertsItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewFile(ctx, filepath.Join(cfg.Paths.WatchDir, "ranked_match.mp4"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}
	if item.RunID == "" {
		t.Fatal("expected run ID to be assigned")
	}
	if item.Title != "ranked match" {
		t.Fatalf("unexpected inferred title: %q", item.Title)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.SourcePath != item.SourcePath {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
}

func TestNewFileRejectsDuplicateSourcePath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	path := filepath.Join(cfg.Paths.WatchDir, "session.mkv")
	if _, err := store.NewFile(ctx, path); err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if _, err := store.NewFile(ctx, path); err == nil {
		t.Fatal("expected duplicate source path to be rejected")
	}

	found, err := store.FindBySourcePath(ctx, path)
	if err != nil {
		t.Fatalf("FindBySourcePath failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find enqueued item")
	}
}

func TestUpdateRoundTripsPlanFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewFile(t, store, filepath.Join(cfg.Paths.WatchDir, "clip.mp4"))

	item.Status = queue.StatusAnalyzed
	item.DurationSec = 184.5
	item.PlanJSON = `{"threshold":0.4}`
	item.OutputDir = filepath.Join(cfg.Paths.OutputDir, "clip")
	item.SetProgressComplete("Analyzing", "Found 3 clips")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusAnalyzed {
		t.Fatalf("expected analyzed status, got %s", fetched.Status)
	}
	if fetched.DurationSec != 184.5 {
		t.Fatalf("duration not persisted: %v", fetched.DurationSec)
	}
	if fetched.PlanJSON != `{"threshold":0.4}` {
		t.Fatalf("plan not persisted: %q", fetched.PlanJSON)
	}
	if fetched.ProgressPercent != 100 || fetched.ProgressStage != "Analyzing" {
		t.Fatalf("progress not persisted: %s/%v", fetched.ProgressStage, fetched.ProgressPercent)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"analyzing", queue.StatusAnalyzing, queue.StatusPending},
		{"rendering", queue.StatusRendering, queue.StatusAnalyzed},
	}
	var ids []int64
	for i, tc := range cases {
		item := testsupport.NewFile(t, store, filepath.Join(cfg.Paths.WatchDir, fmt.Sprintf("stuck-%d.mp4", i)))
		item.Status = tc.initialStatus
		item.ProgressStage = tc.name
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, item.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if int(count) != len(cases) {
		t.Fatalf("expected %d items reset, got %d", len(cases), count)
	}

	for idx, tc := range cases {
		updated, err := store.GetByID(ctx, ids[idx])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated.Status != tc.expected {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.expected, updated.Status)
		}
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewFile(t, store, filepath.Join(cfg.Paths.WatchDir, "first.mp4"))
	second := testsupport.NewFile(t, store, filepath.Join(cfg.Paths.WatchDir, "second.mp4"))

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending item %d, got %#v", first.ID, next)
	}

	first.Status = queue.StatusCompleted
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	next, err = store.NextForStatuses(ctx, queue.StatusPending, queue.StatusAnalyzed)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.ID != second.ID {
		t.Fatalf("expected second item, got %#v", next)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusRendering)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no rendering items, got %#v", none)
	}
}

func TestRetryFailedCoversReviewItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	failed := testsupport.NewFile(t, store, filepath.Join(cfg.Paths.WatchDir, "failed.mp4"))
	failed.SetFailed("ffmpeg exited with status 1")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	review := testsupport.NewFile(t, store, filepath.Join(cfg.Paths.WatchDir, "review.mp4"))
	review.SetReview("source has no audio stream")
	if err := store.Update(ctx, review); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 items retried, got %d", count)
	}

	for _, id := range []int64{failed.ID, review.ID} {
		item, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if item.Status != queue.StatusPending {
			t.Fatalf("expected pending after retry, got %s", item.Status)
		}
		if item.ErrorMessage != "" || item.NeedsReview {
			t.Fatalf("expected error state cleared: %#v", item)
		}
	}
}

func TestStatsAndHealthAggregation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	statuses := []queue.Status{
		queue.StatusPending,
		queue.StatusAnalyzing,
		queue.StatusCompleted,
		queue.StatusCompleted,
		queue.StatusFailed,
	}
	for i, status := range statuses {
		item := testsupport.NewFile(t, store, filepath.Join(cfg.Paths.WatchDir, fmt.Sprintf("stats-%d.mp4", i)))
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[queue.StatusCompleted] != 2 {
		t.Fatalf("expected 2 completed, got %d", stats[queue.StatusCompleted])
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 5 || health.Pending != 1 || health.Processing != 1 || health.Completed != 2 || health.Failed != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}

func TestClearVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i, status := range []queue.Status{queue.StatusCompleted, queue.StatusFailed, queue.StatusPending} {
		item := testsupport.NewFile(t, store, filepath.Join(cfg.Paths.WatchDir, fmt.Sprintf("clear-%d.mp4", i)))
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	if n, err := store.ClearCompleted(ctx); err != nil || n != 1 {
		t.Fatalf("ClearCompleted = %d, %v", n, err)
	}
	if n, err := store.ClearFailed(ctx); err != nil || n != 1 {
		t.Fatalf("ClearFailed = %d, %v", n, err)
	}
	if n, err := store.Clear(ctx); err != nil || n != 1 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Rendering "); !ok || status != queue.StatusRendering {
		t.Fatalf("ParseStatus rendering = %s, %v", status, ok)
	}
	if _, ok := queue.ParseStatus("transcoding"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if _, ok := queue.ParseStatus(""); ok {
		t.Fatal("expected empty status to be rejected")
	}
}
