package sync

import (
	"context"
	"testing"
	"time"

	common_models "laundry-pos/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAuditService struct {
	entries []common_models.AuditAction
}

func (a *fakeAuditService) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	a.entries = append(a.entries, action)
	return nil
}

func (a *fakeAuditService) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func newTestService(cfgRepo *fakeConfigRepo, queue *fakeQueueRepo) *SyncServiceImpl {
	return &SyncServiceImpl{
		ConfigRepo:   cfgRepo,
		QueueRepo:    queue,
		NewClient:    NewAirtableClient,
		AuditService: &fakeAuditService{},
	}
}

func TestEnqueueInvoiceSyncSeedsKnownRecordID(t *testing.T) {
	queue := &fakeQueueRepo{}
	syncedAt := time.Now()
	queue.items = append(queue.items, &QueueItem{
		ID:           primitive.NewObjectID(),
		EntityType:   EntityInvoice,
		EntityID:     "inv1",
		Status:       StatusSynced,
		ExternalID:   "recKnown",
		LastSyncedAt: &syncedAt,
		CreatedAt:    time.Now().Add(-time.Hour),
	})
	svc := newTestService(&fakeConfigRepo{cfg: enabledConfig()}, queue)

	if err := svc.EnqueueInvoiceSync(context.Background(), "inv1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest := queue.items[len(queue.items)-1]
	if latest.ExternalID != "recKnown" {
		t.Fatalf("expected re-sync item seeded with recKnown, got %q", latest.ExternalID)
	}
	if latest.Status != StatusPending {
		t.Fatalf("expected pending, got %s", latest.Status)
	}
	if latest.MaxRetries != DefaultMaxRetries {
		t.Fatalf("expected default retry budget, got %d", latest.MaxRetries)
	}
}

func TestEnqueueInvoiceSyncFreshInvoice(t *testing.T) {
	queue := &fakeQueueRepo{}
	svc := newTestService(&fakeConfigRepo{cfg: enabledConfig()}, queue)

	if err := svc.EnqueueInvoiceSync(context.Background(), "inv1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest := queue.items[len(queue.items)-1]
	if latest.ExternalID != "" {
		t.Fatalf("expected no external id for a first sync, got %q", latest.ExternalID)
	}
	if latest.EntityType != EntityInvoice || latest.EntityID != "inv1" {
		t.Fatalf("unexpected item %+v", latest)
	}
}

func TestRetryItemOnlyForFailedItems(t *testing.T) {
	queue := &fakeQueueRepo{}
	failed := &QueueItem{
		ID:         primitive.NewObjectID(),
		EntityType: EntityInvoice,
		EntityID:   "inv1",
		Status:     StatusError,
		Retries:    DefaultMaxRetries,
		MaxRetries: DefaultMaxRetries,
		LastError:  "timeout",
		CreatedAt:  time.Now(),
	}
	pending := &QueueItem{
		ID:         primitive.NewObjectID(),
		EntityType: EntityInvoice,
		EntityID:   "inv2",
		Status:     StatusPending,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  time.Now(),
	}
	queue.items = append(queue.items, failed, pending)
	svc := newTestService(&fakeConfigRepo{cfg: enabledConfig()}, queue)

	if err := svc.RetryItem(context.Background(), failed.ID.Hex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed.Status != StatusPending || failed.Retries != 0 || failed.LastError != "" {
		t.Fatalf("expected re-armed item, got %+v", failed)
	}

	if err := svc.RetryItem(context.Background(), pending.ID.Hex()); err == nil {
		t.Fatal("expected error retrying a non-failed item")
	}
}

func TestUpdateConfigFiltersWorkerOwnedFields(t *testing.T) {
	cfgRepo := &fakeConfigRepo{cfg: enabledConfig()}
	cfgRepo.cfg.SyncStatus = WorkerIdle
	svc := newTestService(cfgRepo, &fakeQueueRepo{})

	err := svc.UpdateConfig(context.Background(), map[string]interface{}{
		"enabled":     false,
		"sync_status": WorkerError,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfgRepo.cfg.Enabled {
		t.Fatal("expected enabled flag updated")
	}
	if cfgRepo.cfg.SyncStatus != WorkerIdle {
		t.Fatalf("worker-owned field mutated via admin update: %s", cfgRepo.cfg.SyncStatus)
	}

	if err := svc.UpdateConfig(context.Background(), map[string]interface{}{"sync_status": WorkerError}); err == nil {
		t.Fatal("expected error when no editable field present")
	}
}
