package sync

import (
	"context"
	"fmt"

	common_models "laundry-pos/internal/common/models"
	"laundry-pos/internal/features/audit"
)

type SyncService interface {
	GetConfig(ctx context.Context) (*Config, error)
	UpdateConfig(ctx context.Context, updates map[string]interface{}) error
	EnqueueInvoiceSync(ctx context.Context, invoiceID string) error
	EnqueueInvoiceItemSync(ctx context.Context, itemID string) error
	ListQueueItems(ctx context.Context, limit int64) ([]QueueItem, error)
	RetryItem(ctx context.Context, id string) error
	RunNow(ctx context.Context) error
	TestConnection(ctx context.Context) (bool, error)
}

// Config fields an administrator may change. Health fields are owned by
// the worker and never writable from the admin surface.
var editableConfigFields = map[string]bool{
	"enabled":             true,
	"airtable_api_key":    true,
	"airtable_base_id":    true,
	"invoices_table":      true,
	"invoice_items_table": true,
}

type SyncServiceImpl struct {
	ConfigRepo   ConfigRepository
	QueueRepo    QueueRepository
	Worker       *Worker
	NewClient    ClientFactory
	AuditService audit.AuditService
}

func NewSyncService(configRepo ConfigRepository, queueRepo QueueRepository, worker *Worker, auditService audit.AuditService) SyncService {
	return &SyncServiceImpl{
		ConfigRepo:   configRepo,
		QueueRepo:    queueRepo,
		Worker:       worker,
		NewClient:    NewAirtableClient,
		AuditService: auditService,
	}
}

func (s *SyncServiceImpl) GetConfig(ctx context.Context) (*Config, error) {
	return s.ConfigRepo.Get(ctx)
}

func (s *SyncServiceImpl) UpdateConfig(ctx context.Context, updates map[string]interface{}) error {
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if editableConfigFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return fmt.Errorf("no editable fields in update")
	}

	oldConfig, _ := s.ConfigRepo.Get(ctx)

	err := s.ConfigRepo.Update(ctx, filtered)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSettings, "sync_config", "singleton", map[string]common_models.Change{
			"sync_config": {Old: oldConfig, New: filtered},
		})
	}
	return err
}

// EnqueueInvoiceSync queues an invoice for replication. When the invoice
// already has a remote identity from an earlier synced item, the new item
// carries it so the worker updates the remote record instead of creating
// a duplicate.
func (s *SyncServiceImpl) EnqueueInvoiceSync(ctx context.Context, invoiceID string) error {
	item := &QueueItem{
		EntityType: EntityInvoice,
		EntityID:   invoiceID,
	}
	if externalID, err := s.QueueRepo.FindSyncedExternalID(ctx, EntityInvoice, invoiceID); err == nil && externalID != "" {
		item.ExternalID = externalID
	}
	return s.QueueRepo.Enqueue(ctx, item)
}

func (s *SyncServiceImpl) EnqueueInvoiceItemSync(ctx context.Context, itemID string) error {
	return s.QueueRepo.Enqueue(ctx, &QueueItem{
		EntityType: EntityInvoiceItem,
		EntityID:   itemID,
	})
}

func (s *SyncServiceImpl) ListQueueItems(ctx context.Context, limit int64) ([]QueueItem, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.QueueRepo.List(ctx, limit)
}

// RetryItem re-arms a terminally failed item. This is an administrative
// action; automatic retries never resume past the retry budget.
func (s *SyncServiceImpl) RetryItem(ctx context.Context, id string) error {
	item, err := s.QueueRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.Status != StatusError {
		return fmt.Errorf("queue item %s is %s, only failed items can be retried", id, item.Status)
	}

	err = s.QueueRepo.Update(ctx, item.ID, map[string]interface{}{
		"status":     StatusPending,
		"retries":    0,
		"last_error": "",
	})
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSync, "sync_queue", id, map[string]common_models.Change{
			"status": {Old: StatusError, New: StatusPending},
		})
	}
	return err
}

// RunNow executes one tick synchronously. An overlapping tick is skipped
// by the worker's single-flight guard.
func (s *SyncServiceImpl) RunNow(ctx context.Context) error {
	s.Worker.RunOnce(ctx)
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionSync, "sync_queue", "manual_run", map[string]common_models.Change{
		"trigger": {New: "manual"},
	})
	return nil
}

func (s *SyncServiceImpl) TestConnection(ctx context.Context) (bool, error) {
	cfg, err := s.ConfigRepo.Get(ctx)
	if err != nil {
		return false, err
	}
	if cfg.AirtableAPIKey == "" || cfg.AirtableBaseID == "" {
		return false, nil
	}

	client := s.NewClient(cfg)
	return client.TestConnection(ctx), nil
}
