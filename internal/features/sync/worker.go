package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"laundry-pos/internal/features/invoice"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// InvoiceSource is the read-only slice of the domain store the worker
// needs. The worker never mutates domain records.
type InvoiceSource interface {
	Get(ctx context.Context, id string) (*invoice.Invoice, error)
	GetItem(ctx context.Context, id string) (*invoice.InvoiceItem, error)
}

// ClientFactory builds a remote client from the current configuration.
// The worker rebuilds the client every tick so credential changes take
// effect without a restart.
type ClientFactory func(cfg *Config) RemoteClient

// Worker drives the replication queue on a fixed period. All outcomes are
// recorded as data on the queue items and the config row; nothing here
// propagates an error to the rest of the application.
type Worker struct {
	configRepo ConfigRepository
	queueRepo  QueueRepository
	invoices   InvoiceSource
	newClient  ClientFactory
	interval   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex // guards cron
	cron    *cron.Cron
	running atomic.Bool // single-flight guard for RunOnce
}

func NewWorker(configRepo ConfigRepository, queueRepo QueueRepository, invoices InvoiceSource, newClient ClientFactory, interval time.Duration, logger *zap.Logger) *Worker {
	if newClient == nil {
		newClient = NewAirtableClient
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Worker{
		configRepo: configRepo,
		queueRepo:  queueRepo,
		invoices:   invoices,
		newClient:  newClient,
		interval:   interval,
		logger:     logger,
	}
}

// Start schedules the periodic tick and fires one immediately. Calling
// Start on a started worker is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return
	}

	c := cron.New()
	c.AddFunc(fmt.Sprintf("@every %s", w.interval), func() {
		w.RunOnce(context.Background())
	})
	c.Start()
	w.cron = c

	w.logger.Info("sync worker started", zap.Duration("interval", w.interval))
	go w.RunOnce(context.Background())
}

// Stop prevents future ticks. An in-flight tick is allowed to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron == nil {
		return
	}

	w.cron.Stop()
	w.cron = nil
	w.logger.Info("sync worker stopped")
}

// RunOnce executes exactly one tick. A concurrent call observes the
// single-flight guard and returns without side effects.
func (w *Worker) RunOnce(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		w.logger.Debug("sync tick already running, skipping")
		return
	}
	defer w.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("sync tick panicked", zap.Any("panic", r))
			_ = w.configRepo.Update(context.Background(), map[string]interface{}{
				"sync_status": WorkerError,
				"last_error":  fmt.Sprintf("internal: %v", r),
			})
		}
	}()

	cfg, err := w.configRepo.Get(ctx)
	if err != nil {
		w.logger.Error("loading sync config", zap.Error(err))
		return
	}

	// Disabled or unconfigured is a silent skip, not an error.
	if !cfg.Enabled || cfg.AirtableAPIKey == "" || cfg.AirtableBaseID == "" {
		return
	}

	_ = w.configRepo.Update(ctx, map[string]interface{}{"sync_status": WorkerSyncing})

	pending, err := w.queueRepo.ListByStatus(ctx, StatusPending, "")
	if err != nil {
		w.logger.Error("listing pending queue items", zap.Error(err))
		_ = w.configRepo.Update(ctx, map[string]interface{}{
			"sync_status": WorkerError,
			"last_error":  err.Error(),
		})
		return
	}

	if len(pending) == 0 {
		_ = w.configRepo.Update(ctx, map[string]interface{}{
			"sync_status": WorkerIdle,
			"last_error":  "",
		})
		return
	}

	client := w.newClient(cfg)

	failed := 0
	for i := range pending {
		if err := w.processItem(ctx, client, &pending[i]); err != nil {
			failed++
			w.logger.Warn("queue item failed permanently",
				zap.String("item_id", pending[i].ID.Hex()),
				zap.String("entity_type", string(pending[i].EntityType)),
				zap.Error(err))
		}
	}

	updates := map[string]interface{}{"last_sync_at": time.Now()}
	if failed > 0 {
		updates["sync_status"] = WorkerError
		updates["last_error"] = fmt.Sprintf("errors in %d of %d items", failed, len(pending))
	} else {
		updates["sync_status"] = WorkerIdle
		updates["last_error"] = ""
	}
	_ = w.configRepo.Update(ctx, updates)
}

// processItem pushes one queue item. The returned error is non-nil only
// when the item reached terminal error during this tick; a retryable
// failure leaves the item pending and returns nil.
func (w *Worker) processItem(ctx context.Context, client RemoteClient, item *QueueItem) error {
	var remoteID string
	var err error

	switch item.EntityType {
	case EntityInvoice:
		var inv *invoice.Invoice
		inv, err = w.invoices.Get(ctx, item.EntityID)
		if isNotFound(err) {
			return w.failPermanently(ctx, item, "invoice "+item.EntityID+" no longer exists")
		}
		if err == nil {
			if item.ExternalID != "" {
				remoteID = item.ExternalID
				err = client.UpdateInvoiceRecord(ctx, remoteID, inv)
			} else {
				remoteID, err = client.CreateInvoiceRecord(ctx, inv)
			}
		}

	case EntityInvoiceItem:
		var line *invoice.InvoiceItem
		line, err = w.invoices.GetItem(ctx, item.EntityID)
		if isNotFound(err) {
			return w.failPermanently(ctx, item, "invoice item "+item.EntityID+" no longer exists")
		}
		if err == nil {
			// Best-effort parent resolution: a line whose invoice has not
			// synced yet is created without the relationship link.
			parentRecordID, lookupErr := w.queueRepo.FindSyncedExternalID(ctx, EntityInvoice, line.InvoiceID.Hex())
			if lookupErr != nil {
				w.logger.Warn("parent lookup failed, syncing without link",
					zap.String("invoice_id", line.InvoiceID.Hex()),
					zap.Error(lookupErr))
				parentRecordID = ""
			}
			remoteID, err = client.CreateInvoiceItemRecord(ctx, line, parentRecordID)
		}

	default:
		return w.failPermanently(ctx, item, "unknown entity type "+string(item.EntityType))
	}

	if err != nil {
		return w.recordFailure(ctx, item, err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         StatusSynced,
		"last_synced_at": now,
		"last_error":     "",
	}
	if item.ExternalID == "" {
		updates["external_id"] = remoteID
		item.ExternalID = remoteID
	}
	item.Status = StatusSynced
	item.LastSyncedAt = &now

	if uerr := w.queueRepo.Update(ctx, item.ID, updates); uerr != nil {
		w.logger.Error("recording queue item success", zap.String("item_id", item.ID.Hex()), zap.Error(uerr))
	}
	return nil
}

// recordFailure bumps the retry counter and flips the item to terminal
// error once the budget is spent. Until then the item stays pending and
// the next tick retries it.
func (w *Worker) recordFailure(ctx context.Context, item *QueueItem, cause error) error {
	item.Retries++
	item.LastError = cause.Error()

	updates := map[string]interface{}{
		"retries":    item.Retries,
		"last_error": item.LastError,
	}

	if item.Retries >= item.MaxRetries {
		item.Status = StatusError
		updates["status"] = StatusError
		if uerr := w.queueRepo.Update(ctx, item.ID, updates); uerr != nil {
			w.logger.Error("recording queue item failure", zap.String("item_id", item.ID.Hex()), zap.Error(uerr))
		}
		return fmt.Errorf("retries exhausted: %w", cause)
	}

	if uerr := w.queueRepo.Update(ctx, item.ID, updates); uerr != nil {
		w.logger.Error("recording queue item failure", zap.String("item_id", item.ID.Hex()), zap.Error(uerr))
	}
	return nil
}

// failPermanently marks an item terminal on first occurrence, used when
// the referenced local entity is gone. Retrying cannot help.
func (w *Worker) failPermanently(ctx context.Context, item *QueueItem, reason string) error {
	item.Status = StatusError
	item.LastError = reason

	if uerr := w.queueRepo.Update(ctx, item.ID, map[string]interface{}{
		"status":     StatusError,
		"last_error": reason,
	}); uerr != nil {
		w.logger.Error("recording permanent failure", zap.String("item_id", item.ID.Hex()), zap.Error(uerr))
	}
	return errors.New(reason)
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex)
}
