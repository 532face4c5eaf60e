package sync

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntityType names the kind of local record a queue item replicates.
type EntityType string

const (
	EntityInvoice     EntityType = "invoice"
	EntityInvoiceItem EntityType = "invoice_item"
)

// ItemStatus is the state of one queue item. pending is the only
// non-terminal state; synced and error are never left.
type ItemStatus string

const (
	StatusPending ItemStatus = "pending"
	StatusSynced  ItemStatus = "synced"
	StatusError   ItemStatus = "error"
)

// Worker health as recorded on the config row after each tick.
type WorkerStatus string

const (
	WorkerIdle    WorkerStatus = "idle"
	WorkerSyncing WorkerStatus = "syncing"
	WorkerError   WorkerStatus = "error"
)

const DefaultMaxRetries = 3

// Config is the process-wide sync configuration, one document per
// deployment. The worker skips the whole tick when Enabled is false or
// the Airtable credentials are missing.
type Config struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Enabled           bool               `json:"enabled" bson:"enabled"`
	AirtableAPIKey    string             `json:"airtable_api_key" bson:"airtable_api_key"`
	AirtableBaseID    string             `json:"airtable_base_id" bson:"airtable_base_id"`
	InvoicesTable     string             `json:"invoices_table" bson:"invoices_table"`
	InvoiceItemsTable string             `json:"invoice_items_table" bson:"invoice_items_table"`
	SyncStatus        WorkerStatus       `json:"sync_status" bson:"sync_status"`
	LastSyncAt        *time.Time         `json:"last_sync_at,omitempty" bson:"last_sync_at,omitempty"`
	LastError         string             `json:"last_error,omitempty" bson:"last_error,omitempty"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// QueueItem is one unit of pending replication work. Items are written by
// the domain layer at enqueue time and mutated only by the worker;
// ExternalID is set once and never overwritten.
type QueueItem struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	EntityType   EntityType         `json:"entity_type" bson:"entity_type"`
	EntityID     string             `json:"entity_id" bson:"entity_id"`
	Status       ItemStatus         `json:"status" bson:"status"`
	ExternalID   string             `json:"external_id,omitempty" bson:"external_id,omitempty"`
	Retries      int                `json:"retries" bson:"retries"`
	MaxRetries   int                `json:"max_retries" bson:"max_retries"`
	LastError    string             `json:"last_error,omitempty" bson:"last_error,omitempty"`
	LastSyncedAt *time.Time         `json:"last_synced_at,omitempty" bson:"last_synced_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
