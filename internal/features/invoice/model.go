package invoice

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invoice statuses as used by the POS screens
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusDelivered = "delivered"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice is a billing document. Customer name and phone are denormalized
// onto the invoice at creation time. Money fields are stored as decimal
// strings to avoid float rounding in persistence.
type Invoice struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Number        string             `json:"number" bson:"number"`
	Date          time.Time          `json:"date" bson:"date"`
	CustomerName  string             `json:"customer_name" bson:"customer_name"`
	CustomerPhone string             `json:"customer_phone" bson:"customer_phone"`
	Subtotal      string             `json:"subtotal" bson:"subtotal"`
	Tax           string             `json:"tax" bson:"tax"`
	Total         string             `json:"total" bson:"total"`
	PaymentMethod string             `json:"payment_method" bson:"payment_method"`
	Status        string             `json:"status" bson:"status"`
	Notes         string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// InvoiceItem is one service line on an invoice. Items live in their own
// collection keyed by their own id so single-item lookups stay indexed.
type InvoiceItem struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	InvoiceID   primitive.ObjectID `json:"invoice_id" bson:"invoice_id"`
	ServiceName string             `json:"service_name" bson:"service_name"`
	ServiceType string             `json:"service_type" bson:"service_type"`
	Quantity    int                `json:"quantity" bson:"quantity"`
	UnitPrice   string             `json:"unit_price" bson:"unit_price"`
	Total       string             `json:"total" bson:"total"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
