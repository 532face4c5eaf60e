package invoice

import (
	"context"
	"time"

	"laundry-pos/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice, items []InvoiceItem) error
	Get(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, limit, offset int64) ([]Invoice, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	GetItem(ctx context.Context, id string) (*InvoiceItem, error)
	ListItems(ctx context.Context, invoiceID string) ([]InvoiceItem, error)
}

type InvoiceRepositoryImpl struct {
	invoices *mongo.Collection
	items    *mongo.Collection
}

func NewInvoiceRepository(db *database.MongodbDB) InvoiceRepository {
	repo := &InvoiceRepositoryImpl{
		invoices: db.DB.Collection("invoices"),
		items:    db.DB.Collection("invoice_items"),
	}

	// Items are queried by invoice when rendering an invoice
	idx := mongo.IndexModel{Keys: bson.D{{Key: "invoice_id", Value: 1}}}
	repo.items.Indexes().CreateOne(context.Background(), idx)

	return repo
}

func (r *InvoiceRepositoryImpl) Create(ctx context.Context, inv *Invoice, items []InvoiceItem) error {
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if _, err := r.invoices.InsertOne(ctx, inv); err != nil {
		return err
	}

	if len(items) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(items))
	for i := range items {
		if items[i].ID.IsZero() {
			items[i].ID = primitive.NewObjectID()
		}
		items[i].InvoiceID = inv.ID
		items[i].CreatedAt = now
		docs = append(docs, items[i])
	}

	_, err := r.items.InsertMany(ctx, docs)
	return err
}

func (r *InvoiceRepositoryImpl) Get(ctx context.Context, id string) (*Invoice, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var inv Invoice
	err = r.invoices.FindOne(ctx, bson.M{"_id": oid}).Decode(&inv)
	if err != nil {
		return nil, err
	}

	return &inv, nil
}

func (r *InvoiceRepositoryImpl) List(ctx context.Context, limit, offset int64) ([]Invoice, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.invoices.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invoices []Invoice
	if err = cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}

	return invoices, nil
}

func (r *InvoiceRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	updates["updated_at"] = time.Now()
	_, err = r.invoices.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": updates},
	)
	return err
}

func (r *InvoiceRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	if _, err = r.invoices.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return err
	}

	_, err = r.items.DeleteMany(ctx, bson.M{"invoice_id": oid})
	return err
}

func (r *InvoiceRepositoryImpl) GetItem(ctx context.Context, id string) (*InvoiceItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var item InvoiceItem
	err = r.items.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *InvoiceRepositoryImpl) ListItems(ctx context.Context, invoiceID string) ([]InvoiceItem, error) {
	oid, err := primitive.ObjectIDFromHex(invoiceID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.items.Find(ctx, bson.M{"invoice_id": oid})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []InvoiceItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	return items, nil
}
