package invoice

import (
	"context"
	"fmt"
	"strconv"

	common_models "laundry-pos/internal/common/models"
	"laundry-pos/internal/features/audit"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SyncEnqueuer is the slice of the sync subsystem the invoice feature needs.
// The sync feature depends on this package, not the other way around.
type SyncEnqueuer interface {
	EnqueueInvoiceSync(ctx context.Context, invoiceID string) error
	EnqueueInvoiceItemSync(ctx context.Context, itemID string) error
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, inv *Invoice, items []InvoiceItem) error
	GetInvoice(ctx context.Context, id string) (*Invoice, []InvoiceItem, error)
	ListInvoices(ctx context.Context, limit, offset int64) ([]Invoice, error)
	UpdateInvoice(ctx context.Context, id string, updates map[string]interface{}) error
	DeleteInvoice(ctx context.Context, id string) error
	ExportInvoices(ctx context.Context) ([]byte, string, error)
}

type InvoiceServiceImpl struct {
	Repo         InvoiceRepository
	AuditService audit.AuditService
	SyncQueue    SyncEnqueuer
	Logger       *zap.Logger
}

func NewInvoiceService(repo InvoiceRepository, auditService audit.AuditService, syncQueue SyncEnqueuer, logger *zap.Logger) InvoiceService {
	return &InvoiceServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		SyncQueue:    syncQueue,
		Logger:       logger,
	}
}

func (s *InvoiceServiceImpl) CreateInvoice(ctx context.Context, inv *Invoice, items []InvoiceItem) error {
	if err := deriveTotals(inv, items); err != nil {
		return err
	}

	if err := s.Repo.Create(ctx, inv, items); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "invoices", inv.ID.Hex(), map[string]common_models.Change{
		"invoice": {New: inv},
	})

	// Queue the invoice and every line for replication. Enqueue failures are
	// logged, not returned: the invoice itself is already persisted.
	if err := s.SyncQueue.EnqueueInvoiceSync(ctx, inv.ID.Hex()); err != nil {
		s.Logger.Warn("failed to enqueue invoice sync", zap.String("invoice_id", inv.ID.Hex()), zap.Error(err))
	}
	for i := range items {
		if err := s.SyncQueue.EnqueueInvoiceItemSync(ctx, items[i].ID.Hex()); err != nil {
			s.Logger.Warn("failed to enqueue invoice item sync", zap.String("item_id", items[i].ID.Hex()), zap.Error(err))
		}
	}

	return nil
}

func (s *InvoiceServiceImpl) GetInvoice(ctx context.Context, id string) (*Invoice, []InvoiceItem, error) {
	inv, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.Repo.ListItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return inv, items, nil
}

func (s *InvoiceServiceImpl) ListInvoices(ctx context.Context, limit, offset int64) ([]Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.Repo.List(ctx, limit, offset)
}

func (s *InvoiceServiceImpl) UpdateInvoice(ctx context.Context, id string, updates map[string]interface{}) error {
	oldInv, _ := s.Repo.Get(ctx, id)

	if err := s.Repo.Update(ctx, id, updates); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "invoices", id, map[string]common_models.Change{
		"invoice": {Old: oldInv, New: updates},
	})

	// A local edit makes the remote copy stale; queue a re-sync.
	if err := s.SyncQueue.EnqueueInvoiceSync(ctx, id); err != nil {
		s.Logger.Warn("failed to enqueue invoice re-sync", zap.String("invoice_id", id), zap.Error(err))
	}

	return nil
}

func (s *InvoiceServiceImpl) DeleteInvoice(ctx context.Context, id string) error {
	oldInv, _ := s.Repo.Get(ctx, id)

	err := s.Repo.Delete(ctx, id)
	if err == nil {
		name := id
		if oldInv != nil {
			name = oldInv.Number
		}
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "invoices", name, map[string]common_models.Change{
			"invoice": {Old: oldInv, New: "DELETED"},
		})
	}
	return err
}

func (s *InvoiceServiceImpl) ExportInvoices(ctx context.Context) ([]byte, string, error) {
	invoices, err := s.Repo.List(ctx, 10000, 0)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Invoices"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Number", "Date", "Customer", "Phone", "Subtotal", "Tax", "Total", "Payment Method", "Status"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, inv := range invoices {
		values := []interface{}{
			inv.Number,
			inv.Date.Format("2006-01-02"),
			inv.CustomerName,
			inv.CustomerPhone,
			inv.Subtotal,
			inv.Tax,
			inv.Total,
			inv.PaymentMethod,
			inv.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "invoices", "export", map[string]common_models.Change{
		"count": {New: len(invoices)},
	})

	return buf.Bytes(), "invoices.xlsx", nil
}

// deriveTotals fills per-line totals and the invoice subtotal/total from the
// line items, leaving caller-provided tax as-is. Money values stay decimal
// strings at rest.
func deriveTotals(inv *Invoice, items []InvoiceItem) error {
	subtotal := 0.0
	for i := range items {
		unit, err := strconv.ParseFloat(items[i].UnitPrice, 64)
		if err != nil {
			return fmt.Errorf("invalid unit price %q: %w", items[i].UnitPrice, err)
		}
		if items[i].Quantity <= 0 {
			items[i].Quantity = 1
		}
		lineTotal := unit * float64(items[i].Quantity)
		items[i].Total = strconv.FormatFloat(lineTotal, 'f', 2, 64)
		subtotal += lineTotal
	}

	tax := 0.0
	if inv.Tax != "" {
		parsed, err := strconv.ParseFloat(inv.Tax, 64)
		if err != nil {
			return fmt.Errorf("invalid tax %q: %w", inv.Tax, err)
		}
		tax = parsed
	} else {
		inv.Tax = "0.00"
	}

	inv.Subtotal = strconv.FormatFloat(subtotal, 'f', 2, 64)
	inv.Total = strconv.FormatFloat(subtotal+tax, 'f', 2, 64)
	return nil
}
