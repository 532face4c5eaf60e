package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"laundry-pos/internal/features/invoice"
)

const defaultAirtableBaseURL = "https://api.airtable.com/v0"

// RemoteClient pushes local entities into the external tabular store. It
// never reads or writes queue state; the worker owns all bookkeeping.
type RemoteClient interface {
	CreateInvoiceRecord(ctx context.Context, inv *invoice.Invoice) (string, error)
	UpdateInvoiceRecord(ctx context.Context, recordID string, inv *invoice.Invoice) error
	CreateInvoiceItemRecord(ctx context.Context, item *invoice.InvoiceItem, invoiceRecordID string) (string, error)
	TestConnection(ctx context.Context) bool
}

// RemoteError carries the HTTP status and response body of a failed call.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("airtable: status %d: %s", e.StatusCode, e.Body)
}

// invoiceFields maps invoice columns to their remote field names. The json
// tags are the single source of truth for the wire names.
type invoiceFields struct {
	Number        string  `json:"Invoice Number"`
	Date          string  `json:"Date"`
	CustomerName  string  `json:"Customer Name"`
	CustomerPhone string  `json:"Customer Phone"`
	Subtotal      float64 `json:"Subtotal"`
	Tax           float64 `json:"Tax"`
	Total         float64 `json:"Total"`
	PaymentMethod string  `json:"Payment Method"`
	Status        string  `json:"Status"`
}

type invoiceItemFields struct {
	ServiceName string   `json:"Service"`
	ServiceType string   `json:"Service Type"`
	Quantity    float64  `json:"Quantity"`
	UnitPrice   float64  `json:"Unit Price"`
	Total       float64  `json:"Total"`
	Invoice     []string `json:"Invoice,omitempty"`
}

type airtableRecord struct {
	ID     string      `json:"id,omitempty"`
	Fields interface{} `json:"fields"`
}

type AirtableClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	baseID     string
	invoices   string
	items      string
}

// NewAirtableClient builds a client from the current sync configuration.
func NewAirtableClient(cfg *Config) RemoteClient {
	return &AirtableClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  defaultAirtableBaseURL,
		apiKey:   cfg.AirtableAPIKey,
		baseID:   cfg.AirtableBaseID,
		invoices: cfg.InvoicesTable,
		items:    cfg.InvoiceItemsTable,
	}
}

func (c *AirtableClient) CreateInvoiceRecord(ctx context.Context, inv *invoice.Invoice) (string, error) {
	fields, err := mapInvoiceFields(inv)
	if err != nil {
		return "", err
	}
	return c.createRecord(ctx, c.invoices, fields)
}

func (c *AirtableClient) UpdateInvoiceRecord(ctx context.Context, recordID string, inv *invoice.Invoice) error {
	fields, err := mapInvoiceFields(inv)
	if err != nil {
		return err
	}

	endpoint := c.tableURL(c.invoices) + "/" + url.PathEscape(recordID)
	_, err = c.send(ctx, http.MethodPatch, endpoint, airtableRecord{Fields: fields})
	return err
}

func (c *AirtableClient) CreateInvoiceItemRecord(ctx context.Context, item *invoice.InvoiceItem, invoiceRecordID string) (string, error) {
	fields, err := mapInvoiceItemFields(item, invoiceRecordID)
	if err != nil {
		return "", err
	}
	return c.createRecord(ctx, c.items, fields)
}

// TestConnection issues a minimal read to validate credentials and
// reachability. It is a diagnostic: failures report false, never an error.
func (c *AirtableClient) TestConnection(ctx context.Context) bool {
	endpoint := c.tableURL(c.invoices) + "?maxRecords=1"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *AirtableClient) createRecord(ctx context.Context, table string, fields interface{}) (string, error) {
	body, err := c.send(ctx, http.MethodPost, c.tableURL(table), airtableRecord{Fields: fields})
	if err != nil {
		return "", err
	}

	var created airtableRecord
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("airtable: decoding create response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("airtable: create response missing record id")
	}

	return created.ID, nil
}

func (c *AirtableClient) send(ctx context.Context, method, endpoint string, payload airtableRecord) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return respBody, nil
}

func (c *AirtableClient) tableURL(table string) string {
	return c.baseURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(table)
}

// Money is stored locally as decimal text; the remote contract requires
// numbers. A value that does not parse fails the whole call.
func mapInvoiceFields(inv *invoice.Invoice) (*invoiceFields, error) {
	subtotal, err := parseMoney("subtotal", inv.Subtotal)
	if err != nil {
		return nil, err
	}
	tax, err := parseMoney("tax", inv.Tax)
	if err != nil {
		return nil, err
	}
	total, err := parseMoney("total", inv.Total)
	if err != nil {
		return nil, err
	}

	return &invoiceFields{
		Number:        inv.Number,
		Date:          inv.Date.Format("2006-01-02"),
		CustomerName:  inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		PaymentMethod: inv.PaymentMethod,
		Status:        inv.Status,
	}, nil
}

func mapInvoiceItemFields(item *invoice.InvoiceItem, invoiceRecordID string) (*invoiceItemFields, error) {
	unitPrice, err := parseMoney("unit price", item.UnitPrice)
	if err != nil {
		return nil, err
	}
	total, err := parseMoney("total", item.Total)
	if err != nil {
		return nil, err
	}

	fields := &invoiceItemFields{
		ServiceName: item.ServiceName,
		ServiceType: item.ServiceType,
		Quantity:    float64(item.Quantity),
		UnitPrice:   unitPrice,
		Total:       total,
	}
	if invoiceRecordID != "" {
		fields.Invoice = []string{invoiceRecordID}
	}

	return fields, nil
}

func parseMoney(name, value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("airtable: invalid %s amount %q: %w", name, value, err)
	}
	return parsed, nil
}
