package sync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"laundry-pos/internal/features/invoice"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testClient(serverURL string) *AirtableClient {
	return &AirtableClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    serverURL,
		apiKey:     "test-key",
		baseID:     "appBase",
		invoices:   "Invoices",
		items:      "Invoice Items",
	}
}

func testInvoice() *invoice.Invoice {
	return &invoice.Invoice{
		ID:            primitive.NewObjectID(),
		Number:        "F-0042",
		Date:          time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		CustomerName:  "Maria Lopez",
		CustomerPhone: "555-0142",
		Subtotal:      "25.50",
		Tax:           "4.08",
		Total:         "29.58",
		PaymentMethod: "cash",
		Status:        invoice.InvoiceStatusPaid,
	}
}

func TestCreateInvoiceRecord(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"id": "rec123"})
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	recordID, err := client.CreateInvoiceRecord(context.Background(), testInvoice())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recordID != "rec123" {
		t.Fatalf("expected rec123, got %q", recordID)
	}
	if gotPath != "/appBase/Invoices" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}

	fields, ok := gotBody["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("payload missing fields object: %v", gotBody)
	}
	if fields["Invoice Number"] != "F-0042" {
		t.Fatalf("unexpected invoice number %v", fields["Invoice Number"])
	}
	if fields["Date"] != "2026-03-14" {
		t.Fatalf("unexpected date %v", fields["Date"])
	}

	// Money must travel as JSON numbers, never strings
	for name, want := range map[string]float64{"Subtotal": 25.50, "Tax": 4.08, "Total": 29.58} {
		got, ok := fields[name].(float64)
		if !ok {
			t.Fatalf("%s sent as %T, want number", name, fields[name])
		}
		if got != want {
			t.Fatalf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestCreateInvoiceItemRecordRelationship(t *testing.T) {
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"id": "recItem1"})
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	item := &invoice.InvoiceItem{
		ServiceName: "Dry Cleaning",
		ServiceType: "per_piece",
		Quantity:    3,
		UnitPrice:   "5.00",
		Total:       "15.00",
	}

	t.Run("with parent", func(t *testing.T) {
		if _, err := client.CreateInvoiceItemRecord(context.Background(), item, "recP"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fields := gotBody["fields"].(map[string]interface{})
		link, ok := fields["Invoice"].([]interface{})
		if !ok || len(link) != 1 || link[0] != "recP" {
			t.Fatalf("expected relationship [recP], got %v", fields["Invoice"])
		}
		if qty, ok := fields["Quantity"].(float64); !ok || qty != 3 {
			t.Fatalf("expected numeric quantity 3, got %v", fields["Quantity"])
		}
	})

	t.Run("without parent", func(t *testing.T) {
		if _, err := client.CreateInvoiceItemRecord(context.Background(), item, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fields := gotBody["fields"].(map[string]interface{})
		if _, present := fields["Invoice"]; present {
			t.Fatalf("expected relationship omitted, got %v", fields["Invoice"])
		}
	})
}

func TestUpdateInvoiceRecord(t *testing.T) {
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"id": "rec123"})
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	if err := client.UpdateInvoiceRecord(context.Background(), "rec123", testInvoice()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Fatalf("expected PATCH, got %s", gotMethod)
	}
	if gotPath != "/appBase/Invoices/rec123" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestCreateInvoiceRecordNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"INVALID_VALUE_FOR_COLUMN"}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	_, err := client.CreateInvoiceRecord(context.Background(), testInvoice())
	if err == nil {
		t.Fatal("expected error")
	}

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected *RemoteError, got %T", err)
	}
	if remoteErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", remoteErr.StatusCode)
	}
	if remoteErr.Body == "" {
		t.Fatal("expected response body carried on the error")
	}
}

func TestCreateInvoiceRecordBadMoney(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	inv := testInvoice()
	inv.Subtotal = "twenty"

	if _, err := client.CreateInvoiceRecord(context.Background(), inv); err == nil {
		t.Fatal("expected parse error")
	}
	if requests != 0 {
		t.Fatalf("expected no request for unmappable entity, got %d", requests)
	}
}

func TestTestConnection(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode(map[string]interface{}{"records": []interface{}{}})
		}))
		defer srv.Close()

		if !testClient(srv.URL).TestConnection(context.Background()) {
			t.Fatal("expected true against a healthy server")
		}
		if gotQuery != "maxRecords=1" {
			t.Fatalf("expected a minimal read, got query %q", gotQuery)
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		if testClient(srv.URL).TestConnection(context.Background()) {
			t.Fatal("expected false on 5xx")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		if testClient(srv.URL).TestConnection(context.Background()) {
			t.Fatal("expected false when the host is down")
		}
	})
}
