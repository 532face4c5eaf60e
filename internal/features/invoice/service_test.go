package invoice

import "testing"

func TestDeriveTotals(t *testing.T) {
	tests := []struct {
		name         string
		tax          string
		items        []InvoiceItem
		wantSubtotal string
		wantTax      string
		wantTotal    string
		wantLines    []string
		wantErr      bool
	}{
		{
			name: "single line",
			items: []InvoiceItem{
				{ServiceName: "Wash & Fold", Quantity: 3, UnitPrice: "4.50"},
			},
			wantSubtotal: "13.50",
			wantTax:      "0.00",
			wantTotal:    "13.50",
			wantLines:    []string{"13.50"},
		},
		{
			name: "multiple lines with tax",
			tax:  "2.25",
			items: []InvoiceItem{
				{ServiceName: "Dry Cleaning", Quantity: 2, UnitPrice: "8.00"},
				{ServiceName: "Ironing", Quantity: 5, UnitPrice: "1.75"},
			},
			wantSubtotal: "24.75",
			wantTax:      "2.25",
			wantTotal:    "27.00",
			wantLines:    []string{"16.00", "8.75"},
		},
		{
			name: "zero quantity defaults to one",
			items: []InvoiceItem{
				{ServiceName: "Pickup", Quantity: 0, UnitPrice: "5.00"},
			},
			wantSubtotal: "5.00",
			wantTax:      "0.00",
			wantTotal:    "5.00",
			wantLines:    []string{"5.00"},
		},
		{
			name:         "no lines",
			wantSubtotal: "0.00",
			wantTax:      "0.00",
			wantTotal:    "0.00",
		},
		{
			name: "bad unit price",
			items: []InvoiceItem{
				{ServiceName: "Wash", Quantity: 1, UnitPrice: "free"},
			},
			wantErr: true,
		},
		{
			name: "bad tax",
			tax:  "lots",
			items: []InvoiceItem{
				{ServiceName: "Wash", Quantity: 1, UnitPrice: "4.00"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{Tax: tt.tax}
			err := deriveTotals(inv, tt.items)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if inv.Subtotal != tt.wantSubtotal {
				t.Errorf("subtotal = %q, want %q", inv.Subtotal, tt.wantSubtotal)
			}
			if inv.Tax != tt.wantTax {
				t.Errorf("tax = %q, want %q", inv.Tax, tt.wantTax)
			}
			if inv.Total != tt.wantTotal {
				t.Errorf("total = %q, want %q", inv.Total, tt.wantTotal)
			}
			for i, want := range tt.wantLines {
				if tt.items[i].Total != want {
					t.Errorf("line %d total = %q, want %q", i, tt.items[i].Total, want)
				}
			}
		})
	}
}
