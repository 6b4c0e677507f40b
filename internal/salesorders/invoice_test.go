package salesorders

import (
	"bytes"
	"testing"
	"time"
)

func TestRenderInvoice(t *testing.T) {
	o := &Order{
		OrderNumber:  "SO-20260302-ABCDEF12",
		CustomerCode: "C-001",
		CustomerName: "Shifa Pharmacy",
		CustomerCity: "Multan",
		Status:       StatusConfirmed,
		OrderDate:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Notes:        "Deliver before noon",
		TotalCents:   3749,
		Lines: []Line{
			{LineNo: 1, ItemCode: "PCM-500", ItemName: "Paracetamol 500mg tablets in blister packs of ten", Quantity: 3, UnitPriceCents: 1250, LineTotalCents: 3750},
		},
	}

	pdf, err := RenderInvoice(o, time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a pdf: %q", pdf[:min(len(pdf), 16)])
	}

	o.Status = StatusDraft
	o.Lines = nil
	if _, err := RenderInvoice(o, time.Now()); err != nil {
		t.Fatalf("render draft without lines: %v", err)
	}
}

func TestInvoiceFilename(t *testing.T) {
	got := InvoiceFilename(&Order{OrderNumber: "SO-20260302-ABCDEF12"})
	if got != "invoice-so-20260302-abcdef12.pdf" {
		t.Fatalf("unexpected filename: %s", got)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := map[int64]string{
		0:          "0.00",
		5:          "0.05",
		123456:     "1,234.56",
		100000000:  "1,000,000.00",
		-98765:     "-987.65",
		99999:      "999.99",
		1234567890: "12,345,678.90",
	}
	for cents, want := range tests {
		if got := FormatMoney(cents); got != want {
			t.Errorf("FormatMoney(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("unexpected: %q", got)
	}
}
