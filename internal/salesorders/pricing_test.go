package salesorders

import (
	"errors"
	"math"
	"testing"
)

func testPrices() map[string]ItemPrice {
	return map[string]ItemPrice{
		"itm_a": {ID: "itm_a", Code: "PCM-500", Name: "Paracetamol 500mg", UnitPriceCents: 1250, IsActive: true},
		"itm_b": {ID: "itm_b", Code: "AMX-250", Name: "Amoxicillin 250mg", UnitPriceCents: 4999, IsActive: true},
		"itm_x": {ID: "itm_x", Code: "OLD-1", Name: "Discontinued", UnitPriceCents: 100, IsActive: false},
	}
}

func TestPriceLines(t *testing.T) {
	lines, total, err := PriceLines([]LineInput{
		{ItemID: "itm_b", Quantity: 2},
		{ItemID: "itm_a", Quantity: 10},
		{ItemID: "itm_b", Quantity: 1},
	}, testPrices())
	if err != nil {
		t.Fatalf("price error: %v", err)
	}
	if total != 2*4999+10*1250+4999 {
		t.Fatalf("unexpected total: %d", total)
	}
	if len(lines) != 3 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
	for i, l := range lines {
		if l.LineNo != i+1 {
			t.Fatalf("line %d numbered %d", i, l.LineNo)
		}
		if l.LineTotalCents != int64(l.Quantity)*l.UnitPriceCents {
			t.Fatalf("line %d total mismatch: %+v", i, l)
		}
	}
	if lines[1].ItemCode != "PCM-500" {
		t.Fatalf("lines must keep request order: %+v", lines)
	}
}

func TestPriceLinesErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []LineInput
		want error
	}{
		{"empty", nil, ErrNoLines},
		{"zero quantity", []LineInput{{ItemID: "itm_a", Quantity: 0}}, ErrInvalidLine},
		{"huge quantity", []LineInput{{ItemID: "itm_a", Quantity: maxLineQuantity + 1}}, ErrInvalidLine},
		{"unknown item", []LineInput{{ItemID: "itm_zz", Quantity: 1}}, ErrUnknownItem},
		{"inactive item", []LineInput{{ItemID: "itm_x", Quantity: 1}}, ErrInactiveItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := PriceLines(tt.in, testPrices())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPriceLinesOverflow(t *testing.T) {
	prices := map[string]ItemPrice{
		"itm_big": {ID: "itm_big", Code: "BIG", UnitPriceCents: math.MaxInt64 / 2, IsActive: true},
	}
	_, _, err := PriceLines([]LineInput{{ItemID: "itm_big", Quantity: 3}}, prices)
	if !errors.Is(err, ErrInvalidLine) {
		t.Fatalf("expected overflow rejection, got %v", err)
	}

	_, _, err = PriceLines([]LineInput{
		{ItemID: "itm_big", Quantity: 2},
		{ItemID: "itm_big", Quantity: 1},
	}, prices)
	if !errors.Is(err, ErrInvalidLine) {
		t.Fatalf("expected total overflow rejection, got %v", err)
	}
}

func TestLineItemIDsDeduplicates(t *testing.T) {
	got := lineItemIDs([]LineInput{{ItemID: "a"}, {ItemID: "b"}, {ItemID: "a"}})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusConfirmed, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusShipped, false},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusDraft, false},
		{StatusShipped, StatusCancelled, false},
		{StatusCancelled, StatusDraft, false},
		{StatusDraft, StatusDraft, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
