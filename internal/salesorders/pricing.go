package salesorders

import (
	"errors"
	"fmt"
	"math"
)

const maxLineQuantity = 1_000_000

var (
	ErrNotFound         = errors.New("sales order not found")
	ErrNoLines          = errors.New("order has no lines")
	ErrInvalidLine      = errors.New("invalid order line")
	ErrUnknownItem      = errors.New("unknown item")
	ErrInactiveItem     = errors.New("item is inactive")
	ErrUnknownCustomer  = errors.New("unknown customer")
	ErrInactiveCustomer = errors.New("customer is inactive")
	ErrStatusChanged    = errors.New("order status changed concurrently")
)

// PriceLines turns requested lines into priced order lines using the current
// item prices and returns the order total. Lines keep request order and are
// numbered from 1.
func PriceLines(in []LineInput, prices map[string]ItemPrice) ([]Line, int64, error) {
	if len(in) == 0 {
		return nil, 0, ErrNoLines
	}

	lines := make([]Line, 0, len(in))
	var total int64
	for i, req := range in {
		if req.Quantity <= 0 || req.Quantity > maxLineQuantity {
			return nil, 0, fmt.Errorf("%w %d: quantity must be between 1 and %d", ErrInvalidLine, i+1, maxLineQuantity)
		}
		p, ok := prices[req.ItemID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrUnknownItem, req.ItemID)
		}
		if !p.IsActive {
			return nil, 0, fmt.Errorf("%w: %s", ErrInactiveItem, p.Code)
		}

		qty := int64(req.Quantity)
		if p.UnitPriceCents > 0 && qty > math.MaxInt64/p.UnitPriceCents {
			return nil, 0, fmt.Errorf("%w %d: amount out of range", ErrInvalidLine, i+1)
		}
		lineTotal := qty * p.UnitPriceCents
		if total > math.MaxInt64-lineTotal {
			return nil, 0, fmt.Errorf("%w: order total out of range", ErrInvalidLine)
		}
		total += lineTotal

		lines = append(lines, Line{
			LineNo:         i + 1,
			ItemID:         p.ID,
			ItemCode:       p.Code,
			ItemName:       p.Name,
			Quantity:       req.Quantity,
			UnitPriceCents: p.UnitPriceCents,
			LineTotalCents: lineTotal,
		})
	}
	return lines, total, nil
}

func lineItemIDs(in []LineInput) []string {
	seen := make(map[string]struct{}, len(in))
	ids := make([]string, 0, len(in))
	for _, l := range in {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		ids = append(ids, l.ItemID)
	}
	return ids
}
