package sales

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salonpos/salonpos-backend/pkg/db/models"
	"github.com/salonpos/salonpos-backend/pkg/outbox/payloads"
)

// resolveProductLines snapshots catalog prices onto pivot rows. Ids missing from the
// catalog are dropped.
func resolveProductLines(inputs []ProductLineInput, catalog map[uuid.UUID]models.Product) ([]models.SaleProduct, decimal.Decimal) {
	lines := make([]models.SaleProduct, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		product, ok := catalog[in.ProductID]
		if !ok {
			continue
		}
		unit := product.UnitPrice.Round(2)
		subtotal := unit.Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2)
		lines = append(lines, models.SaleProduct{
			ProductID: product.ID,
			Quantity:  in.Quantity,
			UnitPrice: unit,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}
	return lines, total
}

// resolveServiceLines is resolveProductLines for services. A service line is charged
// once whatever its quantity.
func resolveServiceLines(inputs []ServiceLineInput, catalog map[uuid.UUID]models.Service) ([]models.SaleService, decimal.Decimal) {
	lines := make([]models.SaleService, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		service, ok := catalog[in.ServiceID]
		if !ok {
			continue
		}
		qty := in.Quantity
		if qty <= 0 {
			qty = 1
		}
		unit := service.UnitPrice.Round(2)
		lines = append(lines, models.SaleService{
			ServiceID: service.ID,
			Quantity:  qty,
			UnitPrice: unit,
			Subtotal:  unit,
		})
		total = total.Add(unit)
	}
	return lines, total
}

func sumProductLines(lines []models.SaleProduct) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

func sumServiceLines(lines []models.SaleService) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

// quantitiesByProduct aggregates quantities per product. The returned order lists each
// product once, by first appearance.
func quantitiesByProduct(lines []models.SaleProduct) (map[uuid.UUID]int, []uuid.UUID) {
	qty := make(map[uuid.UUID]int, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, seen := qty[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		qty[line.ProductID] += line.Quantity
	}
	return qty, order
}

// stockDeltas returns next - prev for every product in either map, skipping zeros, plus
// the union of ids in first-appearance order (next first).
func stockDeltas(prev, next map[uuid.UUID]int, nextOrder, prevOrder []uuid.UUID) (map[uuid.UUID]int, []uuid.UUID) {
	deltas := make(map[uuid.UUID]int, len(prev)+len(next))
	union := make([]uuid.UUID, 0, len(prev)+len(next))
	seen := make(map[uuid.UUID]struct{}, len(prev)+len(next))
	for _, ids := range [][]uuid.UUID{nextOrder, prevOrder} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			union = append(union, id)
			if d := next[id] - prev[id]; d != 0 {
				deltas[id] = d
			}
		}
	}
	return deltas, union
}

// positive keeps the deltas that consume stock.
func positive(deltas map[uuid.UUID]int) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(deltas))
	for id, d := range deltas {
		if d > 0 {
			out[id] = d
		}
	}
	return out
}

// saleTotal is max(0, gross - discount) at cent precision.
func saleTotal(gross, discount decimal.Decimal) decimal.Decimal {
	total := gross.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return total.Round(2)
}

// movements renders deltas in ascending id order for event payloads.
func movements(deltas map[uuid.UUID]int) []payloads.StockMovement {
	out := make([]payloads.StockMovement, 0, len(deltas))
	for id, qty := range deltas {
		if qty == 0 {
			continue
		}
		out = append(out, payloads.StockMovement{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out
}

// applyOrder sorts ids ascending so stock writes follow the lock order.
func applyOrder(deltas map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
