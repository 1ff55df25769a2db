package validation

import (
	"fmt"

	"Heliox/internal/domain/models"
)

// ValidateOrder checks order structure and the type-dependent price
// ordering constraints.
func ValidateOrder(o *models.Order) *Result {
	res := newResult()

	// Structural tier.
	if !ValidSymbol(o.Symbol) {
		res.addError("invalid trading symbol format")
	}
	if !ValidQuantity(o.Quantity) {
		res.addError("invalid order quantity")
	}
	if o.Price != 0 && !ValidPrice(o.Price) {
		res.addError("invalid order price")
	}
	if o.StopPrice != 0 && !ValidPrice(o.StopPrice) {
		res.addError("invalid stop price")
	}
	switch o.Side {
	case models.OrderBuy, models.OrderSell:
	default:
		res.addError(fmt.Sprintf("unknown order side %q", o.Side))
	}
	switch o.Type {
	case models.OrderMarket, models.OrderLimit, models.OrderStop, models.OrderStopLimit:
	default:
		res.addError(fmt.Sprintf("unknown order type %q", o.Type))
	}

	// Business-rule tier: stop-limit price relationship.
	if o.Type == models.OrderStopLimit && o.Price > 0 && o.StopPrice > 0 {
		if o.Side == models.OrderBuy && o.Price < o.StopPrice {
			res.addError("for buy stop-limit orders, limit price must be >= stop price")
		}
		if o.Side == models.OrderSell && o.Price > o.StopPrice {
			res.addError("for sell stop-limit orders, limit price must be <= stop price")
		}
	}

	return res
}
