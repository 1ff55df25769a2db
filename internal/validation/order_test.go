package validation

import (
	"testing"

	"Heliox/internal/domain/models"
)

func sampleOrder() *models.Order {
	return &models.Order{
		ID:        "ord-1",
		AccountID: "acct-1",
		Symbol:    "BTC_USD",
		Side:      models.OrderBuy,
		Type:      models.OrderLimit,
		Quantity:  0.5,
		Price:     42000,
	}
}

func TestValidateOrderClean(t *testing.T) {
	res := ValidateOrder(sampleOrder())
	if !res.Valid {
		t.Fatalf("expected valid, errors: %v", res.Errors)
	}
}

func TestValidateOrderStructural(t *testing.T) {
	o := sampleOrder()
	o.Symbol = "btc"
	if res := ValidateOrder(o); res.Valid {
		t.Fatalf("bad symbol should fail")
	}

	o = sampleOrder()
	o.Quantity = 0
	if res := ValidateOrder(o); res.Valid {
		t.Fatalf("zero quantity should fail")
	}

	o = sampleOrder()
	o.Price = 2_000_000
	if res := ValidateOrder(o); res.Valid {
		t.Fatalf("price above bound should fail")
	}

	o = sampleOrder()
	o.Side = "SHORT"
	if res := ValidateOrder(o); res.Valid {
		t.Fatalf("unknown side should fail")
	}

	o = sampleOrder()
	o.Type = "TRAILING"
	if res := ValidateOrder(o); res.Valid {
		t.Fatalf("unknown type should fail")
	}
}

func TestValidateStopLimitPriceOrdering(t *testing.T) {
	// Buy: limit must be at or above the stop.
	o := sampleOrder()
	o.Type = models.OrderStopLimit
	o.StopPrice = 43000
	o.Price = 42000
	if res := ValidateOrder(o); res.Valid {
		t.Fatalf("buy stop-limit with limit below stop should fail")
	}
	o.Price = 43000
	if res := ValidateOrder(o); !res.Valid {
		t.Fatalf("buy stop-limit with limit equal to stop should pass, errors: %v", res.Errors)
	}

	// Sell: limit must be at or below the stop.
	o = sampleOrder()
	o.Side = models.OrderSell
	o.Type = models.OrderStopLimit
	o.StopPrice = 41000
	o.Price = 42000
	if res := ValidateOrder(o); res.Valid {
		t.Fatalf("sell stop-limit with limit above stop should fail")
	}
	o.Price = 41000
	if res := ValidateOrder(o); !res.Valid {
		t.Fatalf("sell stop-limit with limit equal to stop should pass, errors: %v", res.Errors)
	}
}
