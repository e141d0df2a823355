package domain

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// TradeOrder is a single fill recorded against a trade, in entry order.
type TradeOrder struct {
	Action   OrderAction     `json:"action" yaml:"action" validate:"required,oneof=BUY SELL"`
	Date     string          `json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	Time     string          `json:"time" yaml:"time" validate:"omitempty,datetime=15:04"`
	Quantity int64           `json:"quantity" yaml:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price" yaml:"price" validate:"gte=0"`
	Fee      decimal.Decimal `json:"fee" yaml:"fee" validate:"gte=0"`
}

// Trade represents a journaled trade.
type Trade struct {
	ID         string                           `json:"id" yaml:"id"`
	UserID     string                           `json:"userId" yaml:"user_id"`
	Symbol     string                           `json:"symbol" yaml:"symbol" validate:"required"`
	EntryPrice decimal.Decimal                  `json:"entryPrice" yaml:"entry_price" validate:"gte=0"`
	ExitPrice  optional.Option[decimal.Decimal] `json:"exitPrice" yaml:"exit_price" validate:"omitempty,gte=0"`
	Quantity   int64                            `json:"quantity" yaml:"quantity" validate:"gt=0"`
	Type       TradeType                        `json:"type" yaml:"type" validate:"required,oneof=Buy Sell"`
	Status     TradeStatus                      `json:"status" yaml:"status" validate:"required,oneof=Open Closed"`
	PnL        decimal.Decimal                  `json:"pnl" yaml:"pnl"`
	Date       string                           `json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	Orders     []TradeOrder                     `json:"orders" yaml:"orders" validate:"dive"`
	Market     string                           `json:"market" yaml:"market"`
	Target     optional.Option[decimal.Decimal] `json:"target" yaml:"target" validate:"omitempty,gte=0"`
	StopLoss   optional.Option[decimal.Decimal] `json:"stopLoss" yaml:"stop_loss" validate:"omitempty,gte=0"`
	Tags       []string                         `json:"tags" yaml:"tags"`
	StrategyID optional.Option[string]          `json:"strategyId" yaml:"strategy_id"`
	Notes      string                           `json:"notes" yaml:"notes"`
	Confidence int                              `json:"confidence" yaml:"confidence" validate:"gte=0,lte=10"`
	ImageURLs  []string                         `json:"imageUrls" yaml:"image_urls" validate:"dive,url"`
	CreatedAt  time.Time                        `json:"createdAt" yaml:"created_at"`
	UpdatedAt  time.Time                        `json:"updatedAt" yaml:"updated_at"`
}

// IsClosed checks if the trade status is closed.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}

// HasStrategy reports whether the trade is linked to the given strategy.
func (t *Trade) HasStrategy(strategyID string) bool {
	return t.StrategyID.IsSome() && t.StrategyID.Unwrap() == strategyID
}

// TotalFees sums the fees of every order recorded against the trade.
func (t *Trade) TotalFees() decimal.Decimal {
	total := decimal.Zero
	for _, o := range t.Orders {
		total = total.Add(o.Fee)
	}
	return total
}

// RealizedPnL computes the profit of closing the trade at exitPrice.
// Buy trades gain when price rises, Sell trades when it falls. Order fees are deducted.
func (t *Trade) RealizedPnL(exitPrice decimal.Decimal) decimal.Decimal {
	qty := decimal.NewFromInt(t.Quantity)
	move := exitPrice.Sub(t.EntryPrice)
	if t.Type == Sell {
		move = move.Neg()
	}
	return move.Mul(qty).Sub(t.TotalFees())
}

// Clone returns a deep copy of the trade so callers can mutate it freely.
func (t *Trade) Clone() *Trade {
	c := *t
	c.Orders = append([]TradeOrder(nil), t.Orders...)
	c.Tags = append([]string(nil), t.Tags...)
	c.ImageURLs = append([]string(nil), t.ImageURLs...)
	return &c
}
