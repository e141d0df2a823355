package domain

// TradeType represents the direction of a trade (Buy or Sell).
type TradeType string

const (
	Buy  TradeType = "Buy"
	Sell TradeType = "Sell"
)

// TradeStatus represents the lifecycle status of a journal trade.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "Open"
	StatusClosed TradeStatus = "Closed"
)

// OrderAction is the side of a single order inside a trade.
type OrderAction string

const (
	ActionBuy  OrderAction = "BUY"
	ActionSell OrderAction = "SELL"
)

const (
	// DateLayout is the calendar date format used for trade and order dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wall-clock format used for order times.
	TimeLayout = "15:04"

	// DefaultMarket is assigned to trades created without a market.
	DefaultMarket = "FUTURES"
	// DefaultConfidence is assigned to trades created without a confidence score.
	DefaultConfidence = 5
)
