package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/antonminaichev/mediexpress/internal/types/product"
)

type Stage string

const (
	StagePlaced         Stage = "PLACED"
	StagePreparing      Stage = "PREPARING"
	StageDispatched     Stage = "DISPATCHED"
	StageOutForDelivery Stage = "OUT_FOR_DELIVERY"
	StageDelivered      Stage = "DELIVERED"
)

// Stages is the lifecycle in order. An order only ever moves one step forward.
var Stages = []Stage{
	StagePlaced,
	StagePreparing,
	StageDispatched,
	StageOutForDelivery,
	StageDelivered,
}

// Index returns the position of s in Stages. Unknown values map to 0.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return 0
}

func (s Stage) Valid() bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

func (s Stage) IsTerminal() bool { return s == StageDelivered }

type HistoryEntry struct {
	Status Stage     `json:"status"`
	At     time.Time `json:"at"`
}

type Item struct {
	Product product.Product `json:"product"`
	Qty     int             `json:"qty"`
}

// Totals is the pricing snapshot taken when the order is placed.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Delivery decimal.Decimal `json:"delivery"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

type Order struct {
	OrderID   string         `json:"orderId"`
	CreatedAt time.Time      `json:"createdAt"`
	Status    Stage          `json:"status"`
	History   []HistoryEntry `json:"history"`
	Items     []Item         `json:"items"`
	Totals    Totals         `json:"totals"`
}

// Transition records one forward step observed while advancing an order.
type Transition struct {
	From Stage     `json:"from"`
	To   Stage     `json:"to"`
	At   time.Time `json:"at"`
}
