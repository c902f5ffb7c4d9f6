package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

type Entry struct {
	Key         string          `json:"key"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
