package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusMatch    Status = "Match"
	StatusVariance Status = "Variance"
	StatusMissing  Status = "Missing"
	StatusExtra    Status = "Extra"
)

// Tolerance absorbs rounding noise between two independently computed figures.
var Tolerance = decimal.RequireFromString("0.01")

type LocalJob struct {
	Ticket string          `json:"ticket"`
	Date   time.Time       `json:"date"`
	Pay    decimal.Decimal `json:"pay"`
}

type Row struct {
	Ticket      string          `json:"ticket"`
	Date        *time.Time      `json:"date,omitempty"`
	LocalPay    decimal.Decimal `json:"localPay"`
	ExternalPay decimal.Decimal `json:"externalPay"`
	Diff        decimal.Decimal `json:"diff"`
	Status      Status          `json:"status"`
}

type Stats struct {
	Matches        int             `json:"matches"`
	VarianceCount  int             `json:"varianceCount"`
	VarianceAmount decimal.Decimal `json:"varianceAmount"`
	LocalTotal     decimal.Decimal `json:"localTotal"`
	ExternalTotal  decimal.Decimal `json:"externalTotal"`
}

type Report struct {
	Rows  []Row `json:"rows"`
	Stats Stats `json:"stats"`
}

// SourceResult is a parsed scrub report plus the lines that could not be used.
type SourceResult struct {
	Amounts map[string]decimal.Decimal `json:"-"`
	Parsed  int                        `json:"parsed"`
	Skipped int                        `json:"skipped"`
}
