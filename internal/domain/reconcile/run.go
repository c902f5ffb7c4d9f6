package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SourceKindTable = "table"
	SourceKindText  = "text"
)

// Run is the stored summary of one weekly reconciliation.
type Run struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	WeekStart      time.Time       `json:"weekStart"`
	SourceKind     string          `json:"sourceKind"`
	SourceName     string          `json:"sourceName,omitempty"`
	Parsed         int             `json:"parsed"`
	Skipped        int             `json:"skipped"`
	Matches        int             `json:"matches"`
	VarianceCount  int             `json:"varianceCount"`
	VarianceAmount decimal.Decimal `json:"varianceAmount"`
	LocalTotal     decimal.Decimal `json:"localTotal"`
	ExternalTotal  decimal.Decimal `json:"externalTotal"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type WeekReport struct {
	RunID     string       `json:"runId,omitempty"`
	WeekStart time.Time    `json:"weekStart"`
	WeekEnd   time.Time    `json:"weekEnd"`
	Source    SourceResult `json:"source"`
	Report
}

// Input is an external scrub report, either an uploaded sheet already read
// into rows or pasted text.
type Input struct {
	Kind string
	Name string
	Rows [][]string
	Text string
}

func (in Input) Parse() SourceResult {
	if in.Kind == SourceKindText {
		return FromText(in.Text)
	}
	return FromTable(in.Rows)
}
