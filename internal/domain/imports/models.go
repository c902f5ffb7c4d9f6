package imports

import (
	"time"

	"fieldpay/internal/domain/tickets"
)

type Batch struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Filename  string    `json:"filename"`
	Checksum  string    `json:"checksum"`
	RowsTotal int       `json:"rowsTotal"`
	Imported  int       `json:"imported"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"createdAt"`
}

// RowIssue points at a sheet row by its 1-based record number.
type RowIssue struct {
	Row    int    `json:"row"`
	Ticket string `json:"ticket,omitempty"`
	Reason string `json:"reason"`
}

type Result struct {
	Batch   Batch            `json:"batch"`
	Issues  []RowIssue       `json:"issues"`
	Tickets []tickets.Ticket `json:"tickets"`
}
