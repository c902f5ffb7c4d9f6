package tickets

import (
	"strings"
	"time"

	"fieldpay/internal/domain/pay"
)

type Ticket struct {
	pay.JobRecord
	CustomerName string    `json:"customerName"`
	Address      string    `json:"address"`
	Notes        string    `json:"notes"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RawTicket is a ticket as it arrives from a form, JSON body or import row.
// Quantities and flags are untyped and normalised by Normalize.
type RawTicket struct {
	InstallDate    time.Time `json:"-"`
	TicketNumber   string    `json:"ticketNumber"`
	InstallType    string    `json:"installType"`
	Spans          any       `json:"spans"`
	ConduitFt      any       `json:"conduitFt"`
	JacksInstalled any       `json:"jacksInstalled"`
	CopperRemoved  any       `json:"copperRemoved"`
	ExtraPerDiem   any       `json:"extraPerDiem"`
	CustomerName   string    `json:"customerName"`
	Address        string    `json:"address"`
	Notes          string    `json:"notes"`
}

func (r RawTicket) Normalize(userID, source string) Ticket {
	return Ticket{
		JobRecord: pay.JobRecord{
			UserID:         userID,
			InstallDate:    pay.DateOf(r.InstallDate),
			TicketNumber:   strings.TrimSpace(r.TicketNumber),
			InstallType:    strings.TrimSpace(r.InstallType),
			Spans:          pay.ToCount(r.Spans),
			ConduitFt:      pay.ToCount(r.ConduitFt),
			JacksInstalled: pay.ToCount(r.JacksInstalled),
			CopperRemoved:  pay.ToBool(r.CopperRemoved),
			ExtraPerDiem:   pay.ToBool(r.ExtraPerDiem),
		},
		CustomerName: strings.TrimSpace(r.CustomerName),
		Address:      strings.TrimSpace(r.Address),
		Notes:        strings.TrimSpace(r.Notes),
		Source:       source,
	}
}

func JobRecords(list []Ticket) []pay.JobRecord {
	out := make([]pay.JobRecord, 0, len(list))
	for _, t := range list {
		out = append(out, t.JobRecord)
	}
	return out
}

type RepriceResult struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
}
