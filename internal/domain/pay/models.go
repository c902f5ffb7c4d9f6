package pay

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InstallTypeDayOff        = "DO"
	InstallTypeNotDesignated = "ND"
)

// JobRecord holds the raw ticket fields pricing reads. Flags and counts are
// already normalised; use ToBool and ToCount at the ingestion boundary.
type JobRecord struct {
	ID             string          `json:"id,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	InstallDate    time.Time       `json:"installDate"`
	TicketNumber   string          `json:"ticketNumber"`
	InstallType    string          `json:"installType"`
	Spans          int             `json:"spans"`
	ConduitFt      int             `json:"conduitFt"`
	JacksInstalled int             `json:"jacksInstalled"`
	CopperRemoved  bool            `json:"copperRemoved"`
	ExtraPerDiem   bool            `json:"extraPerDiem"`
	PayAmount      decimal.Decimal `json:"payAmount"`
}

// DailyLog is the per-day truck log signal the per diem policy reads.
type DailyLog struct {
	LogDate      time.Time `json:"logDate"`
	ExtraPerDiem bool      `json:"extraPerDiem"`
}

type ItemKind string

const (
	KindBase         ItemKind = "base"
	KindSurcharge    ItemKind = "surcharge"
	KindExtraPerDiem ItemKind = "extra_per_diem"
)

type LineItem struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Kind        ItemKind        `json:"kind"`
	Quantity    int             `json:"quantity"`
	UnitRate    decimal.Decimal `json:"unitRate"`
	Total       decimal.Decimal `json:"total"`
}

type TicketPay struct {
	ID           string          `json:"id,omitempty"`
	TicketNumber string          `json:"ticketNumber"`
	InstallType  string          `json:"installType"`
	Items        []LineItem      `json:"items"`
	Total        decimal.Decimal `json:"total"`
}

type DaySummary struct {
	Date          time.Time       `json:"date"`
	Weekday       string          `json:"weekday"`
	Tickets       []TicketPay     `json:"tickets"`
	HasWork       bool            `json:"hasWork"`
	HasExtraPD    bool            `json:"hasExtraPerDiem"`
	ExtraPDSource string          `json:"extraPerDiemSource,omitempty"`
	JobPay        decimal.Decimal `json:"jobPay"`
	PerDiem       decimal.Decimal `json:"perDiem"`
	ExtraPerDiem  decimal.Decimal `json:"extraPerDiem"`
	Total         decimal.Decimal `json:"total"`
}

type WeekSummary struct {
	Start           time.Time       `json:"start"`
	End             time.Time       `json:"end"`
	Days            []DaySummary    `json:"days"`
	HasBillableWork bool            `json:"hasBillableWork"`
	JobPay          decimal.Decimal `json:"jobPay"`
	PerDiem         decimal.Decimal `json:"perDiem"`
	ExtraPerDiem    decimal.Decimal `json:"extraPerDiem"`
	LeadPay         decimal.Decimal `json:"leadPay"`
	Total           decimal.Decimal `json:"total"`
}
