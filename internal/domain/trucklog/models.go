package trucklog

import (
	"time"

	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/pay"
)

// Log is one technician's truck log for a single day.
// Mileage is the driven distance when entered by hand; zero means derive it
// from the odometer.
type Log struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	LogDate      time.Time       `json:"logDate"`
	Odometer     int             `json:"odometer"`
	Mileage      int             `json:"mileage"`
	Gallons      decimal.Decimal `json:"gallons"`
	FuelCost     decimal.Decimal `json:"fuelCost"`
	ExtraPerDiem bool            `json:"extraPerDiem"`
	Locked       bool            `json:"locked"`
	Notes        string          `json:"notes"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type Entry struct {
	Log
	Miles        int              `json:"miles"`
	MilesDerived bool             `json:"milesDerived"`
	MPG          *decimal.Decimal `json:"mpg,omitempty"`
}

type Totals struct {
	Miles    int             `json:"miles"`
	Gallons  decimal.Decimal `json:"gallons"`
	FuelCost decimal.Decimal `json:"fuelCost"`
}

func (l Log) DailyLog() pay.DailyLog {
	return pay.DailyLog{LogDate: l.LogDate, ExtraPerDiem: l.ExtraPerDiem}
}

func DailyLogs(entries []Entry) []pay.DailyLog {
	out := make([]pay.DailyLog, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.DailyLog())
	}
	return out
}
