package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/pay"
	"fieldpay/internal/domain/trucklog"
)

type WeekStatement struct {
	UserID     string           `json:"userId"`
	Technician string           `json:"technician,omitempty"`
	Summary    pay.WeekSummary  `json:"summary"`
	Logs       []trucklog.Entry `json:"logs"`
	Mileage    trucklog.Totals  `json:"mileage"`
}

// Financials is a tax-planning estimate over whole pay weeks.
type Financials struct {
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	Weeks            int             `json:"weeks"`
	GrossPay         decimal.Decimal `json:"grossPay"`
	Miles            int             `json:"miles"`
	MileageRate      decimal.Decimal `json:"mileageRate"`
	MileageDeduction decimal.Decimal `json:"mileageDeduction"`
	FuelCost         decimal.Decimal `json:"fuelCost"`
	TaxableEstimate  decimal.Decimal `json:"taxableEstimate"`
	TaxPercent       decimal.Decimal `json:"taxPercent"`
	TaxSetAside      decimal.Decimal `json:"taxSetAside"`
}
