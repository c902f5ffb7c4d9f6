package reports

import (
	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/rates"
	"fieldpay/internal/domain/trucklog"
)

var hundred = decimal.NewFromInt(100)

// ComputeFinancials derives deductions and the tax set-aside from gross pay
// and the period's mileage. The taxable estimate never goes below zero.
func ComputeFinancials(gross decimal.Decimal, mileage trucklog.Totals, table rates.Table) Financials {
	mileageRate := table.Rate(rates.KeyIRSMileage)
	taxPercent := table.Rate(rates.KeyTaxPercent)

	deduction := mileageRate.Mul(decimal.NewFromInt(int64(mileage.Miles))).Round(2)
	taxable := gross.Sub(deduction)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	return Financials{
		GrossPay:         gross,
		Miles:            mileage.Miles,
		MileageRate:      mileageRate,
		MileageDeduction: deduction,
		FuelCost:         mileage.FuelCost,
		TaxableEstimate:  taxable,
		TaxPercent:       taxPercent,
		TaxSetAside:      taxable.Mul(taxPercent).Div(hundred).Round(2),
	}
}
