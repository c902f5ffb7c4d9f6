package rates

import "github.com/shopspring/decimal"

var DefaultLeadPay = decimal.NewFromInt(500)

// Defaults seeds the rate card on first use. Billing codes and surcharge
// overrides are left to the admin so legacy codes keep resolving.
var Defaults = []Entry{
	{Key: KeyIRSMileage, Amount: decimal.RequireFromString("0.70"), Description: "IRS mileage rate per mile"},
	{Key: KeyTaxPercent, Amount: decimal.RequireFromString("25"), Description: "Tax set-aside percent"},
	{Key: KeyLeadPay, Amount: DefaultLeadPay, Description: "Weekly lead pay"},
	{Key: KeyPerDiem, Amount: decimal.RequireFromString("50"), Description: "Standard per diem"},
	{Key: KeyExtraPD, Amount: decimal.RequireFromString("25"), Description: "Extra per diem"},
	{Key: "DO", Amount: decimal.Zero, Description: "Day off"},
	{Key: "ND", Amount: decimal.Zero, Description: "Not designated"},
}
