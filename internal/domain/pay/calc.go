package pay

import (
	"strings"

	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/rates"
)

// IsBillable reports whether an install type earns base pay and counts as work.
func IsBillable(installType string) bool {
	code := strings.TrimSpace(installType)
	if code == "" {
		return false
	}
	upper := strings.ToUpper(code)
	return upper != InstallTypeDayOff && upper != InstallTypeNotDesignated
}

// LineItems itemises one job. Surcharges with zero quantity are never emitted.
func LineItems(job JobRecord, table rates.Table) []LineItem {
	items := make([]LineItem, 0, 4)

	if IsBillable(job.InstallType) {
		code := strings.TrimSpace(job.InstallType)
		items = append(items, newItem(code, "Base Job", KindBase, 1, table.Rate(code)))
	}

	if job.Spans > 0 {
		items = append(items, newItem(rates.CodeSpan, "Aerial Span", KindSurcharge, job.Spans,
			table.Resolve(rates.KeySpanPrice, rates.CodeSpan)))
	}

	if job.ConduitFt > 0 {
		items = append(items, newItem(rates.CodeConduit, "Conduit", KindSurcharge, job.ConduitFt,
			table.Resolve(rates.KeyConduitPerFt, rates.CodeConduit)))
	}

	// The first two jacks are part of the base job price.
	if job.JacksInstalled >= 2 {
		items = append(items, newItem(rates.CodeJackFirstAdd, "First Addtl Jack", KindSurcharge, 1,
			table.Resolve(rates.KeyJackFirstAdd, rates.CodeJackFirstAdd)))
	}
	if job.JacksInstalled > 2 {
		items = append(items, newItem(rates.CodeJackNextAdd, "Addtl Jack", KindSurcharge, job.JacksInstalled-2,
			table.Resolve(rates.KeyJackNextAdd, rates.CodeJackNextAdd)))
	}

	if job.CopperRemoved {
		items = append(items, newItem(rates.CodeCopperRemove, "Copper Removal", KindSurcharge, 1,
			table.Resolve(rates.KeyCopperRemove, rates.CodeCopperRemove)))
	}

	if job.ExtraPerDiem {
		items = append(items, newItem(rates.CodeLegacyPD, "Extra Per Diem", KindExtraPerDiem, 1,
			table.Resolve(rates.KeyExtraPD, rates.CodeLegacyPD)))
	}

	return items
}

// Total is the sum of every line item, including the job level extra per diem.
// It is the value cached as pay_amount.
func Total(job JobRecord, table rates.Table) decimal.Decimal {
	return sumItems(LineItems(job, table), true)
}

// WorkTotal excludes the job level extra per diem line, which the daily
// policy accounts for once per day.
func WorkTotal(job JobRecord, table rates.Table) decimal.Decimal {
	return sumItems(LineItems(job, table), false)
}

func Price(job JobRecord, table rates.Table) TicketPay {
	items := LineItems(job, table)
	return TicketPay{
		ID:           job.ID,
		TicketNumber: job.TicketNumber,
		InstallType:  job.InstallType,
		Items:        items,
		Total:        sumItems(items, true),
	}
}

func newItem(code, description string, kind ItemKind, quantity int, rate decimal.Decimal) LineItem {
	return LineItem{
		Code:        code,
		Description: description,
		Kind:        kind,
		Quantity:    quantity,
		UnitRate:    rate,
		Total:       rate.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

func sumItems(items []LineItem, includeExtraPD bool) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if !includeExtraPD && item.Kind == KindExtraPerDiem {
			continue
		}
		total = total.Add(item.Total)
	}
	return total
}
