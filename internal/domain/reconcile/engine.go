package reconcile

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Reconcile diffs locally computed pay against an external ticket to amount map.
// The external map is copied, the caller's value is left untouched.
func Reconcile(local []LocalJob, external map[string]decimal.Decimal) Report {
	remaining := make(map[string]decimal.Decimal, len(external))
	labels := make(map[string]string, len(external))
	externalTotal := decimal.Zero
	for ticket, amount := range external {
		key := normalizeTicket(ticket)
		if key == "" {
			continue
		}
		label := strings.TrimSpace(ticket)
		if existing, ok := labels[key]; !ok || label < existing {
			labels[key] = label
		}
		remaining[key] = remaining[key].Add(amount)
		externalTotal = externalTotal.Add(amount)
	}

	report := Report{
		Rows: make([]Row, 0, len(local)+len(remaining)),
		Stats: Stats{
			VarianceAmount: decimal.Zero,
			LocalTotal:     decimal.Zero,
			ExternalTotal:  externalTotal,
		},
	}

	for _, job := range local {
		date := job.Date
		row := Row{
			Ticket:   job.Ticket,
			LocalPay: job.Pay,
		}
		if !date.IsZero() {
			row.Date = &date
		}
		report.Stats.LocalTotal = report.Stats.LocalTotal.Add(job.Pay)

		key := normalizeTicket(job.Ticket)
		amount, found := remaining[key]
		switch {
		case found && amount.Sub(job.Pay).Abs().LessThan(Tolerance):
			row.ExternalPay = amount
			row.Diff = amount.Sub(job.Pay)
			row.Status = StatusMatch
			delete(remaining, key)
			report.Stats.Matches++
		case found:
			row.ExternalPay = amount
			row.Diff = amount.Sub(job.Pay)
			row.Status = StatusVariance
			delete(remaining, key)
			report.Stats.VarianceCount++
			report.Stats.VarianceAmount = report.Stats.VarianceAmount.Add(row.Diff)
		default:
			row.ExternalPay = decimal.Zero
			row.Diff = job.Pay.Neg()
			row.Status = StatusMissing
			report.Stats.VarianceCount++
			report.Stats.VarianceAmount = report.Stats.VarianceAmount.Add(row.Diff)
		}
		report.Rows = append(report.Rows, row)
	}

	extras := make([]string, 0, len(remaining))
	for key := range remaining {
		extras = append(extras, key)
	}
	sort.Strings(extras)
	for _, key := range extras {
		amount := remaining[key]
		report.Rows = append(report.Rows, Row{
			Ticket:      labels[key],
			LocalPay:    decimal.Zero,
			ExternalPay: amount,
			Diff:        amount,
			Status:      StatusExtra,
		})
		report.Stats.VarianceCount++
		report.Stats.VarianceAmount = report.Stats.VarianceAmount.Add(amount)
	}

	SortRows(report.Rows)
	return report
}

// SortRows orders rows by date ascending. Undated extras go last, by ticket.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.Date == nil && b.Date == nil:
			return a.Ticket < b.Ticket
		case a.Date == nil:
			return false
		case b.Date == nil:
			return true
		case !a.Date.Equal(*b.Date):
			return a.Date.Before(*b.Date)
		default:
			return a.Ticket < b.Ticket
		}
	})
}

func normalizeTicket(ticket string) string {
	return strings.ToUpper(strings.TrimSpace(ticket))
}
