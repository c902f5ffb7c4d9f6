package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestReconcileMatchAndExtra(t *testing.T) {
	local := []LocalJob{{Ticket: "A1", Pay: d("100")}}
	external := map[string]decimal.Decimal{"A1": d("100"), "B2": d("50")}

	report := Reconcile(local, external)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, "A1", report.Rows[0].Ticket)
	assert.Equal(t, StatusMatch, report.Rows[0].Status)
	assert.Equal(t, "B2", report.Rows[1].Ticket)
	assert.Equal(t, StatusExtra, report.Rows[1].Status)
	assert.True(t, report.Rows[1].Diff.Equal(d("50")))
	assert.True(t, report.Rows[1].LocalPay.IsZero())

	assert.Equal(t, 1, report.Stats.Matches)
	assert.Equal(t, 1, report.Stats.VarianceCount)
	assert.True(t, report.Stats.VarianceAmount.Equal(d("50")), "variance amount %s", report.Stats.VarianceAmount)
	assert.Len(t, external, 2, "caller map must not be consumed")
}

func TestReconcileTolerance(t *testing.T) {
	tests := []struct {
		name     string
		external string
		status   Status
		diff     string
	}{
		{name: "sub cent noise matches", external: "100.004", status: StatusMatch, diff: "0.004"},
		{name: "two cents is a variance", external: "100.02", status: StatusVariance, diff: "0.02"},
		{name: "exactly one cent is a variance", external: "100.01", status: StatusVariance, diff: "0.01"},
		{name: "underpaid", external: "90", status: StatusVariance, diff: "-10"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			report := Reconcile(
				[]LocalJob{{Ticket: "CT1234567", Pay: d("100.00")}},
				map[string]decimal.Decimal{"CT1234567": d(tc.external)},
			)
			require.Len(t, report.Rows, 1)
			assert.Equal(t, tc.status, report.Rows[0].Status)
			assert.True(t, report.Rows[0].Diff.Equal(d(tc.diff)), "diff %s", report.Rows[0].Diff)
		})
	}
}

func TestReconcileMissing(t *testing.T) {
	report := Reconcile([]LocalJob{{Ticket: "A1", Pay: d("75.50")}}, nil)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, StatusMissing, report.Rows[0].Status)
	assert.True(t, report.Rows[0].Diff.Equal(d("-75.50")))
	assert.Equal(t, 0, report.Stats.Matches)
	assert.Equal(t, 1, report.Stats.VarianceCount)
	assert.True(t, report.Stats.VarianceAmount.Equal(d("-75.50")))
}

func TestReconcileEveryTicketAppearsOnce(t *testing.T) {
	local := []LocalJob{
		{Ticket: "A1", Pay: d("100")},
		{Ticket: "A2", Pay: d("80")},
		{Ticket: "A3", Pay: d("60")},
	}
	external := map[string]decimal.Decimal{
		"A1": d("100"),
		"A2": d("85"),
		"X9": d("40"),
		"X8": d("10"),
	}

	report := Reconcile(local, external)

	seen := map[string]int{}
	for _, row := range report.Rows {
		seen[row.Ticket]++
	}
	for _, ticket := range []string{"A1", "A2", "A3", "X8", "X9"} {
		assert.Equal(t, 1, seen[ticket], "ticket %s", ticket)
	}
	assert.Len(t, report.Rows, len(local)+2)
	assert.Equal(t, 1, report.Stats.Matches)
	assert.Equal(t, 4, report.Stats.VarianceCount)
	// +5 variance, -60 missing, +40 and +10 extra.
	assert.True(t, report.Stats.VarianceAmount.Equal(d("-5")), "variance %s", report.Stats.VarianceAmount)
	assert.True(t, report.Stats.LocalTotal.Equal(d("240")))
	assert.True(t, report.Stats.ExternalTotal.Equal(d("235")))
}

func TestReconcileTicketCaseInsensitive(t *testing.T) {
	report := Reconcile(
		[]LocalJob{{Ticket: "ct1234567", Pay: d("10")}},
		map[string]decimal.Decimal{" CT1234567 ": d("10")},
	)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, StatusMatch, report.Rows[0].Status)
}

func TestReconcileSortsByDate(t *testing.T) {
	mon := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	local := []LocalJob{
		{Ticket: "C3", Date: mon.AddDate(0, 0, 2), Pay: d("1")},
		{Ticket: "B2", Date: mon, Pay: d("1")},
		{Ticket: "A1", Date: mon.AddDate(0, 0, 1), Pay: d("1")},
	}
	report := Reconcile(local, map[string]decimal.Decimal{"Z0": d("3")})

	var order []string
	for _, row := range report.Rows {
		order = append(order, row.Ticket)
	}
	assert.Equal(t, []string{"B2", "A1", "C3", "Z0"}, order)
}

func TestReconcileIndependentOfInputOrder(t *testing.T) {
	external := map[string]decimal.Decimal{"A1": d("100"), "B2": d("55")}
	forward := Reconcile([]LocalJob{{Ticket: "A1", Pay: d("100")}, {Ticket: "B2", Pay: d("50")}}, external)
	backward := Reconcile([]LocalJob{{Ticket: "B2", Pay: d("50")}, {Ticket: "A1", Pay: d("100")}}, external)

	assert.Equal(t, forward.Stats.Matches, backward.Stats.Matches)
	assert.True(t, forward.Stats.VarianceAmount.Equal(backward.Stats.VarianceAmount))
}
