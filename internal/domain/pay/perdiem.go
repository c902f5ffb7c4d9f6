package pay

import (
	"time"

	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/rates"
)

const (
	ExtraPDSourceJob = "job"
	ExtraPDSourceLog = "log"
)

// HasWork reports whether any job on the list is billable.
func HasWork(jobs []JobRecord) bool {
	for _, job := range jobs {
		if IsBillable(job.InstallType) {
			return true
		}
	}
	return false
}

// StandardPerDiemApplies is true on every Sunday and on any other day with billable work.
func StandardPerDiemApplies(date time.Time, jobsOnDate []JobRecord) bool {
	if date.Weekday() == time.Sunday {
		return true
	}
	return HasWork(jobsForDay(date, jobsOnDate))
}

func StandardPerDiemAmount(date time.Time, jobsOnDate []JobRecord, table rates.Table) decimal.Decimal {
	if !StandardPerDiemApplies(date, jobsOnDate) {
		return decimal.Zero
	}
	return table.Rate(rates.KeyPerDiem)
}

// ExtraPerDiemSource returns which signal first marks the day for extra per
// diem, or "" when neither does. Job flags are checked before the daily log.
func ExtraPerDiemSource(date time.Time, jobsOnDate []JobRecord, log *DailyLog) string {
	for _, job := range jobsForDay(date, jobsOnDate) {
		if job.ExtraPerDiem {
			return ExtraPDSourceJob
		}
	}
	if log != nil && log.ExtraPerDiem && (log.LogDate.IsZero() || SameDay(log.LogDate, date)) {
		return ExtraPDSourceLog
	}
	return ""
}

// ExtraPerDiemAmount pays extra per diem at most once for the day.
func ExtraPerDiemAmount(date time.Time, jobsOnDate []JobRecord, log *DailyLog, table rates.Table) decimal.Decimal {
	if ExtraPerDiemSource(date, jobsOnDate, log) == "" {
		return decimal.Zero
	}
	return table.Rate(rates.KeyExtraPD)
}

// jobsForDay drops jobs dated on another day. Undated jobs are kept.
func jobsForDay(date time.Time, jobs []JobRecord) []JobRecord {
	out := jobs[:0:0]
	for _, job := range jobs {
		if job.InstallDate.IsZero() || SameDay(job.InstallDate, date) {
			out = append(out, job)
		}
	}
	return out
}
