package pay

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/rates"
)

const DaysPerWeek = 7

// WeekStart returns the most recent day on or before date falling on first.
func WeekStart(date time.Time, first time.Weekday) time.Time {
	day := DateOf(date)
	offset := (int(day.Weekday()) - int(first) + DaysPerWeek) % DaysPerWeek
	return day.AddDate(0, 0, -offset)
}

// WeekBounds returns the Monday through Sunday pay week containing date.
func WeekBounds(date time.Time) (time.Time, time.Time) {
	start := WeekStart(date, time.Monday)
	return start, start.AddDate(0, 0, DaysPerWeek-1)
}

// SummarizeWeek prices every day of the pay week containing anyDate. Jobs and
// logs outside the window are ignored.
func SummarizeWeek(anyDate time.Time, jobs []JobRecord, logs []DailyLog, table rates.Table) WeekSummary {
	start, end := WeekBounds(anyDate)

	jobsByDay := map[string][]JobRecord{}
	for _, job := range jobs {
		if job.InstallDate.IsZero() {
			continue
		}
		key := DayKey(DateOf(job.InstallDate))
		jobsByDay[key] = append(jobsByDay[key], job)
	}
	logsByDay := map[string]DailyLog{}
	for _, log := range logs {
		logsByDay[DayKey(DateOf(log.LogDate))] = log
	}

	summary := WeekSummary{
		Start:        start,
		End:          end,
		Days:         make([]DaySummary, 0, DaysPerWeek),
		JobPay:       decimal.Zero,
		PerDiem:      decimal.Zero,
		ExtraPerDiem: decimal.Zero,
		LeadPay:      decimal.Zero,
	}

	for i := 0; i < DaysPerWeek; i++ {
		date := start.AddDate(0, 0, i)
		key := DayKey(date)
		var log *DailyLog
		if entry, ok := logsByDay[key]; ok {
			log = &entry
		}
		day := summarizeDay(date, jobsByDay[key], log, table)
		if day.HasWork {
			summary.HasBillableWork = true
		}
		summary.JobPay = summary.JobPay.Add(day.JobPay)
		summary.PerDiem = summary.PerDiem.Add(day.PerDiem)
		summary.ExtraPerDiem = summary.ExtraPerDiem.Add(day.ExtraPerDiem)
		summary.Days = append(summary.Days, day)
	}

	if summary.HasBillableWork {
		summary.LeadPay = table.RateOr(rates.KeyLeadPay, rates.DefaultLeadPay)
	}
	summary.Total = summary.JobPay.Add(summary.PerDiem).Add(summary.ExtraPerDiem).Add(summary.LeadPay)
	return summary
}

// WeekTotal is the pay for the week containing anyDate including lead pay.
func WeekTotal(anyDate time.Time, jobs []JobRecord, logs []DailyLog, table rates.Table) decimal.Decimal {
	return SummarizeWeek(anyDate, jobs, logs, table).Total
}

func summarizeDay(date time.Time, jobs []JobRecord, log *DailyLog, table rates.Table) DaySummary {
	sorted := make([]JobRecord, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TicketNumber < sorted[j].TicketNumber
	})

	day := DaySummary{
		Date:    date,
		Weekday: date.Weekday().String(),
		Tickets: make([]TicketPay, 0, len(sorted)),
		HasWork: HasWork(sorted),
		JobPay:  decimal.Zero,
	}

	for _, job := range sorted {
		priced := Price(job, table)
		day.Tickets = append(day.Tickets, priced)
		day.JobPay = day.JobPay.Add(WorkTotal(job, table))
	}

	day.PerDiem = StandardPerDiemAmount(date, sorted, table)
	day.ExtraPDSource = ExtraPerDiemSource(date, sorted, log)
	day.HasExtraPD = day.ExtraPDSource != ""
	day.ExtraPerDiem = decimal.Zero
	if day.HasExtraPD {
		day.ExtraPerDiem = table.Rate(rates.KeyExtraPD)
	}
	day.Total = day.JobPay.Add(day.PerDiem).Add(day.ExtraPerDiem)
	return day
}
