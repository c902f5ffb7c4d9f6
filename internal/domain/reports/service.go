package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/pay"
	"fieldpay/internal/domain/rates"
	"fieldpay/internal/domain/tickets"
	"fieldpay/internal/domain/trucklog"
)

type TicketLister interface {
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]tickets.Ticket, error)
}

type LogLister interface {
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]trucklog.Entry, error)
}

type RateLoader interface {
	Load(ctx context.Context) (rates.Table, error)
}

type DashboardStore interface {
	Dashboard(ctx context.Context, weekStart, weekEnd time.Time) (Dashboard, error)
}

type Service struct {
	tickets   TicketLister
	logs      LogLister
	rates     RateLoader
	dashboard DashboardStore
}

func NewService(tickets TicketLister, logs LogLister, rates RateLoader, dashboard DashboardStore) *Service {
	return &Service{tickets: tickets, logs: logs, rates: rates, dashboard: dashboard}
}

func (s *Service) Dashboard(ctx context.Context, now time.Time) (Dashboard, error) {
	start, end := pay.WeekBounds(now)
	return s.dashboard.Dashboard(ctx, start, end)
}

func (s *Service) Week(ctx context.Context, userID string, anyDate time.Time) (WeekStatement, error) {
	start, end := pay.WeekBounds(anyDate)
	jobs, logs, table, err := s.load(ctx, userID, start, end)
	if err != nil {
		return WeekStatement{}, err
	}
	return WeekStatement{
		UserID:  userID,
		Summary: pay.SummarizeWeek(start, tickets.JobRecords(jobs), trucklog.DailyLogs(logs), table),
		Logs:    logs,
		Mileage: trucklog.Sum(logs),
	}, nil
}

// Financials widens [from, to] to whole Monday-Sunday weeks so lead pay and
// the Sunday allowance are counted consistently.
func (s *Service) Financials(ctx context.Context, userID string, from, to time.Time) (Financials, error) {
	if from.After(to) {
		return Financials{}, ErrInvalidRange
	}
	start, _ := pay.WeekBounds(from)
	_, end := pay.WeekBounds(to)
	jobs, logs, table, err := s.load(ctx, userID, start, end)
	if err != nil {
		return Financials{}, err
	}

	records := tickets.JobRecords(jobs)
	dailyLogs := trucklog.DailyLogs(logs)
	gross := decimal.Zero
	weeks := 0
	for week := start; !week.After(end); week = week.AddDate(0, 0, pay.DaysPerWeek) {
		gross = gross.Add(pay.WeekTotal(week, records, dailyLogs, table))
		weeks++
	}

	out := ComputeFinancials(gross, trucklog.Sum(logs), table)
	out.From, out.To, out.Weeks = start, end, weeks
	return out, nil
}

func (s *Service) load(ctx context.Context, userID string, from, to time.Time) ([]tickets.Ticket, []trucklog.Entry, rates.Table, error) {
	jobs, err := s.tickets.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, nil, rates.Table{}, fmt.Errorf("list tickets: %w", err)
	}
	logs, err := s.logs.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, nil, rates.Table{}, fmt.Errorf("list truck logs: %w", err)
	}
	table, err := s.rates.Load(ctx)
	if err != nil {
		return nil, nil, rates.Table{}, fmt.Errorf("load rates: %w", err)
	}
	return jobs, logs, table, nil
}
