// Package usage reports embedding token consumption against the
// configured budget.
package usage

import (
	"context"
	"time"
)

// Period selects the reporting window.
type Period string

// Reporting periods.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// Report describes token usage for one period. A zero TokenLimit means
// unlimited; TokensRemaining is -1 in that case.
type Report struct {
	Period          Period `json:"period"`
	PeriodStart     int64  `json:"period_start"` // unix ms
	PeriodEnd       int64  `json:"period_end"`   // unix ms
	TokenLimit      int64  `json:"token_limit"`
	TokensUsed      int64  `json:"tokens_used"`
	TokensRemaining int64  `json:"tokens_remaining"`
	Exhausted       bool   `json:"exhausted"`
	ResetsAt        int64  `json:"resets_at"` // unix ms
}

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the given period. Unknown periods
// fall back to the monthly window.
func (s *Service) GetReport(_ context.Context, period Period) Report {
	now := s.now().UTC()

	var start, end time.Time
	var limit, used, remaining int64

	switch period {
	case PeriodDay:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
		if s.br != nil {
			limit = s.br.DailyLimit()
			used = s.br.DailyUsed()
			remaining = s.br.RemainingDaily()
		}
	default:
		period = PeriodMonth
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			remaining = s.br.RemainingMonthly()
		}
	}

	if s.br == nil || limit == 0 {
		remaining = -1
	}

	return Report{
		Period:          period,
		PeriodStart:     start.UnixMilli(),
		PeriodEnd:       end.UnixMilli(),
		TokenLimit:      limit,
		TokensUsed:      used,
		TokensRemaining: remaining,
		Exhausted:       limit > 0 && remaining <= 0,
		ResetsAt:        end.UnixMilli(),
	}
}
