package usage

import (
	"context"
	"testing"
	"time"
)

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

func TestGetReport_DailyPeriod(t *testing.T) {
	br := &mockBudgetReader{
		dailyLimit:     10000,
		dailyUsed:      3000,
		remainingDaily: 7000,
	}
	svc := New(br)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	}

	r := svc.GetReport(context.Background(), PeriodDay)

	if r.Period != PeriodDay {
		t.Errorf("period = %q, want %q", r.Period, PeriodDay)
	}
	dayStart := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart != dayStart.UnixMilli() {
		t.Errorf("period start = %d, want %d", r.PeriodStart, dayStart.UnixMilli())
	}
	if r.PeriodEnd != dayStart.Add(24*time.Hour).UnixMilli() {
		t.Errorf("period end = %d, want %d", r.PeriodEnd, dayStart.Add(24*time.Hour).UnixMilli())
	}
	if r.TokenLimit != 10000 || r.TokensUsed != 3000 || r.TokensRemaining != 7000 {
		t.Errorf("unexpected budget fields: %+v", r)
	}
	if r.Exhausted {
		t.Error("report exhausted with tokens remaining")
	}
	if r.ResetsAt != r.PeriodEnd {
		t.Errorf("resets_at = %d, want %d", r.ResetsAt, r.PeriodEnd)
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	br := &mockBudgetReader{
		monthlyLimit:     100000,
		monthlyUsed:      100000,
		remainingMonthly: 0,
	}
	svc := New(br)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	}

	r := svc.GetReport(context.Background(), PeriodMonth)

	monthStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart != monthStart.UnixMilli() {
		t.Errorf("period start = %d, want %d", r.PeriodStart, monthStart.UnixMilli())
	}
	if r.PeriodEnd != monthStart.AddDate(0, 1, 0).UnixMilli() {
		t.Errorf("period end = %d, want %d", r.PeriodEnd, monthStart.AddDate(0, 1, 0).UnixMilli())
	}
	if !r.Exhausted {
		t.Error("expected exhausted report at zero remaining")
	}
}

func TestGetReport_UnknownPeriodFallsBackToMonth(t *testing.T) {
	svc := New(&mockBudgetReader{monthlyLimit: 100, remainingMonthly: 100})

	r := svc.GetReport(context.Background(), Period("quarter"))

	if r.Period != PeriodMonth {
		t.Errorf("period = %q, want %q", r.Period, PeriodMonth)
	}
}

func TestGetReport_NilReader_Unlimited(t *testing.T) {
	svc := New(nil)

	r := svc.GetReport(context.Background(), PeriodDay)

	if r.TokenLimit != 0 || r.TokensUsed != 0 {
		t.Errorf("unexpected budget fields: %+v", r)
	}
	if r.TokensRemaining != -1 {
		t.Errorf("remaining = %d, want -1 for unlimited", r.TokensRemaining)
	}
	if r.Exhausted {
		t.Error("unlimited budget reported exhausted")
	}
}

func TestGetReport_ZeroLimit_Unlimited(t *testing.T) {
	svc := New(&mockBudgetReader{dailyLimit: 0, dailyUsed: 500})

	r := svc.GetReport(context.Background(), PeriodDay)

	if r.TokensRemaining != -1 {
		t.Errorf("remaining = %d, want -1 for zero limit", r.TokensRemaining)
	}
	if r.TokensUsed != 500 {
		t.Errorf("used = %d, want 500", r.TokensUsed)
	}
}
