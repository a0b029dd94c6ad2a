package reports

import (
	"context"
	"strconv"
	"time"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// Source runs the underlying aggregation queries.
type Source interface {
	MonthlyTrend(ctx context.Context, year int) ([]MonthlyTrendRow, error)
	FranchiseProfit(ctx context.Context, fromDate, toDate time.Time) ([]FranchiseProfitRow, error)
	MachineRanking(ctx context.Context, fromDate, toDate time.Time) ([]MachineRankRow, error)
	PaymentStatusBreakdown(ctx context.Context) ([]StatusBreakdownRow, error)
}

// Service serves dashboard reports through the versioned cache.
type Service struct {
	source Source
	cache  *Cache
}

// NewService constructs a reports service. cache may be nil; reports are
// then computed on every call.
func NewService(source Source, cache *Cache) *Service {
	return &Service{source: source, cache: cache}
}

// MonthlyTrend returns the month-by-month sales trend for one year.
func (s *Service) MonthlyTrend(ctx context.Context, year int) ([]MonthlyTrendRow, error) {
	key, err := s.cache.BuildKey(ctx, keyMonthlyTrend(year))
	if err != nil {
		return nil, err
	}
	var out []MonthlyTrendRow
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.source.MonthlyTrend(ctx, year)
	})
	return out, err
}

// FranchiseProfit returns the per-franchise summary over a range.
func (s *Service) FranchiseProfit(ctx context.Context, fromDate, toDate time.Time) ([]FranchiseProfitRow, error) {
	key, err := s.cache.BuildKey(ctx, keyFranchiseProfit(
		fromDate.Format(settlement.DateLayout), toDate.Format(settlement.DateLayout)))
	if err != nil {
		return nil, err
	}
	var out []FranchiseProfitRow
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.source.FranchiseProfit(ctx, fromDate, toDate)
	})
	return out, err
}

// MachineRanking returns machines ordered by sales over a range.
func (s *Service) MachineRanking(ctx context.Context, fromDate, toDate time.Time) ([]MachineRankRow, error) {
	key, err := s.cache.BuildKey(ctx, keyMachineRanking(
		fromDate.Format(settlement.DateLayout), toDate.Format(settlement.DateLayout)))
	if err != nil {
		return nil, err
	}
	var out []MachineRankRow
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.source.MachineRanking(ctx, fromDate, toDate)
	})
	return out, err
}

// PaymentStatusBreakdown returns sale counts per reconciled status.
func (s *Service) PaymentStatusBreakdown(ctx context.Context) ([]StatusBreakdownRow, error) {
	key, err := s.cache.BuildKey(ctx, keyPaymentStatus())
	if err != nil {
		return nil, err
	}
	var out []StatusBreakdownRow
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.source.PaymentStatusBreakdown(ctx)
	})
	return out, err
}

// Warm precomputes the common dashboard views for the current period. Used
// by the background warmup job after a cache bump.
func (s *Service) Warm(ctx context.Context, now time.Time) error {
	year := now.Year()
	monthStart := time.Date(year, now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	if _, err := s.MonthlyTrend(ctx, year); err != nil {
		return err
	}
	if _, err := s.FranchiseProfit(ctx, monthStart, monthEnd); err != nil {
		return err
	}
	if _, err := s.MachineRanking(ctx, monthStart, monthEnd); err != nil {
		return err
	}
	_, err := s.PaymentStatusBreakdown(ctx)
	return err
}

// yearOrDefault parses a query year, defaulting to the current one.
func yearOrDefault(raw string, now time.Time) int {
	if raw == "" {
		return now.Year()
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2100 {
		return now.Year()
	}
	return year
}
