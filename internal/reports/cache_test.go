package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestFetchJSONCachesLoaderResult(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return []MonthlyTrendRow{{Month: "2024-06", SaleCount: 3, SalesAmount: 15000}}, nil
	}

	key, err := cache.BuildKey(ctx, keyMonthlyTrend(2024))
	require.NoError(t, err)

	var first []MonthlyTrendRow
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	var second []MonthlyTrendRow
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	require.Equal(t, 1, calls, "second fetch must hit the cache")
	require.Equal(t, first, second)
}

func TestBumpOrphansOldKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, keyPaymentStatus())
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.BuildKey(ctx, keyPaymentStatus())
	require.NoError(t, err)
	require.NotEqual(t, before, after, "a bump must change the composed key")
}

func TestNilCachePassesThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return []StatusBreakdownRow{{Status: "Due", Count: 2}}, nil
	}

	key, err := cache.BuildKey(ctx, keyPaymentStatus())
	require.NoError(t, err)

	var out []StatusBreakdownRow
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 2, calls, "without redis every fetch recomputes")
	require.NoError(t, cache.Bump(ctx))
}

type fakeSource struct {
	trendCalls int
}

func (f *fakeSource) MonthlyTrend(ctx context.Context, year int) ([]MonthlyTrendRow, error) {
	f.trendCalls++
	return []MonthlyTrendRow{{Month: "2024-01", SaleCount: f.trendCalls}}, nil
}

func (f *fakeSource) FranchiseProfit(ctx context.Context, fromDate, toDate time.Time) ([]FranchiseProfitRow, error) {
	return nil, nil
}

func (f *fakeSource) MachineRanking(ctx context.Context, fromDate, toDate time.Time) ([]MachineRankRow, error) {
	return nil, nil
}

func (f *fakeSource) PaymentStatusBreakdown(ctx context.Context) ([]StatusBreakdownRow, error) {
	return nil, nil
}

func TestServiceRecomputesAfterBump(t *testing.T) {
	cache := newTestCache(t)
	source := &fakeSource{}
	svc := NewService(source, cache)
	ctx := context.Background()

	first, err := svc.MonthlyTrend(ctx, 2024)
	require.NoError(t, err)
	cached, err := svc.MonthlyTrend(ctx, 2024)
	require.NoError(t, err)
	require.Equal(t, first, cached)
	require.Equal(t, 1, source.trendCalls)

	require.NoError(t, cache.Bump(ctx))

	fresh, err := svc.MonthlyTrend(ctx, 2024)
	require.NoError(t, err)
	require.Equal(t, 2, source.trendCalls, "a bump must force a recompute")
	require.NotEqual(t, first, fresh)
}
