package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthIndex_NotReadyUntilRefreshed(t *testing.T) {
	freezeClock(t, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC))
	idx := NewMonthIndex(newTestLoader(sampleSource()), discardLogger())
	ctx := context.Background()

	require.Error(t, idx.CheckReadiness(ctx))
	assert.Empty(t, idx.Months())

	idx.Refresh(ctx)

	require.NoError(t, idx.CheckReadiness(ctx))
	assert.Equal(t, []string{"202503", "202502", "202412"}, idx.Months())
}

func TestMonthIndex_ReadyEvenWithNoMonths(t *testing.T) {
	freezeClock(t, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC))
	idx := NewMonthIndex(newTestLoader(&fakeSource{}), discardLogger())

	idx.Refresh(context.Background())

	require.NoError(t, idx.CheckReadiness(context.Background()))
	assert.Empty(t, idx.Months())
}

func TestMonthIndex_MonthsReturnsCopy(t *testing.T) {
	freezeClock(t, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC))
	idx := NewMonthIndex(newTestLoader(sampleSource()), discardLogger())
	idx.Refresh(context.Background())

	months := idx.Months()
	months[0] = "mutated"

	assert.Equal(t, "202503", idx.Months()[0])
}

func TestMonthIndex_Start(t *testing.T) {
	idx := NewMonthIndex(newTestLoader(sampleSource()), discardLogger())

	require.NoError(t, idx.Start(""))
	assert.Nil(t, idx.cron)

	require.Error(t, idx.Start("not a schedule"))

	require.NoError(t, idx.Start("@every 1h"))
	assert.NotNil(t, idx.cron)
	idx.Stop()
}

func TestIndexed_UsesCachedMonths(t *testing.T) {
	freezeClock(t, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC))
	src := sampleSource()
	loader := newTestLoader(src)
	idx := NewMonthIndex(loader, discardLogger())
	idx.Refresh(context.Background())
	probes := src.probes

	cat := Indexed{Loader: loader, Index: idx}

	assert.Equal(t, []string{"202503", "202502", "202412"}, cat.AvailableMonths(context.Background()))
	assert.Equal(t, probes, src.probes, "cached lookup must not probe again")
	activities, err := cat.ExtractActivities(context.Background(), "202503")
	require.NoError(t, err)
	assert.Len(t, activities, 3)
}
