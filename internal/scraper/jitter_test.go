package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJitterStaysInWindow(t *testing.T) {
	t.Parallel()

	w := Window{Min: 4 * time.Second, Max: 8 * time.Second}
	for i := 0; i < 100; i++ {
		d := w.Jitter()
		require.GreaterOrEqual(t, d, w.Min)
		require.Less(t, d, w.Max)
	}
}

func TestJitterDegenerateWindow(t *testing.T) {
	t.Parallel()

	w := Window{Min: 3 * time.Second, Max: 3 * time.Second}
	require.Equal(t, 3*time.Second, w.Jitter())

	require.Equal(t, time.Duration(0), Window{}.Jitter())
}

func TestDoubled(t *testing.T) {
	t.Parallel()

	w := Window{Min: 4 * time.Second, Max: 8 * time.Second}
	require.Equal(t, Window{Min: 8 * time.Second, Max: 16 * time.Second}, w.Doubled())
}

func TestTimerPauserHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	NewTimerPauser().Pause(ctx, time.Hour)
	require.Less(t, time.Since(start), time.Second)
}

func TestTimerPauserSkipsNonPositive(t *testing.T) {
	t.Parallel()

	start := time.Now()
	NewTimerPauser().Pause(context.Background(), 0)
	require.Less(t, time.Since(start), time.Second)
}
