package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCollectorInterval(t *testing.T) {
	c := NewCollector(10*time.Millisecond, zap.NewNop())
	assert.Equal(t, 30*time.Second, c.interval, "sub-second intervals fall back to the default")

	c = NewCollector(5*time.Second, zap.NewNop())
	assert.Equal(t, 5*time.Second, c.interval)
}

func TestStartCollectsImmediately(t *testing.T) {
	c := NewCollector(time.Hour, zap.NewNop())
	assert.Nil(t, c.GetMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return c.GetMetrics() != nil }, 5*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	m := c.GetMetrics()
	assert.NotZero(t, m.HeapAlloc)
	assert.False(t, m.Timestamp.IsZero())
}
