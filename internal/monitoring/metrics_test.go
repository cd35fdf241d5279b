package monitoring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Stats_StartAtZero(t *testing.T) {
	mc := NewMetricsCollector()
	stats := mc.Stats()

	assert.Equal(t, int64(0), stats["invocations"])
	assert.Equal(t, int64(0), stats["remote_calls"])
	assert.Equal(t, int64(0), stats["fallbacks"])
	assert.Equal(t, int64(0), stats["workflow_runs"])
}

func TestMetrics_RecordCounters(t *testing.T) {
	mc := NewMetricsCollector()

	mc.RecordInvocation()
	mc.RecordInvocation()
	mc.RecordRemoteCall(100, 200)
	mc.RecordFallback()
	mc.RecordCacheHit()
	mc.RecordCacheMiss()
	mc.RecordWorkflowRun(3, 1)

	stats := mc.Stats()
	assert.Equal(t, int64(2), stats["invocations"])
	assert.Equal(t, int64(1), stats["remote_calls"])
	assert.Equal(t, int64(100), stats["prompt_tokens"])
	assert.Equal(t, int64(200), stats["completion_tokens"])
	assert.Equal(t, int64(1), stats["fallbacks"])
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
	assert.Equal(t, int64(1), stats["workflow_runs"])
	assert.Equal(t, int64(3), stats["steps_completed"])
	assert.Equal(t, int64(1), stats["steps_failed"])
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	mc := NewMetricsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mc.RecordInvocation()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2000), mc.Stats()["invocations"])
}
