package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testLimiter(t *testing.T, cfg *Config) (*Limiter, *time.Time) {
	t.Helper()
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestLimiter_GenerationEndpointBurstThenDeny(t *testing.T) {
	l, _ := testLimiter(t, NewConfig(0.5, 2))

	ok, info := l.Allow("1.2.3.4", "/pillars/bitcoin/generate", "POST")
	assert.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	ok, _ = l.Allow("1.2.3.4", "/pillars/ethereum/generate", "POST")
	assert.True(t, ok, "second request within burst")

	ok, info = l.Allow("1.2.3.4", "/pillars/bitcoin/generate", "POST")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 2*time.Second, info.RetryAfter)
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := testLimiter(t, NewConfig(1, 1))

	ok, _ := l.Allow("c", "/narratives", "POST")
	require.True(t, ok)
	ok, _ = l.Allow("c", "/narratives", "POST")
	require.False(t, ok)

	*clock = clock.Add(time.Second)
	ok, _ = l.Allow("c", "/narratives", "POST")
	assert.True(t, ok)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := testLimiter(t, NewConfig(1, 1))

	ok, _ := l.Allow("a", "/newsletter/research", "POST")
	require.True(t, ok)
	ok, _ = l.Allow("b", "/newsletter/research", "POST")
	assert.True(t, ok)
}

func TestLimiter_ReadsUseDefault(t *testing.T) {
	l, _ := testLimiter(t, NewConfig(1, 1))

	for i := 0; i < 40; i++ {
		ok, _ := l.Allow("a", "/insights", "GET")
		require.True(t, ok, "request %d", i)
	}
	ok, _ := l.Allow("a", "/insights", "GET")
	assert.False(t, ok)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := testLimiter(t, NewConfig(0, 0))

	for i := 0; i < 100; i++ {
		ok, _ := l.Allow("a", "/narratives", "POST")
		require.True(t, ok)
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	l, _ := testLimiter(t, NewConfig(1, 1, "127.0.0.1"))

	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("127.0.0.1", "/narratives", "POST")
		require.True(t, ok)
	}
}

func TestLimiter_CleanupIdle(t *testing.T) {
	l, clock := testLimiter(t, NewConfig(1, 1))
	l.Allow("a", "/narratives", "POST")
	require.Len(t, l.entries, 1)

	*clock = clock.Add(2 * time.Hour)
	l.cleanupIdle()
	assert.Empty(t, l.entries)
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(NewConfig(1, 1))
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := GenerationEndpointConfigs(rate.Limit(1), 1)

	tests := []struct {
		name     string
		path     string
		method   string
		wantPath string
		wantNil  bool
	}{
		{"health unlimited", "/health", "GET", "", false},
		{"metrics unlimited", "/metrics", "GET", "", false},
		{"exact", "/narratives", "POST", "/narratives", false},
		{"prefix", "/pillars/bitcoin/generate", "POST", "/pillars/", false},
		{"batch", "/insights/generate-all", "POST", "/insights/generate-all", false},
		{"wrong method", "/narratives", "GET", "", true},
		{"no match", "/insights", "POST", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}
