package ratelimit

import (
	"time"

	"golang.org/x/time/rate"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string     // Endpoint path pattern (supports prefix matching)
	Method string     // HTTP method (GET, POST, etc.)
	Rate   rate.Limit // Sustained requests per second; 0 means unlimited
	Burst  int        // Bucket size (defaults to 1 if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultRate     rate.Limit
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds the limiter configuration. generationRate and generationBurst
// apply to every endpoint that issues an external generation call; a zero rate
// disables limiting entirely.
func NewConfig(generationRate float64, generationBurst int, whitelist ...string) *Config {
	if generationRate <= 0 {
		return &Config{Enabled: false}
	}

	wl := make(map[string]bool, len(whitelist))
	for _, ip := range whitelist {
		wl[ip] = true
	}

	return &Config{
		Enabled:         true,
		DefaultRate:     20,
		DefaultBurst:    40,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       wl,
		EndpointConfigs: GenerationEndpointConfigs(rate.Limit(generationRate), generationBurst),
	}
}

// GenerationEndpointConfigs returns the limits for endpoints that call the AI service.
func GenerationEndpointConfigs(r rate.Limit, burst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/pillars/", Method: "POST", Rate: r, Burst: burst},
		{Path: "/insights/generate-all", Method: "POST", Rate: r, Burst: burst},
		{Path: "/narratives", Method: "POST", Rate: r, Burst: burst},
		{Path: "/newsletter/research", Method: "POST", Rate: r, Burst: burst},
		{Path: "/newsletter/curate", Method: "POST", Rate: r, Burst: burst},
	}
}
