package gateway

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	probeInterval      = 30 * time.Second
	probeTimeout       = 2 * time.Second
	unreachableTimeout = 60 * time.Second
)

// upstreamStatus is the last observed reachability of one upstream.
type upstreamStatus struct {
	reachable  bool
	lastOK     time.Time
	lastProbed time.Time
}

// HealthAggregator probes every configured upstream on a fixed interval
// and answers /health from the cached results, never blocking the request
// on a live probe (spec.md §4.1).
type HealthAggregator struct {
	mu        sync.RWMutex
	upstreams map[string]*url.URL
	status    map[string]upstreamStatus
	client    *http.Client
	logger    *zap.Logger
}

func NewHealthAggregator(upstreams map[string]*url.URL, logger *zap.Logger) *HealthAggregator {
	h := &HealthAggregator{
		upstreams: upstreams,
		status:    make(map[string]upstreamStatus, len(upstreams)),
		client:    &http.Client{Timeout: probeTimeout},
		logger:    logger,
	}
	now := time.Now()
	for name := range upstreams {
		h.status[name] = upstreamStatus{reachable: true, lastOK: now, lastProbed: now}
	}
	return h
}

// Run probes every upstream immediately, then on probeInterval, until ctx
// is cancelled. Intended to be started with `go aggregator.Run(ctx)`.
func (h *HealthAggregator) Run(ctx context.Context) {
	h.probeAll(ctx)
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.probeAll(ctx)
		}
	}
}

func (h *HealthAggregator) probeAll(ctx context.Context) {
	var wg sync.WaitGroup
	for name, target := range h.upstreams {
		wg.Add(1)
		go func(name string, target *url.URL) {
			defer wg.Done()
			h.probeOne(ctx, name, target)
		}(name, target)
	}
	wg.Wait()
}

func (h *HealthAggregator) probeOne(ctx context.Context, name string, target *url.URL) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, target.String()+"/health", nil)
	reachable := false
	if err == nil {
		resp, doErr := h.client.Do(req)
		if doErr == nil {
			reachable = resp.StatusCode < 500
			_ = resp.Body.Close()
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.status[name]
	next := upstreamStatus{reachable: reachable, lastProbed: time.Now(), lastOK: prev.lastOK}
	if reachable {
		next.lastOK = time.Now()
	}
	h.status[name] = next
	if !reachable {
		h.logger.Warn("upstream probe failed", zap.String("upstream", name))
	}
}

// Handler serves GET /health: 200 listing each upstream's reachability, or
// 503 if any required upstream has been unreachable for over 60s.
func (h *HealthAggregator) Handler(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	upstreams := make(map[string]bool, len(h.status))
	healthy := true
	now := time.Now()
	for name, st := range h.status {
		upstreams[name] = st.reachable
		if !st.reachable && now.Sub(st.lastOK) > unreachableTimeout {
			healthy = false
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, echo.Map{
		"status":    map[bool]string{true: "ok", false: "degraded"}[healthy],
		"upstreams": upstreams,
	})
}
