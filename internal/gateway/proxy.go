package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"go.uber.org/zap"

	apperrors "dating-core/pkg/errors"
)

// hopByHopHeaders are stripped before forwarding, per RFC 7230 §6.1 — the
// same set every reverse proxy in the standard library documentation names.
var hopByHopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

const (
	proxyTotalDeadline   = 10 * time.Second
	proxyConnectDeadline = 2 * time.Second
)

// Proxy is the HTTP reverse-proxy core. There is no third-party reverse
// proxy anywhere in the retrieved corpus — net/http/httputil.ReverseProxy
// is the standard building block for this concern and is used directly
// (see DESIGN.md for the stdlib justification).
type Proxy struct {
	upstreams map[string]*url.URL
	logger    *zap.Logger
}

func NewProxy(upstreams map[string]string, logger *zap.Logger) (*Proxy, error) {
	parsed := make(map[string]*url.URL, len(upstreams))
	for name, raw := range upstreams {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}
		parsed[name] = u
	}
	return &Proxy{upstreams: parsed, logger: logger}, nil
}

// Target returns the upstream base URL for name, or nil if unconfigured.
func (p *Proxy) Target(name string) *url.URL {
	return p.upstreams[name]
}

// ServeHTTP proxies a single request to upstream at egressPath, enforcing
// the connect and total deadlines required by spec.md §4.1.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request, target *url.URL, egressPath string) {
	ctx, cancel := context.WithTimeout(r.Context(), proxyTotalDeadline)
	defer cancel()
	r = r.WithContext(ctx)

	dialer := &net.Dialer{Timeout: proxyConnectDeadline}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: proxyTotalDeadline,
	}

	rp := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.URL.Path = egressPath
			req.Host = target.Host
			stripHopByHop(req.Header)
			if req.Header.Get("X-Request-Id") == "" {
				req.Header.Set("X-Request-Id", newRequestID())
			}
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, req *http.Request, err error) {
			status := http.StatusBadGateway
			code := apperrors.CodeServiceUnavailable
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				status = http.StatusGatewayTimeout
			case errors.Is(ctx.Err(), context.DeadlineExceeded):
				status = http.StatusGatewayTimeout
			default:
				status = http.StatusServiceUnavailable
			}
			p.logger.Warn("upstream proxy failed", zap.Error(err), zap.String("path", egressPath))
			writeError(w, status, code)
		},
		ModifyResponse: func(resp *http.Response) error {
			stripHopByHop(resp.Header)
			return nil
		},
	}

	rp.ServeHTTP(w, r)
}

func stripHopByHop(h http.Header) {
	for _, header := range hopByHopHeaders {
		h.Del(header)
	}
}

func writeError(w http.ResponseWriter, status int, code apperrors.Code) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"code":"` + string(code) + `","message":"upstream unavailable"}}`))
}
