// Package gateway implements the edge gateway fronting the service fleet:
// static prefix routing, HTTP/WebSocket proxying, CORS, rate-limiting and
// health aggregation (spec.md §4.1).
package gateway

import "strings"

// route is one entry of the static prefix table. prefix is matched against
// the inbound request path; upstream names a key in Config.Upstreams;
// rewrite, when non-empty, replaces the matched prefix on egress. An empty
// rewrite with stripAPI true drops a leading "/api" before forwarding.
type route struct {
	prefix    string
	upstream  string
	rewrite   string
	stripAPI  bool
	websocket bool
}

// routeTable is the fixed prefix → upstream map required by spec.md §4.1.
// Order matters: the first matching prefix wins, so longer/more specific
// prefixes are listed before their broader overlaps.
var routeTable = []route{
	{prefix: "/v1/chat/ws", upstream: "chat", websocket: true},
	{prefix: "/v1/chat", upstream: "chat"},
	{prefix: "/api/auth", upstream: "auth", stripAPI: true},
	{prefix: "/auth", upstream: "auth"},
	{prefix: "/api/photos", upstream: "media", rewrite: "/media"},
	{prefix: "/api/profile", upstream: "profile", rewrite: "/profiles"},
	{prefix: "/api/discover", upstream: "discovery", rewrite: "/discovery/candidates"},
	{prefix: "/api/like", upstream: "discovery", rewrite: "/discovery/like"},
	{prefix: "/api/pass", upstream: "discovery", rewrite: "/discovery/pass"},
	{prefix: "/api/matches", upstream: "discovery", rewrite: "/discovery/matches"},
	{prefix: "/api/favorites", upstream: "discovery", rewrite: "/discovery/favorites"},
}

// resolve finds the route matching path and returns the upstream name and
// the egress path after rewrite/prefix-strip. ok is false when nothing in
// the table matches (caller responds 404).
func resolve(path string) (upstream string, egressPath string, isWS bool, ok bool) {
	for _, r := range routeTable {
		if path != r.prefix && !strings.HasPrefix(path, r.prefix+"/") {
			continue
		}
		suffix := strings.TrimPrefix(path, r.prefix)
		switch {
		case r.rewrite != "":
			egressPath = r.rewrite + suffix
		case r.stripAPI:
			egressPath = strings.TrimPrefix(path, "/api")
		default:
			egressPath = path
		}
		if egressPath == "" {
			egressPath = "/"
		}
		return r.upstream, egressPath, r.websocket, true
	}
	return "", "", false, false
}
