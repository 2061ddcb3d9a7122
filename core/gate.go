package core

import "strings"

// RouteGate decides, per request, whether browser navigation is let through
// or redirected based only on whether a session token is present.
type RouteGate struct {
	LoginPath string
	HomePath  string
	// PassthroughPrefixes carry their own authorization and are never
	// redirected.
	PassthroughPrefixes []string
	// AssetPrefixes are not matched by the gate at all.
	AssetPrefixes []string
}

// GateDecision is the outcome of RouteGate.Decide. A zero value means pass.
type GateDecision struct {
	Redirect bool
	Location string
}

// DefaultAPIPath is the API prefix used when none is configured.
const DefaultAPIPath = "/api"

// DefaultRouteGate redirects anonymous users to /login and signed-in users
// away from it, leaving /admin and apiPath alone. An empty apiPath means
// DefaultAPIPath.
func DefaultRouteGate(apiPath string) *RouteGate {
	if apiPath == "" {
		apiPath = DefaultAPIPath
	}
	return &RouteGate{
		LoginPath:           "/login",
		HomePath:            "/",
		PassthroughPrefixes: []string{"/admin", apiPath},
		AssetPrefixes:       []string{"/static/", "/favicon.ico"},
	}
}

func (g *RouteGate) Decide(hasToken bool, path string) GateDecision {
	if g.matchesAny(path, g.AssetPrefixes) || g.matchesAny(path, g.PassthroughPrefixes) {
		return GateDecision{}
	}

	isLogin := path == g.LoginPath
	switch {
	case !hasToken && !isLogin:
		return GateDecision{Redirect: true, Location: g.LoginPath}
	case hasToken && isLogin:
		return GateDecision{Redirect: true, Location: g.HomePath}
	}
	return GateDecision{}
}

func (g *RouteGate) matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
