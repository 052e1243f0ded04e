// Package gate decides where a user lands. Every decision is re-derived
// from the current identity state and session flags; nothing is cached.
package gate

// Application routes.
const (
	RouteWelcome       = "/"
	RouteCreateAccount = "/create-account"
	RouteLogin         = "/login"
	RouteSetupStudent  = "/setup-student"
	RouteDashboard     = "/dashboard"
)

// State is the input to a gate decision.
type State struct {
	SignedIn       bool
	Onboarded      bool
	AccountCreated bool
	AccountSetup   bool
}

// Next returns the route the user should be on, given the screen they are
// mounting. Returning the current route means "stay".
func Next(st State, current string) string {
	switch current {
	case RouteWelcome:
		if st.Onboarded {
			return RouteCreateAccount
		}
		return RouteWelcome
	case RouteCreateAccount:
		if st.AccountCreated {
			return RouteSetupStudent
		}
		return RouteCreateAccount
	case RouteLogin:
		if st.SignedIn {
			return RouteSetupStudent
		}
		return RouteLogin
	case RouteSetupStudent:
		if !st.SignedIn {
			return RouteLogin
		}
		if st.AccountSetup {
			return RouteDashboard
		}
		return RouteSetupStudent
	default:
		// Everything else is a gated dashboard screen.
		if !st.SignedIn {
			return RouteLogin
		}
		return current
	}
}

// IsActive reports whether a side-panel item should be highlighted for the
// current path.
func IsActive(current, route string) bool {
	return current == route
}
