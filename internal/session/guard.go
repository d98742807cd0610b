package session

// Known view paths.
const (
	PathLogin     = "/login"
	PathBooks     = "/books"
	PathDashboard = "/dashboard"
)

// Decision is the outcome of a routing check. When Redirect is set the
// caller must navigate to Path instead of rendering; Replace means the
// redirect should not leave the guarded path in the navigation history.
type Decision struct {
	Path     string
	Redirect bool
	Replace  bool
}

// Decide is the route guard: a pure function of the already-resolved
// session state and the requested path. It is synchronous and never loads
// anything.
func Decide(authenticated bool, path string) Decision {
	switch path {
	case PathLogin:
		return Decision{Path: path}
	case PathBooks, PathDashboard:
		if !authenticated {
			return Decision{Path: PathLogin, Redirect: true, Replace: true}
		}
		return Decision{Path: path}
	default:
		// Root and unknown paths land on the books view when logged in.
		if authenticated {
			return Decision{Path: PathBooks, Redirect: true, Replace: true}
		}
		return Decision{Path: PathLogin, Redirect: true, Replace: true}
	}
}
