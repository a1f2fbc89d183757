// Package guard decides which view the current session may navigate to.
package guard

import "vereinsportal/internal/models"

// Route is a navigation target within the client.
type Route string

const (
	RouteLogin     Route = "login"
	RouteDashboard Route = "dashboard"
	RouteProfile   Route = "profile"
	RouteAdmin     Route = "admin"
)

// Resolve returns the route the client actually navigates to when the given
// session requests a route. It never mutates state; callers consult it on
// every navigation.
//
// Rules, in order: the login route redirects logged-in users to the
// dashboard; the dashboard and profile require a session; the admin route
// additionally requires the admin role; anything unrecognized falls back to
// the dashboard or login depending on whether a session exists.
func Resolve(sess *models.Session, requested Route) Route {
	switch requested {
	case RouteLogin:
		if sess != nil {
			return RouteDashboard
		}
		return RouteLogin
	case RouteDashboard, RouteProfile:
		if sess == nil {
			return RouteLogin
		}
		return requested
	case RouteAdmin:
		switch {
		case sess == nil:
			return RouteLogin
		case !sess.IsAdmin():
			return RouteDashboard
		default:
			return RouteAdmin
		}
	default:
		if sess == nil {
			return RouteLogin
		}
		return RouteDashboard
	}
}
