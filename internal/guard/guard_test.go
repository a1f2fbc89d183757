package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vereinsportal/internal/models"
)

func TestResolve_NoSession(t *testing.T) {
	// Everything except the login route redirects to login.
	for _, requested := range []Route{RouteDashboard, RouteProfile, RouteAdmin, Route("unknown")} {
		assert.Equal(t, RouteLogin, Resolve(nil, requested), "route %s", requested)
	}
	assert.Equal(t, RouteLogin, Resolve(nil, RouteLogin))
}

func TestResolve_Member(t *testing.T) {
	member := &models.Session{Username: "anna", Role: models.RoleUser, Token: "t"}

	tests := []struct {
		requested Route
		want      Route
	}{
		{RouteLogin, RouteDashboard},
		{RouteDashboard, RouteDashboard},
		{RouteProfile, RouteProfile},
		{RouteAdmin, RouteDashboard},
		{Route("unknown"), RouteDashboard},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Resolve(member, tc.requested), "route %s", tc.requested)
	}
}

func TestResolve_Admin(t *testing.T) {
	admin := &models.Session{Username: "chef", Role: models.RoleAdmin, Token: "t"}

	tests := []struct {
		requested Route
		want      Route
	}{
		{RouteLogin, RouteDashboard},
		{RouteDashboard, RouteDashboard},
		{RouteProfile, RouteProfile},
		{RouteAdmin, RouteAdmin},
		{Route("unknown"), RouteDashboard},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Resolve(admin, tc.requested), "route %s", tc.requested)
	}
}
