package routes

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchProgressSocketSkipsHeaderAuth(t *testing.T) {
	app := fiber.New()
	SetupAPIRoutes(app, nil)

	// A plain GET is not an upgrade request, so a reachable socket endpoint
	// answers 426. A 401 would mean the JWT middleware intercepted the
	// request before the handler could read its query-param token.
	req := httptest.NewRequest("GET", "/api/v1/watch/progress?token=abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	app := fiber.New()
	SetupAPIRoutes(app, nil)

	for _, path := range []string{"/api/v1/videos/", "/api/v1/watch-history", "/api/v1/dashboard/stats"} {
		req := httptest.NewRequest("GET", path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}
