package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageLimit(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, 20},
		{"zero page clamps to first", "page=0", 1, 20},
		{"negative page clamps to first", "page=-3", 1, 20},
		{"zero limit falls back to default", "limit=0", 1, 20},
		{"negative limit falls back to default", "limit=-5", 1, 20},
		{"limit capped at 100", "limit=500", 1, 100},
		{"normal values pass through", "page=3&limit=50", 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var page, limit int
			app.Get("/", func(c *fiber.Ctx) error {
				page, limit = ParsePageLimit(c, 20)
				return nil
			})

			_, err := app.Test(httptest.NewRequest("GET", "/?"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestParseUint(t *testing.T) {
	assert.Equal(t, uint(42), ParseUint("42"))
	assert.Equal(t, uint(0), ParseUint("not-a-number"))
	assert.Equal(t, uint(0), ParseUint("-1"))
	assert.Equal(t, uint(0), ParseUint(""))
}
