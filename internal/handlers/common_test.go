package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/bootmgr/internal/types"
	"github.com/localnerve/bootmgr/internal/utils"
)

func TestPathParamUnescapes(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Get("/hosts/:pattern", func(c *fiber.Ctx) error {
		pattern, err := pathParam(c, "pattern")
		if err != nil {
			return err
		}
		return c.SendString(pattern)
	})

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/hosts/node%5B1-3%5D", http.StatusOK, "node[1-3]"},
		{"/hosts/n%5B1-9%2F4%5D%2Clogin", http.StatusOK, "n[1-9/4],login"},
		{"/hosts/plain", http.StatusOK, "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestParseBody(t *testing.T) {
	type input struct {
		Name    string                 `json:"name"`
		Weight  *types.FlexInt         `json:"weight"`
		Targets types.FlexList[string] `json:"targets"`
	}

	var got input
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Post("/", func(c *fiber.Ctx) error {
		got = input{}
		if err := parseBody(c, &got); err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	})

	post := func(body string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, post(`{"name":"a","weight":"4","targets":"x"}`))
	assert.Equal(t, "a", got.Name)
	require.NotNil(t, got.Weight)
	assert.Equal(t, 4, got.Weight.Int())
	assert.Equal(t, []string{"x"}, got.Targets.Slice())

	assert.Equal(t, http.StatusNoContent, post(""))
	assert.Nil(t, got.Weight)
	assert.Nil(t, got.Targets)

	assert.Equal(t, http.StatusBadRequest, post(`{"weight":"heavy"}`))
	assert.Equal(t, http.StatusBadRequest, post(`[1,2]`))
}
