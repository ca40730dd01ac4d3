package http

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/almacen-api/internal/application/dto"
	"github.com/tu-usuario/almacen-api/internal/domain"
)

func TestRespondError_MapeoDeEstados(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"entrada inválida", domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
		{"token expirado", domain.ErrTokenExpired, fiber.StatusBadRequest, "TOKEN_EXPIRED"},
		{"token inválido", domain.ErrTokenInvalid, fiber.StatusUnauthorized, "INVALID_TOKEN"},
		{"token usado", domain.ErrTokenUsed, fiber.StatusConflict, "CONFLICT"},
		{"no encontrado", domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"duplicado", domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
		{"no reconocido", errors.New("pg: connection refused"), fiber.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/err", func(c *fiber.Ctx) error {
				return respondError(c, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/err", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestLinkErrorPage_TokenExpirado(t *testing.T) {
	status, msg := linkErrorPage(domain.ErrTokenExpired)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, msg, "expiró")
}
