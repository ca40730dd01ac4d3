package linktoken_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/almacen-api/pkg/linktoken"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestSignVerify_RoundTrip(t *testing.T) {
	s, err := linktoken.New(testSecret, "almacen-test", time.Hour)
	require.NoError(t, err)

	tok, err := s.Sign("order-123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	subject, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "order-123", subject)
}

func TestVerify_TokenExpirado(t *testing.T) {
	// TTL negativo: el token nace vencido.
	s, err := linktoken.New(testSecret, "almacen-test", -time.Minute)
	require.NoError(t, err)

	tok, err := s.Sign("order-123")
	require.NoError(t, err)

	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, linktoken.ErrExpired)
}

func TestVerify_OtroSecreto(t *testing.T) {
	s, err := linktoken.New(testSecret, "almacen-test", time.Hour)
	require.NoError(t, err)
	other, err := linktoken.New("otro-secreto", "almacen-test", time.Hour)
	require.NoError(t, err)

	tok, err := other.Sign("order-123")
	require.NoError(t, err)

	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, linktoken.ErrInvalid)
}

func TestVerify_FirmaIncorrecta(t *testing.T) {
	s, err := linktoken.New(testSecret, "almacen-test", time.Hour)
	require.NoError(t, err)

	_, err = s.Verify("no-es-un-jwt")
	assert.ErrorIs(t, err, linktoken.ErrInvalid)
}

func TestNew_SecretVacio(t *testing.T) {
	_, err := linktoken.New("", "almacen-test", time.Hour)
	assert.Error(t, err)
}
