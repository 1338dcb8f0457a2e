package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/foodstock-api/pkg/jwt"
)

const (
	secret    = "test-secret-key-for-unit-tests"
	issuer    = "foodstock-test"
	userID    = "00000000-0000-0000-0000-000000000001"
	companyID = "00000000-0000-0000-0000-000000000002"
)

// ──────────────────────────────────────────────────────────────────────────────
// Generate / Parse
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, companyID, "manager", issuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := pkgjwt.Parse(secret, issuer, tok)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, companyID, claims.CompanyID)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestJWT_IssuerVacioNoSeVerifica(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, companyID, "staff", "cualquiera", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, "", tok)
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, companyID, "admin", issuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, issuer, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, companyID, "admin", issuer, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", issuer, tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestJWT_OtroEmisor_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, companyID, "admin", "otro-emisor", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, issuer, tok)
	assert.Error(t, err)
}

func TestJWT_SinEmpresa_RetornaErrMissingIdentity(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, "", "admin", issuer, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, issuer, tok)
	assert.ErrorIs(t, err, pkgjwt.ErrMissingIdentity)
}

func TestJWT_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", userID, companyID, "admin", issuer, 60)
	assert.Error(t, err)

	_, err = pkgjwt.Parse("", issuer, "x.y.z")
	assert.Error(t, err)
}
