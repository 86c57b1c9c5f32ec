package auth_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Bodega-api/internal/application/auth"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/Bodega-api/pkg/jwt"
)

const secret = "test-secret"

func newResolver(t *testing.T) *auth.Resolver {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	return auth.NewResolver(pkgjwt.NewVerifier(secret, ""), auth.AdminCredential{Username: "admin", PasswordHash: hash})
}

func bearer(t *testing.T, subject, role string, expMinutes int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, subject, role, "", expMinutes)
	require.NoError(t, err)
	return "Bearer " + tok
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func code(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	de, ok := domain.AsError(err)
	require.True(t, ok, "se esperaba *domain.Error, llegó %T", err)
	return de.Code
}

// ─── Bearer ─────────────────────────────────────────────────────────────────

func TestResolve_BearerValido(t *testing.T) {
	r := newResolver(t)
	p, err := r.Resolve(bearer(t, "u-1", "manager", 30), false)
	require.NoError(t, err)
	assert.Equal(t, "u-1", p.Subject)
	assert.Equal(t, entity.RoleManager, p.Role)
	assert.False(t, p.ExpiresAt.IsZero())
}

func TestResolve_SinCredencial(t *testing.T) {
	r := newResolver(t)
	_, err := r.Resolve("", false)
	assert.Equal(t, domain.CodeUnauthenticated, code(t, err))
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	_, err = r.Resolve("Bearer ", false)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestResolve_TokenExpirado(t *testing.T) {
	r := newResolver(t)
	_, err := r.Resolve(bearer(t, "u-1", "OPERATOR", -5), false)
	assert.Equal(t, domain.CodeTokenExpired, code(t, err))
}

func TestResolve_TokenInvalido(t *testing.T) {
	r := newResolver(t)
	for _, h := range []string{"Bearer totally-invalid", "Bearer expired.token.value", "Token abc"} {
		_, err := r.Resolve(h, false)
		assert.Equal(t, domain.CodeInvalidToken, code(t, err), h)
	}

	other, err := pkgjwt.Generate("otro-secreto", "u-1", "ADMIN", "", 30)
	require.NoError(t, err)
	_, err = r.Resolve("Bearer "+other, false)
	assert.Equal(t, domain.CodeInvalidToken, code(t, err))
}

func TestResolve_RolDesconocido(t *testing.T) {
	r := newResolver(t)
	_, err := r.Resolve(bearer(t, "u-1", "ROOT", 30), false)
	assert.Equal(t, domain.CodeInvalidToken, code(t, err))
}

// ─── Basic ──────────────────────────────────────────────────────────────────

func TestResolve_BasicAdmin(t *testing.T) {
	r := newResolver(t)
	p, err := r.Resolve(basic("admin", "admin123"), true)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, p.Role)
	assert.Equal(t, "admin", p.Subject)
}

func TestResolve_BasicFueraDeAdmin(t *testing.T) {
	r := newResolver(t)
	_, err := r.Resolve(basic("admin", "admin123"), false)
	assert.Equal(t, domain.CodeUnauthenticated, code(t, err))
}

func TestResolve_BasicCredencialesIncorrectas(t *testing.T) {
	r := newResolver(t)
	for _, h := range []string{basic("admin", "nope"), basic("root", "admin123"), "Basic !!!", "Basic " + base64.StdEncoding.EncodeToString([]byte("sin-dos-puntos"))} {
		_, err := r.Resolve(h, true)
		assert.Equal(t, domain.CodeUnauthenticated, code(t, err), h)
	}
}

func TestResolve_BasicDeshabilitado(t *testing.T) {
	r := auth.NewResolver(pkgjwt.NewVerifier(secret, ""), auth.AdminCredential{})
	_, err := r.Resolve(basic("admin", "admin123"), true)
	assert.Equal(t, domain.CodeUnauthenticated, code(t, err))
}

func TestNewAdminCredential(t *testing.T) {
	c, err := auth.NewAdminCredential("admin", "secreto", "")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(c.PasswordHash, []byte("secreto")))

	c, err = auth.NewAdminCredential("", "secreto", "")
	require.NoError(t, err)
	assert.Empty(t, c.Username)
}
