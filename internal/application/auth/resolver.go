// Package auth resuelve la credencial de una petición (Bearer JWT o Basic de administración)
// en un entity.Principal. No hay caché: cada petición se resuelve de nuevo.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/Bodega-api/pkg/jwt"
)

// TokenVerifier valida un token Bearer y devuelve sus claims (pkg/jwt.Verifier).
type TokenVerifier interface {
	Verify(token string) (*pkgjwt.Claims, error)
}

// AdminCredential identidad fija de administración aceptada por Basic.
type AdminCredential struct {
	Username     string
	PasswordHash []byte // bcrypt
}

// NewAdminCredential usa passwordHash si viene; si no, hashea password con bcrypt.
// Sin usuario o sin contraseña la autenticación Basic queda deshabilitada.
func NewAdminCredential(username, password, passwordHash string) (AdminCredential, error) {
	if username == "" || (password == "" && passwordHash == "") {
		return AdminCredential{}, nil
	}
	if passwordHash != "" {
		return AdminCredential{Username: username, PasswordHash: []byte(passwordHash)}, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AdminCredential{}, fmt.Errorf("hash admin password: %w", err)
	}
	return AdminCredential{Username: username, PasswordHash: hash}, nil
}

func (a AdminCredential) enabled() bool {
	return a.Username != "" && len(a.PasswordHash) > 0
}

// Resolver traduce la cabecera Authorization a un Principal.
type Resolver struct {
	verifier TokenVerifier
	admin    AdminCredential
}

// NewResolver construye el resolver.
func NewResolver(verifier TokenVerifier, admin AdminCredential) *Resolver {
	return &Resolver{verifier: verifier, admin: admin}
}

// Resolve interpreta la cabecera Authorization. allowBasic solo es true en endpoints de administración.
// Errores: UNAUTHENTICATED (credencial ausente o Basic rechazada), INVALID_TOKEN, TOKEN_EXPIRED.
func (r *Resolver) Resolve(authorization string, allowBasic bool) (entity.Principal, error) {
	authorization = strings.TrimSpace(authorization)
	if authorization == "" {
		return entity.Principal{}, domain.MissingCredential()
	}
	scheme, value, _ := strings.Cut(authorization, " ")
	value = strings.TrimSpace(value)
	switch {
	case strings.EqualFold(scheme, "Bearer"):
		return r.bearer(value)
	case strings.EqualFold(scheme, "Basic"):
		if !allowBasic {
			return entity.Principal{}, domain.Unauthenticated("basic credentials are only accepted on administrative endpoints")
		}
		return r.basic(value)
	default:
		return entity.Principal{}, domain.InvalidToken("unsupported authorization scheme")
	}
}

func (r *Resolver) bearer(token string) (entity.Principal, error) {
	if token == "" {
		return entity.Principal{}, domain.MissingCredential()
	}
	claims, err := r.verifier.Verify(token)
	if err != nil {
		if errors.Is(err, pkgjwt.ErrExpired) {
			return entity.Principal{}, domain.TokenExpired()
		}
		return entity.Principal{}, domain.InvalidToken("invalid token")
	}
	role, ok := entity.ParseRole(claims.Role)
	if !ok {
		return entity.Principal{}, domain.InvalidToken("invalid role claim")
	}
	if claims.Subject == "" {
		return entity.Principal{}, domain.InvalidToken("missing subject claim")
	}
	p := entity.Principal{Subject: claims.Subject, Role: role}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

func (r *Resolver) basic(encoded string) (entity.Principal, error) {
	if !r.admin.enabled() {
		return entity.Principal{}, domain.Unauthenticated("basic authentication is disabled")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return entity.Principal{}, domain.Unauthenticated("malformed basic credentials")
	}
	username, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return entity.Principal{}, domain.Unauthenticated("malformed basic credentials")
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(r.admin.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword(r.admin.PasswordHash, []byte(password))
	if !userOK || passErr != nil {
		return entity.Principal{}, domain.Unauthenticated("invalid credentials")
	}
	return entity.Principal{Subject: r.admin.Username, Role: entity.RoleAdmin}, nil
}
