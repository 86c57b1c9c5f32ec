// Package access contiene la política de autorización: tabla de capacidades por (recurso, acción)
// con el rol mínimo requerido. La jerarquía de roles hace que los permisos sean monótonos.
package access

import (
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// Resource recurso protegido.
type Resource string

// Action acción sobre un recurso.
type Action string

// Recursos.
const (
	Movements Resource = "movements"
	Documents Resource = "documents"
	Stock     Resource = "stock"
	Reports   Resource = "reports"
	Admin     Resource = "admin"
)

// Acciones.
const (
	Create      Action = "create"
	Read        Action = "read"
	Approve     Action = "approve"
	Reject      Action = "reject"
	Complete    Action = "complete"
	Daily       Action = "daily"
	Monthly     Action = "monthly"
	ManageUsers Action = "users"
)

// Permission par (recurso, acción).
type Permission struct {
	Resource Resource
	Action   Action
}

func (p Permission) String() string { return fmt.Sprintf("%s:%s", p.Resource, p.Action) }

// public no requieren credencial.
var public = map[Permission]bool{
	{Reports, Daily}: true,
}

// minimumRole rol mínimo para cada permiso; lo que no figura está denegado.
var minimumRole = map[Permission]entity.Role{
	{Movements, Create}:   entity.RoleOperator,
	{Movements, Read}:     entity.RoleOperator,
	{Movements, Complete}: entity.RoleOperator,
	{Movements, Approve}:  entity.RoleManager,

	{Documents, Create}:  entity.RoleOperator,
	{Documents, Read}:    entity.RoleOperator,
	{Documents, Approve}: entity.RoleManager,
	{Documents, Reject}:  entity.RoleManager, // mismo permiso que aprobar

	{Stock, Read}: entity.RoleOperator,

	{Reports, Daily}:   entity.RoleOperator,
	{Reports, Monthly}: entity.RoleManager,

	{Admin, ManageUsers}: entity.RoleAdmin,
}

// IsPublic indica si el permiso se concede sin autenticación.
func IsPublic(resource Resource, action Action) bool {
	return public[Permission{resource, action}]
}

// Allowed evalúa la tabla para un rol. Función pura de (rol, recurso, acción).
func Allowed(role entity.Role, resource Resource, action Action) bool {
	required, ok := minimumRole[Permission{resource, action}]
	if !ok {
		return false
	}
	return role.AtLeast(required)
}

// Authorize devuelve nil si el principal puede ejecutar la acción; UNAUTHENTICATED si no hay
// principal (salvo recursos públicos) y ACCESS_DENIED si el rol no alcanza.
func Authorize(p entity.Principal, resource Resource, action Action) error {
	if IsPublic(resource, action) {
		return nil
	}
	if !p.Authenticated() {
		return domain.Unauthenticated("authentication required")
	}
	if !Allowed(p.Role, resource, action) {
		return domain.AccessDenied(fmt.Sprintf("role %s cannot %s", p.Role, Permission{resource, action}))
	}
	return nil
}

// Permissions lista los permisos concedidos a un rol (útil para diagnósticos y tests).
func Permissions(role entity.Role) []Permission {
	out := make([]Permission, 0, len(minimumRole))
	for perm := range minimumRole {
		if Allowed(role, perm.Resource, perm.Action) {
			out = append(out, perm)
		}
	}
	return out
}
