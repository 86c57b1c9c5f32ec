package entity

import (
	"strings"
	"time"
)

// Role rol de un usuario. El orden define la jerarquía: OPERATOR < MANAGER < ADMIN.
type Role string

// Roles válidos.
const (
	RoleOperator Role = "OPERATOR"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleOperator: 1,
	RoleManager:  2,
	RoleAdmin:    3,
}

// ParseRole normaliza (mayúsculas) y valida un rol.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := roleRank[r]
	return r, ok
}

// Valid indica si el rol pertenece a la jerarquía.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast compara en la jerarquía; un rol inválido nunca alcanza a otro.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[min]
}

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User entrada del directorio de usuarios gestionado por administración.
type User struct {
	ID        string
	Username  string
	Name      string
	Role      Role
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
