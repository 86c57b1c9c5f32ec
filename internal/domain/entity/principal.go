package entity

import "time"

// Principal identidad autenticada de una petición. Se reconstruye en cada request, nunca se persiste.
type Principal struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time // cero para credenciales Basic
}

// Authenticated indica si el principal proviene de una credencial válida.
func (p Principal) Authenticated() bool {
	return p.Subject != "" && p.Role.Valid()
}
