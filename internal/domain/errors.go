package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrBusinessRule      = errors.New("regla de negocio violada")
	ErrUnauthorized      = errors.New("no autenticado")
	ErrMissingCredential = errors.New("credencial ausente")
	ErrInvalidToken      = errors.New("token inválido")
	ErrTokenExpired      = errors.New("token expirado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrDuplicate         = errors.New("registro duplicado")
)

// Códigos de error expuestos en el cuerpo de las respuestas HTTP.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeAccessDenied      = "ACCESS_DENIED"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_STATE_TRANSITION"
	CodeBusiness          = "BUSINESS_ERROR"
)

// Error es un fallo tipado del dominio: código de la taxonomía, mensaje y detalle por campo.
// Unwrap devuelve el sentinel correspondiente para poder usar errors.Is.
type Error struct {
	Code    string
	Message string
	Details map[string]string
	kind    error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.kind }

// AsError extrae el *Error de una cadena de errores.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Validation error de validación con detalle por campo.
func Validation(message string, details map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: details, kind: ErrInvalidInput}
}

// FieldError atajo para un único campo inválido.
func FieldError(field, message string) *Error {
	return Validation("invalid request", map[string]string{field: message})
}

// NotFound entidad inexistente.
func NotFound(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), kind: ErrNotFound}
}

// Business violación de una regla de negocio (distinta de la validación de campos).
func Business(message string) *Error {
	return &Error{Code: CodeBusiness, Message: message, kind: ErrBusinessRule}
}

// InvalidTransition acción no permitida desde el estado actual.
func InvalidTransition(entity, action, status string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot %s %s in status %s", action, entity, status),
		kind:    ErrInvalidTransition,
	}
}

// AccessDenied principal autenticado sin el rol necesario.
func AccessDenied(message string) *Error {
	return &Error{Code: CodeAccessDenied, Message: message, kind: ErrForbidden}
}

// Unauthenticated credencial ausente o rechazada.
func Unauthenticated(message string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: message, kind: ErrUnauthorized}
}

// MissingCredential no se envió ninguna credencial.
func MissingCredential() *Error {
	return &Error{Code: CodeUnauthenticated, Message: "missing credential", kind: ErrMissingCredential}
}

// InvalidToken token mal formado, con firma incorrecta o claims inválidos.
func InvalidToken(message string) *Error {
	return &Error{Code: CodeInvalidToken, Message: message, kind: ErrInvalidToken}
}

// TokenExpired token bien formado pero vencido.
func TokenExpired() *Error {
	return &Error{Code: CodeTokenExpired, Message: "token expired", kind: ErrTokenExpired}
}
