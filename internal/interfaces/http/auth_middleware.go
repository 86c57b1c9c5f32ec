package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/auth"
	"github.com/jhoicas/Bodega-api/internal/domain/access"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// LocalPrincipal clave de Locals donde queda el Principal resuelto.
const LocalPrincipal = "principal"

// AuthMiddleware resuelve la cabecera Authorization y guarda el Principal en c.Locals.
// allowBasic habilita la credencial Basic de administración (solo /admin).
func AuthMiddleware(resolver *auth.Resolver, allowBasic bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := resolver.Resolve(c.Get(fiber.HeaderAuthorization), allowBasic)
		if err != nil {
			return err
		}
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// OptionalAuth como AuthMiddleware pero sin cabecera deja pasar con un Principal vacío.
// Una credencial presente e inválida se rechaza igual.
func OptionalAuth(resolver *auth.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		p, err := resolver.Resolve(header, false)
		if err != nil {
			return err
		}
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// Require autoriza (recurso, acción) con la tabla de capacidades antes de llegar al handler.
// Debe usarse DESPUÉS de AuthMiddleware.
func Require(resource access.Resource, action access.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := access.Authorize(GetPrincipal(c), resource, action); err != nil {
			return err
		}
		return c.Next()
	}
}

// GetPrincipal devuelve el Principal del contexto (vacío si la ruta es pública y no hubo credencial).
func GetPrincipal(c *fiber.Ctx) entity.Principal {
	p, _ := c.Locals(LocalPrincipal).(entity.Principal)
	return p
}
