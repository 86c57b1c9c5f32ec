package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

const codeInternal = "INTERNAL"

// errorStatus código de la taxonomía -> status HTTP.
var errorStatus = map[string]int{
	domain.CodeValidation:        fiber.StatusBadRequest,
	domain.CodeUnauthenticated:   fiber.StatusUnauthorized,
	domain.CodeInvalidToken:      fiber.StatusUnauthorized,
	domain.CodeTokenExpired:      fiber.StatusUnauthorized,
	domain.CodeAccessDenied:      fiber.StatusForbidden,
	domain.CodeNotFound:          fiber.StatusNotFound,
	domain.CodeInvalidTransition: fiber.StatusConflict,
	domain.CodeBusiness:          fiber.StatusUnprocessableEntity,
}

// StatusFor devuelve el status HTTP de un código de error; 500 si no pertenece a la taxonomía.
func StatusFor(code string) int {
	if s, ok := errorStatus[code]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler único punto de traducción error -> respuesta. Los handlers solo devuelven el error.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if de, ok := domain.AsError(err); ok {
			return c.Status(StatusFor(de.Code)).JSON(dto.ErrorResponse{
				Error:   de.Code,
				Message: de.Message,
				Details: de.Details,
			})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := codeInternal
			switch fe.Code {
			case fiber.StatusNotFound:
				code = domain.CodeNotFound
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case fiber.StatusRequestTimeout:
				code = "TIMEOUT"
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Error: code, Message: fe.Message})
		}

		log.WithRequestID(requestID(c)).Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   codeInternal,
			Message: "internal server error",
		})
	}
}

// parseBody decodifica el cuerpo como JSON sin exigir Content-Type. Un cuerpo vacío deja in
// sin tocar para que la validación informe los campos faltantes.
func parseBody(c *fiber.Ctx, in interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(c.Body(), in); err != nil {
		return domain.Validation("malformed JSON body", nil)
	}
	return nil
}
