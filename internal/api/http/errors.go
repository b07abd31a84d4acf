package httpapi

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-gateway/internal/gateway"
	"github.com/i474232898/weather-gateway/internal/lang"
	"github.com/i474232898/weather-gateway/internal/weather"
)

const (
	notFoundEn  = "City not found"
	notFoundRu  = "Город не найден"
	cyrillicTip = "Попробуйте использовать английское название города"
)

// queryError ties a failure to the free-text query that caused it.
type queryError struct {
	query string
	err   error
}

func (e *queryError) Error() string { return e.err.Error() }

func (e *queryError) Unwrap() error { return e.err }

func withQuery(query string, err error) error {
	if err == nil {
		return nil
	}
	return &queryError{query: query, err: err}
}

// NotFoundBody is the 404 payload for an unresolvable city. Hint is only set for Cyrillic queries.
type NotFoundBody struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
	OriginalQuery string `json:"originalQuery"`
	Language      string `json:"language"`
}

func notFoundBody(query string) NotFoundBody {
	q := lang.Normalize(query)
	body := NotFoundBody{
		Error:         notFoundEn,
		Message:       notFoundEn,
		OriginalQuery: q.Original,
		Language:      q.Language(),
	}
	if q.Script == lang.ScriptCyrillic {
		body.Message = notFoundRu
		body.Hint = cyrillicTip
	}
	return body
}

// ErrorHandler maps domain errors onto HTTP responses.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			fe *fiber.Error
			qe *queryError
			ve validator.ValidationErrors
			gf *weather.GeocodeFailure
			wf *weather.WeatherFetchFailure
		)

		switch {
		case errors.As(err, &fe):
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		case errors.Is(err, weather.ErrNotFound):
			query := ""
			if errors.As(err, &qe) {
				query = qe.query
			}
			return c.Status(fiber.StatusNotFound).JSON(notFoundBody(query))
		case errors.As(err, &ve):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request", "message": ve.Error()})
		case errors.As(err, &gf):
			log.ErrorContext(c.UserContext(), "geocoding failed", slog.String("query", gf.Query), slog.Any("error", gf.Err))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "geocoding failed", "message": err.Error()})
		case errors.As(err, &wf):
			log.ErrorContext(c.UserContext(), "weather fetch failed", slog.String("query", wf.Query), slog.Any("error", wf.Err))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "weather fetch failed", "message": err.Error()})
		case errors.Is(err, gateway.ErrUpstream):
			log.ErrorContext(c.UserContext(), "downstream service failed", slog.Any("error", err))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "downstream service failed", "message": err.Error()})
		default:
			log.ErrorContext(c.UserContext(), "request failed", slog.String("path", c.Path()), slog.Any("error", err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error", "message": err.Error()})
		}
	}
}
