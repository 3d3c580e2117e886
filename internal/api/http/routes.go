package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/i474232898/geofence-notifier/internal/geofence"
	"github.com/i474232898/geofence-notifier/internal/store"
)

var validate = validator.New()

// ResultReader exposes the latest evaluation result.
type ResultReader interface {
	Latest() (geofence.EvaluationResult, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
// metrics may be nil, in which case /metrics is not served.
func RegisterRoutes(app *fiber.App, results ResultReader, fences geofence.GeofenceSource, metrics http.Handler) {
	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}

	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		res, err := results.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no evaluation has completed yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read status")
		}

		return c.JSON(fiber.Map{
			"result":  res,
			"message": geofence.Message(res),
		})
	})

	v1.Get("/geofence", func(c *fiber.Ctx) error {
		fence, err := fences.LoadGeofence(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}

		bounds := geofence.DeriveBounds(fence)
		return c.JSON(fiber.Map{
			"geofence": fence,
			"bounds":   bounds,
			"inverted": bounds.Inverted(),
		})
	})

	v1.Get("/check", func(c *fiber.Ctx) error {
		var q checkQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		fence, err := fences.LoadGeofence(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}

		coord := geofence.Coordinate{Latitude: *q.Lat, Longitude: *q.Lon}
		bounds := geofence.DeriveBounds(fence)
		return c.JSON(fiber.Map{
			"coordinate": coord,
			"bounds":     bounds,
			"inside":     bounds.Contains(coord),
		})
	})
}

// checkQuery holds query parameters for the check endpoint.
type checkQuery struct {
	Lat *float64 `validate:"required,gte=-90,lte=90"`
	Lon *float64 `validate:"required,gte=-180,lte=180"`
}

func (q *checkQuery) bind(c *fiber.Ctx) error {
	var err error
	if q.Lat, err = parseOptionalFloat(c.Query("lat")); err != nil {
		return errors.New("lat must be a number")
	}
	if q.Lon, err = parseOptionalFloat(c.Query("lon")); err != nil {
		return errors.New("lon must be a number")
	}
	return nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
