package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-gateway/internal/gateway"
)

// RegisterGatewayRoutes wires the gateway handlers into the Fiber app.
func RegisterGatewayRoutes(app *fiber.App, service *gateway.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lon query parameters are required")
		}
		q, err := parseCoordinates(c.Query("lat"), c.Query("lon"))
		if err != nil {
			return err
		}
		cc, err := service.WeatherByCoords(c.UserContext(), q.Lat, q.Lon)
		if err != nil {
			return err
		}
		return c.JSON(cc)
	})

	v1.Get("/weather/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		cc, err := service.Weather(c.UserContext(), city)
		if err != nil {
			return withQuery(city, err)
		}
		return c.JSON(cc)
	})

	v1.Get("/forecast/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		fc, err := service.Forecast(c.UserContext(), city)
		if err != nil {
			return withQuery(city, err)
		}
		return c.JSON(fc)
	})

	v1.Get("/search/:query", func(c *fiber.Ctx) error {
		query, err := parseCity(c, "query")
		if err != nil {
			return err
		}
		cands, err := service.Search(c.UserContext(), query)
		if err != nil {
			return withQuery(query, err)
		}
		return c.JSON(cands)
	})

	v1.Get("/coordinates/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		coords, err := service.Coordinates(c.UserContext(), city)
		if err != nil {
			return withQuery(city, err)
		}
		return c.JSON(coords)
	})

	v1.Get("/stats/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		var q windowQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		return c.JSON(service.Stats(c.UserContext(), city, q.Days))
	})

	v1.Get("/trends/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		var q windowQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		return c.JSON(service.Trends(c.UserContext(), city, q.Days))
	})

	v1.Get("/popular", func(c *fiber.Ctx) error {
		var q limitQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		return c.JSON(service.Popular(c.UserContext(), q.Limit))
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		var q pageQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		return c.JSON(service.History(c.UserContext(), q.Page, q.Limit))
	})

	v1.Get("/dashboard/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		d, err := service.Dashboard(c.UserContext(), city)
		if err != nil {
			return withQuery(city, err)
		}
		return c.JSON(d)
	})
}
