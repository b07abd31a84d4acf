package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// RegisterWeatherRoutes wires the weather service handlers into the Fiber app.
func RegisterWeatherRoutes(app fiber.Router, service *weather.Service) {
	app.Get("/weather/coordinates/:lat/:lon", func(c *fiber.Ctx) error {
		q, err := parseCoordinates(c.Params("lat"), c.Params("lon"))
		if err != nil {
			return err
		}
		cc, err := service.GetWeatherByCoords(c.UserContext(), q.Lat, q.Lon)
		if err != nil {
			return err
		}
		return c.JSON(cc)
	})

	app.Get("/weather/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		cc, err := service.GetWeather(c.UserContext(), city)
		if err != nil {
			return withQuery(city, err)
		}
		return c.JSON(cc)
	})

	app.Get("/forecast/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		fc, err := service.GetForecast(c.UserContext(), city)
		if err != nil {
			return withQuery(city, err)
		}
		return c.JSON(fc)
	})

	app.Get("/search/:query", func(c *fiber.Ctx) error {
		query, err := parseCity(c, "query")
		if err != nil {
			return err
		}
		cands, err := service.SearchCities(c.UserContext(), query)
		if err != nil {
			return withQuery(query, err)
		}
		return c.JSON(cands)
	})

	app.Get("/geocode/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		locs, err := service.Geocode(c.UserContext(), city)
		if err != nil {
			return withQuery(city, err)
		}
		return c.JSON(locs)
	})
}
