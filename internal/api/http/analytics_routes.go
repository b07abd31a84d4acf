package httpapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-gateway/internal/history"
)

// RegisterAnalyticsRoutes wires the analytics service handlers into the Fiber app.
func RegisterAnalyticsRoutes(app fiber.Router, service *history.Service) {
	app.Post("/history", func(c *fiber.Ctx) error {
		var rec history.Record
		if err := c.BodyParser(&rec); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid history entry")
		}
		if err := validate.Struct(rec); err != nil {
			return err
		}
		saved, err := service.Add(c.UserContext(), rec)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(saved)
	})

	app.Get("/history", func(c *fiber.Ctx) error {
		var q pageQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		page, err := service.History(c.UserContext(), q.Page, q.Limit)
		if err != nil {
			return err
		}
		return c.JSON(page)
	})

	app.Get("/stats/cities", func(c *fiber.Ctx) error {
		stats, err := service.CitySummaries(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(stats)
	})

	app.Get("/stats/city/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		var q windowQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		stats, err := service.CityStats(c.UserContext(), city, q.Days)
		if err != nil {
			return err
		}
		return c.JSON(stats)
	})

	app.Get("/trends/:city", func(c *fiber.Ctx) error {
		city, err := parseCity(c, "city")
		if err != nil {
			return err
		}
		var q windowQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		points, err := service.Trends(c.UserContext(), city, q.Days)
		if err != nil {
			return err
		}
		return c.JSON(points)
	})

	app.Get("/popular", func(c *fiber.Ctx) error {
		var q limitQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		popular, err := service.Popular(c.UserContext(), q.Limit)
		if err != nil {
			return err
		}
		return c.JSON(popular)
	})

	cleanup := app.Group("/cleanup")

	cleanup.Delete("/old", func(c *fiber.Ctx) error {
		var q windowQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		n, err := service.DeleteOld(c.UserContext(), q.Days)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message":      fmt.Sprintf("Deleted %d old records", n),
			"deletedCount": n,
		})
	})

	cleanup.Delete("/null-cities", func(c *fiber.Ctx) error {
		n, err := service.DeleteNullCities(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message":      fmt.Sprintf("Deleted %d records with null cities", n),
			"deletedCount": n,
		})
	})

	cleanup.Post("/fix-null-cities", func(c *fiber.Ctx) error {
		n, err := service.FixNullCities(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Updated %d records", n),
			"updated": n,
		})
	})
}
