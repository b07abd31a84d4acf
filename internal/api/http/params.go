package httpapi

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cityParam is a free-text place name taken from the path.
type cityParam struct {
	City string `validate:"required,max=100"`
}

func parseCity(c *fiber.Ctx, name string) (string, error) {
	p := cityParam{City: strings.TrimSpace(c.Params(name))}
	if err := validate.Struct(p); err != nil {
		return "", err
	}
	return p.City, nil
}

// coordinates holds a latitude/longitude pair from the path or query.
type coordinates struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func parseCoordinates(latStr, lonStr string) (coordinates, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return coordinates{}, fiber.NewError(fiber.StatusBadRequest, "invalid latitude")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return coordinates{}, fiber.NewError(fiber.StatusBadRequest, "invalid longitude")
	}
	q := coordinates{Lat: lat, Lon: lon}
	if err := validate.Struct(q); err != nil {
		return coordinates{}, err
	}
	return q, nil
}

// windowQuery holds the days parameter of stats and trends. Zero selects the default.
type windowQuery struct {
	Days int `query:"days" validate:"gte=0,lte=365"`
}

// pageQuery holds pagination parameters. Zero selects the default.
type pageQuery struct {
	Page  int `query:"page" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

// limitQuery holds the limit parameter of the popular listing. Zero selects the default.
type limitQuery struct {
	Limit int `query:"limit" validate:"gte=0,lte=50"`
}

// bindQuery parses the query string into dst and validates it.
func bindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return validate.Struct(dst)
}
