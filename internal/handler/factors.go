package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/emissions"
)

// Factors returns the emission factor table.
func Factors(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"factors": emissions.Factors()})
}

type calcReq struct {
	emissions.Activity
}

// Calculate previews the emissions of an activity without storing it.
func Calculate(c echo.Context) error {
	var req calcReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, emissions.Calculate(req.Activity))
}
