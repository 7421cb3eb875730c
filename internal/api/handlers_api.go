package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/agrosoft/agrosoft/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) APIWeather(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"weather":   handler.recommendationSvc.CurrentWeather(c.UserContext()),
		"timestamp": time.Now().In(handler.location).Format(time.RFC3339),
	})
}

// APIRecommendation computes a recommendation without storing a request.
func (handler *Handler) APIRecommendation(c *fiber.Ctx) error {
	input := recommendationAPIInput{}
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid JSON")
	}

	quantity, ok := apiQuantityString(input.Quantity)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, services.ErrQuantityInvalid.Error())
	}

	recommendation, weather, err := handler.recommendationSvc.Compute(c.UserContext(), services.RecommendationInput{
		Crop:             input.Crop,
		Municipality:     input.Municipality,
		SowingDate:       input.SowingDate,
		Quantity:         quantity,
		QuantityOptional: true,
	})
	if err != nil {
		if errorTranslationKey(err.Error()) != "" {
			return apiError(c, fiber.StatusBadRequest, err.Error())
		}
		return apiError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"mode":            recommendation.Mode,
		"crop":            recommendation.Crop,
		"municipality":    recommendation.Municipality,
		"season":          recommendation.Season,
		"harvest_date":    recommendation.HarvestDate.Format("2006-01-02"),
		"viability":       recommendation.Viability,
		"analysis":        recommendation.Analysis,
		"weather":         weather,
		"recommendations": recommendation.Suggestions,
		"regional":        recommendation.Regional,
	})
}

func (handler *Handler) MethodNotAllowed(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusMethodNotAllowed, "method not allowed")
}

// apiQuantityString accepts a JSON number or numeric string.
func apiQuantityString(raw any) (string, bool) {
	switch value := raw.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(value), true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	default:
		return "", false
	}
}
