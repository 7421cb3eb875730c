package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/agrosoft/agrosoft/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) RecommendationForm(c *fiber.Ctx) error {
	input := recommendationFormInput{
		Mode:       c.Query("mode", services.RecommendationModeMunicipality),
		SowingDate: time.Now().In(handler.location).Format("2006-01-02"),
	}
	return handler.renderRecommendationForm(c, fiber.StatusOK, input, "")
}

func (handler *Handler) CreateRecommendation(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	input := recommendationFormInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.renderRecommendationForm(c, fiber.StatusBadRequest, input, errInvalidInput)
	}

	submitted, err := handler.recommendationSvc.Submit(c.UserContext(), user.ID, services.RecommendationInput{
		Mode:         input.Mode,
		Crop:         input.Crop,
		Municipality: input.Municipality,
		SowingDate:   input.SowingDate,
		Quantity:     input.Quantity,
	})
	if err != nil {
		if errorTranslationKey(err.Error()) != "" {
			return handler.renderRecommendationForm(c, fiber.StatusUnprocessableEntity, input, err.Error())
		}
		return err
	}

	handler.setFlashCookie(c, FlashPayload{Success: "recommendation.success.created"})
	return c.Redirect("/recommendations/"+strconv.FormatUint(uint64(submitted.Request.ID), 10), fiber.StatusSeeOther)
}

func (handler *Handler) Recommendations(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	requests, err := handler.recommendationSvc.ListForUser(user.ID)
	if err != nil {
		return err
	}
	return handler.render(c, "recommendations", fiber.Map{
		"Title":    localizedPageTitle(currentMessages(c), "meta.title.recommendations"),
		"Requests": requests,
	})
}

func (handler *Handler) RecommendationDetail(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return handler.NotFound(c)
	}

	request, recommendation, err := handler.recommendationSvc.LoadForViewer(user, uint(requestID))
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			return handler.NotFound(c)
		}
		return err
	}

	flash := handler.popFlashCookie(c)
	return handler.render(c, "recommendation_result", fiber.Map{
		"Title":          localizedPageTitle(currentMessages(c), "meta.title.recommendation_result"),
		"Request":        request,
		"Recommendation": recommendation,
		"Weather":        request.WeatherSnapshot,
		"Success":        flash.Success,
		"Error":          flash.FormError,
		"IsOwner":        request.UserID == user.ID,
	})
}

func (handler *Handler) renderRecommendationForm(c *fiber.Ctx, status int, input recommendationFormInput, message string) error {
	c.Status(status)
	return handler.render(c, "recommendation_form", fiber.Map{
		"Title":          localizedPageTitle(currentMessages(c), "meta.title.recommendation_form"),
		"Input":          input,
		"Error":          message,
		"Crops":          services.SelectableCrops(),
		"Municipalities": services.Municipalities(),
		"ModeCrop":       services.RecommendationModeCrop,
		"ModePlace":      services.RecommendationModeMunicipality,
	})
}
