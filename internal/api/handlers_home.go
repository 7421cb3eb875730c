package api

import (
	"time"

	"github.com/agrosoft/agrosoft/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Home(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	recent, err := handler.recommendationSvc.RecentForUser(user.ID)
	if err != nil {
		return err
	}

	flash := handler.popFlashCookie(c)
	return handler.render(c, "home", fiber.Map{
		"Title":   localizedPageTitle(currentMessages(c), "meta.title.home"),
		"Recent":  recent,
		"Weather": handler.recommendationSvc.CurrentWeather(c.UserContext()),
		"Success": flash.Success,
	})
}

type productView struct {
	services.RegionalProduct
	InSeason bool
}

func (handler *Handler) Products(c *fiber.Ctx) error {
	month := time.Now().In(handler.location).Month()

	products := services.RegionalProducts()
	views := make([]productView, 0, len(products))
	for _, product := range products {
		views = append(views, productView{
			RegionalProduct: product,
			InSeason:        services.IsRegionalProductInSeason(product, month),
		})
	}

	return handler.render(c, "products", fiber.Map{
		"Title":          localizedPageTitle(currentMessages(c), "meta.title.products"),
		"Products":       views,
		"Municipalities": services.Municipalities(),
		"Month":          int(month),
	})
}
