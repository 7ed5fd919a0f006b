package internal

import (
	"net/http"

	"giftd/internal/controllers"
	"giftd/internal/providers"
	"giftd/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/checkin", http.HandlerFunc(apiController.CheckIn))
	routers.Post("/redeem", http.HandlerFunc(apiController.Redeem))
	routers.Get("/gifts", http.HandlerFunc(apiController.ListGifts))
	routers.Get("/user", http.HandlerFunc(apiController.GetUser))

	routers.Post("/gift/add", http.HandlerFunc(apiController.AddGift))
	routers.Post("/gift/edit", http.HandlerFunc(apiController.EditGift))
	routers.Post("/gift/codes", http.HandlerFunc(apiController.AddCodes))
	routers.Post("/gift/remove", http.HandlerFunc(apiController.RemoveGift))
	routers.Get("/gift", http.HandlerFunc(apiController.GiftInfo))

	routers.Post("/points/grant", http.HandlerFunc(apiController.GrantPoints))
	routers.Post("/points/deduct", http.HandlerFunc(apiController.DeductPoints))
	routers.Post("/config/checkin-points", http.HandlerFunc(apiController.SetCheckinPoints))

	routers.Post("/admin/claim", http.HandlerFunc(apiController.ClaimAdmin))
	routers.Post("/admin/add", http.HandlerFunc(apiController.AddAdmin))
	routers.Post("/admin/remove", http.HandlerFunc(apiController.RemoveAdmin))

	return routers
}
