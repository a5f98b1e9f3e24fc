package controller

import (
	"hello-ai-be/internal/pkg/serverutils"
	"hello-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	LoginURL(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	oauthService service.IOAuthService
}

func NewOAuthController(oauthService service.IOAuthService) IOAuthController {
	return &oauthController{
		oauthService: oauthService,
	}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/oauth/v1")
	h.Get(":provider/login-url", c.LoginURL)
	h.Get(":provider/callback", c.Callback)
}

func (c *oauthController) LoginURL(ctx *fiber.Ctx) error {
	url, err := c.oauthService.GetLoginURL(ctx.Params("provider"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login URL", fiber.Map{"url": url}))
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	code := ctx.Query("code")
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing code")
	}

	res, err := c.oauthService.HandleCallback(ctx.Context(), ctx.Params("provider"), code)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}
