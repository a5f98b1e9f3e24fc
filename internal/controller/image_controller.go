package controller

import (
	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/pkg/serverutils"
	"hello-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IImageController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
}

type imageController struct {
	imageService service.IImageService
}

func NewImageController(imageService service.IImageService) IImageController {
	return &imageController{
		imageService: imageService,
	}
}

func (c *imageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/image/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("search", c.Search)
	h.Post("generate", c.Generate)
}

func (c *imageController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchImagesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.imageService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search images", res))
}

func (c *imageController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateImageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.imageService.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate image", res))
}
