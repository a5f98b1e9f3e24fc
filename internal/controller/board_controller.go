package controller

import (
	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/pkg/serverutils"
	"hello-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBoardController interface {
	RegisterRoutes(r fiber.Router)
	GetBoard(ctx *fiber.Ctx) error
	AddSticky(ctx *fiber.Ctx) error
	MoveSticky(ctx *fiber.Ctx) error
	RemoveSticky(ctx *fiber.Ctx) error
}

type boardController struct {
	boardService service.IBoardService
}

func NewBoardController(boardService service.IBoardService) IBoardController {
	return &boardController{
		boardService: boardService,
	}
}

func (c *boardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/board/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("stickies", c.GetBoard)
	h.Post("sticky", c.AddSticky)
	h.Put("sticky/:id/position", c.MoveSticky)
	h.Delete("sticky/:id", c.RemoveSticky)
}

func (c *boardController) GetBoard(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.boardService.GetBoard(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show board", res))
}

func (c *boardController) AddSticky(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.AddStickyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.boardService.AddSticky(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success add sticky", res))
}

func (c *boardController) MoveSticky(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	stickyId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid sticky id")
	}

	var req dto.MoveStickyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.Id = stickyId

	if err := c.boardService.MoveSticky(ctx.Context(), userId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success move sticky", nil))
}

func (c *boardController) RemoveSticky(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	stickyId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid sticky id")
	}

	if err := c.boardService.RemoveSticky(ctx.Context(), userId, stickyId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success remove sticky", nil))
}
