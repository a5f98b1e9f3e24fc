package service

import (
	"context"

	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/state"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// BoardBroadcaster fans a board event out to the owner's connected
// clients. The websocket hub implements it.
type BoardBroadcaster interface {
	BroadcastBoardEvent(ownerUserId uuid.UUID, event dto.BoardEvent)
}

type IBoardService interface {
	GetBoard(ctx context.Context, userId uuid.UUID) (*dto.BoardResponse, error)
	AddSticky(ctx context.Context, userId uuid.UUID, req *dto.AddStickyRequest) (*dto.StickyResponse, error)
	MoveSticky(ctx context.Context, userId uuid.UUID, req *dto.MoveStickyRequest) error
	RemoveSticky(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type boardService struct {
	registry    *state.Registry
	broadcaster BoardBroadcaster
}

func NewBoardService(registry *state.Registry, broadcaster BoardBroadcaster) IBoardService {
	return &boardService{
		registry:    registry,
		broadcaster: broadcaster,
	}
}

func (b *boardService) GetBoard(ctx context.Context, userId uuid.UUID) (*dto.BoardResponse, error) {
	store := b.registry.Board(userId)
	stickies := store.Stickies()

	res := dto.BoardResponse{
		Hydrated: store.Hydrated(),
		Stickies: make([]dto.StickyResponse, 0, len(stickies)),
	}
	for _, s := range stickies {
		res.Stickies = append(res.Stickies, toStickyResponse(s))
	}
	return &res, nil
}

func (b *boardService) AddSticky(ctx context.Context, userId uuid.UUID, req *dto.AddStickyRequest) (*dto.StickyResponse, error) {
	store := b.registry.Board(userId)
	if !store.Hydrated() {
		return nil, fiber.NewError(fiber.StatusConflict, "board is still loading")
	}

	if req.SessionId != uuid.Nil {
		store.SetSessionId(req.SessionId)
	}

	sticky := store.AddSticky(req.Content, req.X, req.Y, req.Color, userId)
	res := toStickyResponse(sticky)

	b.broadcast(userId, dto.BoardEvent{Type: "sticky_added", Sticky: &res})
	return &res, nil
}

func (b *boardService) MoveSticky(ctx context.Context, userId uuid.UUID, req *dto.MoveStickyRequest) error {
	store := b.registry.Board(userId)
	if !store.UpdatePosition(req.Id, req.X, req.Y) {
		return fiber.NewError(fiber.StatusNotFound, "sticky not found")
	}

	b.broadcast(userId, dto.BoardEvent{
		Type:     "sticky_moved",
		StickyId: req.Id,
		Sticky:   &dto.StickyResponse{Id: req.Id, X: req.X, Y: req.Y},
	})
	return nil
}

func (b *boardService) RemoveSticky(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	store := b.registry.Board(userId)
	if !store.Remove(id) {
		return fiber.NewError(fiber.StatusNotFound, "sticky not found")
	}

	b.broadcast(userId, dto.BoardEvent{Type: "sticky_removed", StickyId: id})
	return nil
}

func (b *boardService) broadcast(userId uuid.UUID, event dto.BoardEvent) {
	if b.broadcaster != nil {
		b.broadcaster.BroadcastBoardEvent(userId, event)
	}
}

func toStickyResponse(s state.Sticky) dto.StickyResponse {
	return dto.StickyResponse{
		Id:          s.Id,
		Content:     s.Content,
		X:           s.X,
		Y:           s.Y,
		Color:       s.Color,
		OwnerUserId: s.OwnerUserId,
	}
}
