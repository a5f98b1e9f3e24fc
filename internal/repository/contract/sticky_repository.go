package contract

import (
	"context"

	"hello-ai-be/internal/entity"
	"hello-ai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type StickyRepository interface {
	// Upsert writes the sticky, replacing any prior row with the same id.
	// The board's in-memory state is authoritative; the durable copy only
	// ever catches up to it.
	Upsert(ctx context.Context, sticky *entity.Sticky) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Sticky, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
