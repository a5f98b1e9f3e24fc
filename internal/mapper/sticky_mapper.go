package mapper

import (
	"time"

	"hello-ai-be/internal/entity"
	"hello-ai-be/internal/model"

	"gorm.io/datatypes"
)

type StickyMapper struct{}

func NewStickyMapper() *StickyMapper {
	return &StickyMapper{}
}

func (m *StickyMapper) StickyToEntity(s *model.Sticky) *entity.Sticky {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Sticky{
		Id:            s.Id,
		Content:       s.Content,
		X:             s.X,
		Y:             s.Y,
		Color:         s.Color,
		OwnerUserId:   s.OwnerUserId,
		ChatSessionId: s.ChatSessionId,
		Style:         map[string]interface{}(s.Style),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *StickyMapper) StickyToModel(s *entity.Sticky) *model.Sticky {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Sticky{
		Id:            s.Id,
		Content:       s.Content,
		X:             s.X,
		Y:             s.Y,
		Color:         s.Color,
		OwnerUserId:   s.OwnerUserId,
		ChatSessionId: s.ChatSessionId,
		Style:         datatypes.JSONMap(s.Style),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *StickyMapper) StickiesToEntities(models []*model.Sticky) []*entity.Sticky {
	entities := make([]*entity.Sticky, len(models))
	for i, s := range models {
		entities[i] = m.StickyToEntity(s)
	}
	return entities
}
