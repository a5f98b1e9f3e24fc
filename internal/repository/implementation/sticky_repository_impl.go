package implementation

import (
	"context"

	"hello-ai-be/internal/entity"
	"hello-ai-be/internal/mapper"
	"hello-ai-be/internal/model"
	"hello-ai-be/internal/repository/contract"
	"hello-ai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StickyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StickyMapper
}

func NewStickyRepository(db *gorm.DB) contract.StickyRepository {
	return &StickyRepositoryImpl{
		db:     db,
		mapper: mapper.NewStickyMapper(),
	}
}

func (r *StickyRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *StickyRepositoryImpl) Upsert(ctx context.Context, sticky *entity.Sticky) error {
	m := r.mapper.StickyToModel(sticky)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *StickyRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Sticky{}, id).Error
}

func (r *StickyRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Sticky, error) {
	var models []*model.Sticky
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.StickiesToEntities(models), nil
}

func (r *StickyRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Sticky{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
