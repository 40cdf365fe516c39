package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/soumitjana/soumitjana.github.io/internal/model"
)

// ResourceRepository 学习资源数据访问接口
type ResourceRepository interface {
	BatchCreate(ctx context.Context, resources []*model.Resource) error
	DeleteAll(ctx context.Context) error
}

type resourceRepo struct {
	db *gorm.DB
}

// NewResourceRepo 创建 ResourceRepository 实例
func NewResourceRepo(db *gorm.DB) ResourceRepository {
	return &resourceRepo{db: db}
}

func (r *resourceRepo) BatchCreate(ctx context.Context, resources []*model.Resource) error {
	if len(resources) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Phases").Create(&resources).Error
}

// DeleteAll 删除全部资源，phase_resources 关联行由外键级联删除
func (r *resourceRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Resource{}).Error
}
