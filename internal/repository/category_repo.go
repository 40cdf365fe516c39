package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/soumitjana/soumitjana.github.io/internal/model"
	pkgerrors "github.com/soumitjana/soumitjana.github.io/pkg/errors"
)

// CategoryRepository 课程大纲（分类 → 阶段 → 条目/项目/资源）数据访问接口
type CategoryRepository interface {
	// ListTree 按展示顺序加载完整大纲树
	ListTree(ctx context.Context) ([]model.Category, error)
	Count(ctx context.Context) (int64, error)
	// CreateTree 连同阶段、条目、项目及资源关联一并写入
	CreateTree(ctx context.Context, categories []model.Category) error
	// DeleteAll 删除全部分类，阶段/条目/项目/进度由外键级联删除
	DeleteAll(ctx context.Context) error
}

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo 创建 CategoryRepository 实例
func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func bySortOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("id ASC")
}

func (r *categoryRepo) ListTree(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Preload("Phases", bySortOrder).
		Preload("Phases.Topics", bySortOrder).
		Preload("Phases.Projects", bySortOrder).
		Preload("Phases.Resources", func(db *gorm.DB) *gorm.DB {
			return db.Order("resources.id ASC")
		}).
		Scopes(bySortOrder).
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Count(&total).Error
	return total, err
}

func (r *categoryRepo) CreateTree(ctx context.Context, categories []model.Category) error {
	if len(categories) == 0 {
		return nil
	}
	return pkgerrors.TranslateDuplicate(r.db.WithContext(ctx).Create(&categories).Error)
}

func (r *categoryRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Category{}).Error
}
