package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/soumitjana/soumitjana.github.io/internal/model"
)

// ProjectRepository 实践项目数据访问接口
type ProjectRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	// ListAll 按大纲展示顺序列出全部项目
	ListAll(ctx context.Context) ([]model.Project, error)
}

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepo 创建 ProjectRepository 实例
func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) ListAll(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN phases ON phases.id = projects.phase_id").
		Joins("JOIN categories ON categories.id = phases.category_id").
		Order(displayOrderSQL).
		Order("projects.sort_order ASC, projects.id ASC").
		Find(&projects).Error
	return projects, err
}
