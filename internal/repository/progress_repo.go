package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/soumitjana/soumitjana.github.io/internal/model"
	pkgerrors "github.com/soumitjana/soumitjana.github.io/pkg/errors"
)

// TopicProgressRepository 学习条目进度数据访问接口
// Create 在 (user_id, topic_id) 已存在时返回 pkgerrors.ErrDuplicateKey
type TopicProgressRepository interface {
	GetByUserAndTopic(ctx context.Context, userID string, topicID int64) (*model.TopicProgress, error)
	ListByUser(ctx context.Context, userID string) ([]model.TopicProgress, error)
	ListByUserAndTopics(ctx context.Context, userID string, topicIDs []int64) ([]model.TopicProgress, error)
	Create(ctx context.Context, p *model.TopicProgress) error
	Update(ctx context.Context, p *model.TopicProgress) error
}

// ProjectProgressRepository 项目进度数据访问接口
// Create 在 (user_id, project_id) 已存在时返回 pkgerrors.ErrDuplicateKey
type ProjectProgressRepository interface {
	GetByUserAndProject(ctx context.Context, userID string, projectID int64) (*model.ProjectProgress, error)
	ListByUser(ctx context.Context, userID string) ([]model.ProjectProgress, error)
	Create(ctx context.Context, p *model.ProjectProgress) error
	Update(ctx context.Context, p *model.ProjectProgress) error
}

// ── TopicProgress Repository 实现 ──

type topicProgressRepo struct {
	db *gorm.DB
}

// NewTopicProgressRepo 创建 TopicProgressRepository 实例
func NewTopicProgressRepo(db *gorm.DB) TopicProgressRepository {
	return &topicProgressRepo{db: db}
}

func (r *topicProgressRepo) GetByUserAndTopic(ctx context.Context, userID string, topicID int64) (*model.TopicProgress, error) {
	var p model.TopicProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *topicProgressRepo) ListByUser(ctx context.Context, userID string) ([]model.TopicProgress, error) {
	var list []model.TopicProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("topic_id ASC").
		Find(&list).Error
	return list, err
}

func (r *topicProgressRepo) ListByUserAndTopics(ctx context.Context, userID string, topicIDs []int64) ([]model.TopicProgress, error) {
	var list []model.TopicProgress
	if len(topicIDs) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND topic_id IN ?", userID, topicIDs).
		Find(&list).Error
	return list, err
}

// Create 在嵌套事务（SAVEPOINT）中插入，冲突时外层事务仍可继续使用
func (r *topicProgressRepo) Create(ctx context.Context, p *model.TopicProgress) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Topic").Create(p).Error
	})
	return pkgerrors.TranslateDuplicate(err)
}

// Update 原地更新；completed_at 由 autoUpdateTime 自动刷新
func (r *topicProgressRepo) Update(ctx context.Context, p *model.TopicProgress) error {
	return r.db.WithContext(ctx).Omit("Topic").Save(p).Error
}

// ── ProjectProgress Repository 实现 ──

type projectProgressRepo struct {
	db *gorm.DB
}

// NewProjectProgressRepo 创建 ProjectProgressRepository 实例
func NewProjectProgressRepo(db *gorm.DB) ProjectProgressRepository {
	return &projectProgressRepo{db: db}
}

func (r *projectProgressRepo) GetByUserAndProject(ctx context.Context, userID string, projectID int64) (*model.ProjectProgress, error) {
	var p model.ProjectProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectProgressRepo) ListByUser(ctx context.Context, userID string) ([]model.ProjectProgress, error) {
	var list []model.ProjectProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("project_id ASC").
		Find(&list).Error
	return list, err
}

func (r *projectProgressRepo) Create(ctx context.Context, p *model.ProjectProgress) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Project").Create(p).Error
	})
	return pkgerrors.TranslateDuplicate(err)
}

func (r *projectProgressRepo) Update(ctx context.Context, p *model.ProjectProgress) error {
	return r.db.WithContext(ctx).Omit("Project").Save(p).Error
}
