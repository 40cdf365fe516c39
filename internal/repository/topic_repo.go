package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/soumitjana/soumitjana.github.io/internal/model"
)

// displayOrder 大纲展示顺序：分类 → 阶段 → 自身排序
const displayOrderSQL = "categories.sort_order ASC, categories.id ASC, phases.sort_order ASC, phases.id ASC"

// TopicRepository 学习条目数据访问接口
type TopicRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Topic, error)
	// ListAll 按大纲展示顺序列出全部条目
	ListAll(ctx context.Context) ([]model.Topic, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Topic, error)
}

type topicRepo struct {
	db *gorm.DB
}

// NewTopicRepo 创建 TopicRepository 实例
func NewTopicRepo(db *gorm.DB) TopicRepository {
	return &topicRepo{db: db}
}

func (r *topicRepo) GetByID(ctx context.Context, id int64) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) ListAll(ctx context.Context) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.db.WithContext(ctx).
		Joins("JOIN phases ON phases.id = topics.phase_id").
		Joins("JOIN categories ON categories.id = phases.category_id").
		Order(displayOrderSQL).
		Order("topics.sort_order ASC, topics.id ASC").
		Find(&topics).Error
	return topics, err
}

func (r *topicRepo) ListByIDs(ctx context.Context, ids []int64) ([]model.Topic, error) {
	var topics []model.Topic
	if len(ids) == 0 {
		return topics, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&topics).Error
	return topics, err
}
