package model

import "time"

// TopicProgress 用户学习条目进度 — 对应 topic_progress
// (user_id, topic_id) 唯一；CompletedAt 在每次保存时刷新，与 completed 的取值方向无关
type TopicProgress struct {
	ID          int64     `gorm:"primaryKey"                                              json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_topic_progress_user_topic,priority:1" json:"user_id"`
	TopicID     int64     `gorm:"not null;uniqueIndex:uq_topic_progress_user_topic,priority:2"                  json:"topic_id"`
	Completed   bool      `gorm:"not null;default:false"                                  json:"completed"`
	CompletedAt time.Time `gorm:"not null;autoUpdateTime"                                 json:"completed_at"`

	Topic *Topic `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE"                  json:"topic,omitempty"`
}

// TableName 指定表名
func (TopicProgress) TableName() string { return "topic_progress" }
