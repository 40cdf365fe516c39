package model

import "time"

// ProjectProgress 用户项目进度 — 对应 project_progress
// (user_id, project_id) 唯一；CompletedAt 语义同 TopicProgress
type ProjectProgress struct {
	ID          int64     `gorm:"primaryKey"                                                    json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_project_progress_user_project,priority:1" json:"user_id"`
	ProjectID   int64     `gorm:"not null;uniqueIndex:uq_project_progress_user_project,priority:2"                  json:"project_id"`
	Completed   bool      `gorm:"not null;default:false"                                        json:"completed"`
	CompletedAt time.Time `gorm:"not null;autoUpdateTime"                                       json:"completed_at"`
	GithubLink  string    `gorm:"type:varchar(200);not null;default:''"                         json:"github_link"`

	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"                json:"project,omitempty"`
}

// TableName 指定表名
func (ProjectProgress) TableName() string { return "project_progress" }
