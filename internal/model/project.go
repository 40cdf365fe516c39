package model

// Project 阶段内的实践项目 — 对应 projects
type Project struct {
	ID          int64  `gorm:"primaryKey"                    json:"id"`
	PhaseID     int64  `gorm:"not null;index"                json:"phase_id"`
	Name        string `gorm:"type:varchar(200);not null"    json:"name"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
	SortOrder   int    `gorm:"not null;default:0"            json:"order"`
	BaseModel
}

// TableName 指定表名
func (Project) TableName() string { return "projects" }
