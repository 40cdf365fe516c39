package model

// Topic 阶段内的学习条目 — 对应 topics
type Topic struct {
	ID        int64  `gorm:"primaryKey"                 json:"id"`
	PhaseID   int64  `gorm:"not null;index"             json:"phase_id"`
	Name      string `gorm:"type:varchar(200);not null" json:"name"`
	SortOrder int    `gorm:"not null;default:0"         json:"order"`
	BaseModel
}

// TableName 指定表名
func (Topic) TableName() string { return "topics" }
