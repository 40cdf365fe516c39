package model

// Phase 分类下的学习阶段 — 对应 phases，按 (category_id, sort_order) 排序
type Phase struct {
	ID         int64  `gorm:"primaryKey"                                json:"id"`
	CategoryID int64  `gorm:"not null;index:idx_phases_category_order,priority:1" json:"category_id"`
	Title      string `gorm:"type:varchar(200);not null"                json:"title"`
	WeekRange  string `gorm:"type:varchar(50);not null;default:''"      json:"week_range"`
	Goal       string `gorm:"type:text;not null;default:''"             json:"goal"`
	SortOrder  int    `gorm:"not null;index:idx_phases_category_order,priority:2" json:"order"`
	BaseModel

	Topics    []Topic    `gorm:"foreignKey:PhaseID;constraint:OnDelete:CASCADE"                     json:"topics,omitempty"`
	Projects  []Project  `gorm:"foreignKey:PhaseID;constraint:OnDelete:CASCADE"                     json:"projects,omitempty"`
	Resources []Resource `gorm:"many2many:phase_resources;constraint:OnDelete:CASCADE"              json:"resources,omitempty"`
}

// TableName 指定表名
func (Phase) TableName() string { return "phases" }
