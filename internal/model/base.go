package model

import "time"

// BaseModel 通用审计字段（课程大纲与用户模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// All 返回需要建表的全部模型（SQLite 模式下 AutoMigrate 使用）
// 顺序即建表顺序：被引用的表在前
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Phase{},
		&Topic{},
		&Project{},
		&Resource{},
		&TopicProgress{},
		&ProjectProgress{},
	}
}
