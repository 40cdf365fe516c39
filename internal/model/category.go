package model

// Category 学习路线分类 — 对应 categories，按 sort_order 升序
type Category struct {
	ID          int64  `gorm:"primaryKey"                           json:"id"`
	Name        string `gorm:"type:varchar(100);not null"           json:"name"`
	Code        string `gorm:"type:varchar(10);not null;uniqueIndex" json:"code"`
	Description string `gorm:"type:text;not null;default:''"        json:"description"`
	SortOrder   int    `gorm:"not null;default:0"                   json:"order"`
	BaseModel

	Phases []Phase `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"phases,omitempty"`
}

// TableName 指定表名
func (Category) TableName() string { return "categories" }
