package model

// 学习资源类型
const (
	ResourceTypeBook   = "BOOK"
	ResourceTypeCourse = "COURSE"
	ResourceTypeOnline = "ONLINE"
)

// ResourceTypeLabels 资源类型展示名
var ResourceTypeLabels = map[string]string{
	ResourceTypeBook:   "Book",
	ResourceTypeCourse: "Course",
	ResourceTypeOnline: "Online Resource",
}

// Resource 学习资源 — 对应 resources，与 Phase 多对多（phase_resources）
type Resource struct {
	ID           int64  `gorm:"primaryKey"                    json:"id"`
	Title        string `gorm:"type:varchar(200);not null"    json:"title"`
	ResourceType string `gorm:"type:varchar(20);not null"     json:"resource_type"` // BOOK | COURSE | ONLINE
	URL          string `gorm:"type:varchar(200);not null;default:''" json:"url,omitempty"`
	Description  string `gorm:"type:text;not null;default:''" json:"description,omitempty"`
	BaseModel

	Phases []Phase `gorm:"many2many:phase_resources;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Resource) TableName() string { return "resources" }
