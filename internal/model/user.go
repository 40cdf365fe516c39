package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 用户表 — 对应 users（身份提供方的最小实现）
type User struct {
	UserID       string `gorm:"type:varchar(36);primaryKey"         json:"user_id"`
	Username     string `gorm:"type:varchar(64);not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"          json:"-"`
	BaseModel

	// 进度外键建在进度表上：删除用户时级联删除其进度
	TopicProgress   []TopicProgress   `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ProjectProgress []ProjectProgress `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 未指定主键时生成 UUID
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	return nil
}
