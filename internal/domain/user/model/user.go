package model

import (
	"time"
	baseModel "fortune_shop/pkg/model"
)

// 角色
const (
	RoleUser  = 1
	RoleAdmin = 2
)

// User 用户模型，只支持第三方登录
type User struct {
	baseModel.BaseModel
	Email          string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name           string     `gorm:"type:varchar(100)" json:"name"`
	Provider       string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_provider" json:"provider"`
	ProviderUserID string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_user_provider" json:"-"`
	Role           int        `gorm:"default:1" json:"role"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
