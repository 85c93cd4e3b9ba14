package model

import (
	"time"
	baseModel "fortune_shop/pkg/model"
)

// QnA 问答，会员或游客（凭密码）提问
type QnA struct {
	baseModel.BaseModel
	UserID       *string    `gorm:"type:uuid;index" json:"userId"` // 游客为空
	AuthorName   string     `gorm:"size:50;not null" json:"authorName"`
	AuthorEmail  string     `gorm:"size:255" json:"authorEmail"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Question     string     `gorm:"type:text;not null" json:"question"`
	Answer       *string    `gorm:"type:text" json:"answer"`
	IsPublic     bool       `gorm:"not null" json:"isPublic"`
	IsAnswered   bool       `gorm:"not null;default:false;index" json:"isAnswered"`
	IsDeleted    bool       `gorm:"not null;default:false;index" json:"-"`
	AnsweredAt   *time.Time `json:"answeredAt"`
}

func (QnA) TableName() string {
	return "qnas"
}

// IsGuest 游客提问
func (q *QnA) IsGuest() bool {
	return q.UserID == nil
}

// OwnedBy 会员本人
func (q *QnA) OwnedBy(userID string) bool {
	return userID != "" && q.UserID != nil && *q.UserID == userID
}
