package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationType 通知類型
type NotificationType string

const (
	TypeSingle    NotificationType = "single"
	TypeTest      NotificationType = "test"
	TypeWelcome   NotificationType = "welcome"
	TypeBroadcast NotificationType = "broadcast"
)

// NotificationStatus 發送狀態
type NotificationStatus string

const (
	StatusSent  NotificationStatus = "sent"
	StatusError NotificationStatus = "error"
)

// NotificationLog 每次發送嘗試寫入一筆，僅新增不修改
// user_id 不設外鍵，設備刪除後歷史紀錄仍可能殘留其他使用者的紀錄
type NotificationLog struct {
	ID       uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   string             `gorm:"size:255;index" json:"user_id"` // 廣播時為 admin
	Title    string             `gorm:"size:255" json:"title"`
	Body     string             `json:"body"`
	Data     datatypes.JSON     `json:"data"`
	Type     NotificationType   `gorm:"size:50" json:"type"`
	Status   NotificationStatus `gorm:"size:20" json:"status"`
	TicketID string             `gorm:"size:255" json:"ticket_id"`
	ErrorMsg string             `json:"error"`
	SentAt   time.Time          `gorm:"index" json:"sent_at"`
}

// BeforeCreate hook to auto-generate UUID
func (n *NotificationLog) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
