package services

import (
	"encoding/json"
	"time"

	"push_API/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// RecentErrorWindowDays 計算近期錯誤的回溯天數
	RecentErrorWindowDays = 7
	// HistoryLimit 歷史查詢的預設筆數上限
	HistoryLimit = 20
)

// NotificationData 一筆發送嘗試的紀錄內容
type NotificationData struct {
	UserID   string
	Title    string
	Body     string
	Data     map[string]string
	Type     models.NotificationType
	Status   models.NotificationStatus
	TicketID string
	ErrorMsg string
}

// NotificationService 管理通知發送紀錄
type NotificationService struct {
	DB *gorm.DB
}

// NewNotificationService 建立新的通知紀錄服務
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Log 寫入一筆發送紀錄，成功與失敗的嘗試都要記錄
func (s *NotificationService) Log(data NotificationData) (*models.NotificationLog, error) {
	payload := datatypes.JSON("{}")
	if data.Data != nil {
		if raw, err := json.Marshal(data.Data); err == nil {
			payload = datatypes.JSON(raw)
		}
	}

	entry := models.NotificationLog{
		UserID:   data.UserID,
		Title:    data.Title,
		Body:     data.Body,
		Data:     payload,
		Type:     data.Type,
		Status:   data.Status,
		TicketID: data.TicketID,
		ErrorMsg: data.ErrorMsg,
		SentAt:   time.Now(),
	}

	return &entry, s.DB.Create(&entry).Error
}

// RecentErrorCount 計算使用者近 7 天內的投遞錯誤數
// 只計入錯誤訊息含 Invalid 或 Device 的紀錄（token 相關錯誤）
func (s *NotificationService) RecentErrorCount(userID string) (int64, error) {
	since := time.Now().AddDate(0, 0, -RecentErrorWindowDays)

	var count int64
	err := s.DB.Model(&models.NotificationLog{}).
		Where("user_id = ? AND status = ? AND sent_at > ?", userID, models.StatusError, since).
		Where("error_msg LIKE ? OR error_msg LIKE ?", "%Invalid%", "%Device%").
		Count(&count).Error
	return count, err
}

// History 依發送時間由新到舊取出最近的紀錄
func (s *NotificationService) History(limit int) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	err := s.DB.Order("sent_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
