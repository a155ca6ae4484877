package services

import (
	"errors"
	"time"

	"push_API/models"

	"gorm.io/gorm"
)

// DeviceData 註冊請求攜帶的設備資料
type DeviceData struct {
	ExpoPushToken string
	Platform      string
	AppVersion    string
	DeviceName    string
	DeviceModel   string
}

// UserSummary 公開的使用者清單項目
type UserSummary struct {
	UserID   string `json:"user_id"`
	Platform string `json:"platform"`
}

// DeviceService 管理設備紀錄的 CRUD
type DeviceService struct {
	DB *gorm.DB
}

// NewDeviceService 建立新的設備服務
func NewDeviceService(db *gorm.DB) *DeviceService {
	return &DeviceService{DB: db}
}

// FindByUser 依使用者ID查詢設備，查無時回傳 (nil, nil)
func (s *DeviceService) FindByUser(userID string) (*models.Device, error) {
	var device models.Device
	err := s.DB.Where("user_id = ?", userID).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// FindByToken 依 token 查詢設備，用於偵測同一實體設備換了使用者ID重新註冊
// 只是盡力比對的啟發式查詢，token 不保證跨使用者唯一
func (s *DeviceService) FindByToken(token string) (*models.Device, error) {
	var device models.Device
	err := s.DB.Where("expo_push_token = ?", token).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// Upsert 建立或就地覆寫設備紀錄
// 既有紀錄保留 registered_at，其餘欄位全部覆寫
// token_updated_at 每次呼叫都會刷新，即使 token 值沒變
func (s *DeviceService) Upsert(userID string, data DeviceData) (*models.Device, error) {
	now := time.Now()

	var existing models.Device
	err := s.DB.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		existing.ExpoPushToken = data.ExpoPushToken
		existing.Platform = data.Platform
		existing.AppVersion = data.AppVersion
		existing.DeviceName = data.DeviceName
		existing.DeviceModel = data.DeviceModel
		existing.LastActive = now
		existing.TokenUpdatedAt = now
		return &existing, s.DB.Save(&existing).Error
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	device := models.Device{
		UserID:         userID,
		ExpoPushToken:  data.ExpoPushToken,
		Platform:       data.Platform,
		AppVersion:     data.AppVersion,
		DeviceName:     data.DeviceName,
		DeviceModel:    data.DeviceModel,
		RegisteredAt:   now,
		LastActive:     now,
		TokenUpdatedAt: now,
	}
	return &device, s.DB.Create(&device).Error
}

// TouchLastActive 刷新最後活動時間
func (s *DeviceService) TouchLastActive(userID string) error {
	return s.DB.Model(&models.Device{}).
		Where("user_id = ?", userID).
		Update("last_active", time.Now()).Error
}

// Delete 刪除設備並連帶刪除該使用者的通知紀錄
// 兩者在同一交易內完成，紀錄刪除失敗時設備也不會被刪除
func (s *DeviceService) Delete(userID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.NotificationLog{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.Device{}).Error
	})
}

// ListUsers 回傳所有使用者ID與平台
func (s *DeviceService) ListUsers() ([]UserSummary, error) {
	var users []UserSummary
	err := s.DB.Model(&models.Device{}).
		Select("user_id", "platform").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
