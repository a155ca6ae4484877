package models

import "time"

// Device 儲存使用者設備與 Expo Push Token 的綁定
// 每個使用者最多一筆紀錄，重新註冊時就地覆寫
type Device struct {
	UserID         string    `gorm:"primaryKey;size:255" json:"user_id"`                  // 使用者ID（Bearer 值）
	ExpoPushToken  string    `gorm:"size:255;index" json:"expo_push_token"`               // Expo Push Token
	Platform       string    `gorm:"size:50" json:"platform"`                             // 平台: ios, android
	AppVersion     string    `gorm:"size:50" json:"app_version"`                          // App 版本
	DeviceName     string    `gorm:"size:255" json:"device_name"`                         // 設備名稱
	DeviceModel    string    `gorm:"size:255" json:"device_model"`                        // 設備型號
	RegisteredAt   time.Time `json:"registered_at"`                                       // 首次註冊時間，建立後不再變動
	LastActive     time.Time `json:"last_active"`                                         // 最後活動時間
	TokenUpdatedAt time.Time `json:"token_updated_at"`                                    // Token 更新時間
}
