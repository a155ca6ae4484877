package services

import (
	"time"

	"push_API/models"
)

const (
	// MaxRecentErrors 超過此數量的近期錯誤即判定 token 不可信
	MaxRecentErrors = 3
	// InactiveAfterDays 超過此天數未活動即判定設備閒置
	InactiveAfterDays = 30
)

// 判定結果的 reason 值
const (
	ReasonDeviceNotRegistered = "device_not_registered"
	ReasonNoTokenInDB         = "no_token_in_db"
	ReasonTokenChanged        = "token_changed"
	ReasonTooManyErrors       = "too_many_errors"
	ReasonDeviceInactive      = "device_inactive"
)

// TokenVerdict token 健康度的判定結果
type TokenVerdict struct {
	Valid        bool
	Reason       string
	Message      string
	CurrentToken string
	RecentErrors int64
	ExpoValid    bool
}

// EvaluateTokenHealth 綜合設備狀態、近期錯誤數與 token 語法判定健康度
// 條件彼此不互斥，嚴格依序判定，先符合者先回傳：
// 註冊狀態 → token 存在 → token 一致 → 錯誤率 → 活躍度
// token 缺漏或過期時錯誤率沒有分析意義，所以註冊相關檢查排在前面
// Expo 語法有效性只作為 valid 結果的附帶資訊，不影響判定
func EvaluateTokenHealth(device *models.Device, requestedToken string, recentErrors int64, now time.Time) TokenVerdict {
	if device == nil {
		return TokenVerdict{Reason: ReasonDeviceNotRegistered, Message: "設備未註冊"}
	}

	if device.ExpoPushToken == "" {
		return TokenVerdict{Reason: ReasonNoTokenInDB, Message: "資料庫中沒有 Token"}
	}

	if device.ExpoPushToken != requestedToken {
		return TokenVerdict{
			Reason:       ReasonTokenChanged,
			Message:      "Token 已更新",
			CurrentToken: device.ExpoPushToken,
		}
	}

	if recentErrors > MaxRecentErrors {
		return TokenVerdict{
			Reason:       ReasonTooManyErrors,
			Message:      "偵測到過多投遞錯誤",
			RecentErrors: recentErrors,
		}
	}

	// 剛好滿 30 天仍視為活躍，嚴格超過才算閒置
	if device.LastActive.Before(now.AddDate(0, 0, -InactiveAfterDays)) {
		return TokenVerdict{
			Reason:  ReasonDeviceInactive,
			Message: "設備超過 30 天未活動",
		}
	}

	return TokenVerdict{
		Valid:        true,
		Message:      "Token 有效",
		RecentErrors: recentErrors,
		ExpoValid:    IsValidExpoToken(requestedToken),
	}
}
