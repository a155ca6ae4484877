package controllers

import (
	"net/http"
	"time"

	"push_API/services"
	"push_API/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	deviceService       *services.DeviceService
	notificationService *services.NotificationService
	welcomeScheduler    *services.WelcomeScheduler
)

// SetupDeviceController 初始化設備控制器
func SetupDeviceController(db *gorm.DB, scheduler *services.WelcomeScheduler) {
	if db == nil {
		deviceService = nil
		notificationService = nil
		welcomeScheduler = nil
		return
	}
	deviceService = services.NewDeviceService(db)
	notificationService = services.NewNotificationService(db)
	welcomeScheduler = scheduler
}

// RegisterDeviceRequest 註冊設備請求結構
type RegisterDeviceRequest struct {
	ExpoPushToken      string `json:"expoPushToken"`
	Platform           string `json:"platform"`
	AppVersion         string `json:"appVersion"`
	DeviceName         string `json:"deviceName"`
	DeviceModel        string `json:"deviceModel"`
	SilentRegistration bool   `json:"silentRegistration"`
}

// VerifyTokenRequest 驗證 Token 請求結構
type VerifyTokenRequest struct {
	ExpoPushToken string `json:"expoPushToken"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func respondInternalError(c *gin.Context, message string, err error) {
	utils.ErrorLogger.Errorf("%s: %v", message, err)
	respondError(c, http.StatusInternalServerError, message)
}

func userIDFromContext(c *gin.Context) string {
	return c.GetString("user_id")
}

// RegisterDevice 註冊設備
// @Summary 註冊設備
// @Description 註冊新設備或就地更新既有設備，必要時在背景發送歡迎通知
// @Tags 設備
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token（使用者ID）"
// @Param request body RegisterDeviceRequest true "註冊請求"
// @Success 200 {object} map[string]interface{} "註冊成功"
// @Failure 400 {object} map[string]string "Token 缺漏或格式錯誤"
// @Failure 500 {object} map[string]string "內部錯誤"
// @Router /api/register [post]
// @Security BearerAuth
func RegisterDevice(c *gin.Context) {
	userID := userIDFromContext(c)

	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.ExpoPushToken == "" {
		respondError(c, http.StatusBadRequest, "expoPushToken 為必填")
		return
	}
	if !services.IsValidExpoToken(req.ExpoPushToken) {
		respondError(c, http.StatusBadRequest, "無效的 Expo Token")
		return
	}

	if req.Platform == "" {
		req.Platform = "unknown"
	}
	if req.AppVersion == "" {
		req.AppVersion = "1.1.0"
	}
	if req.DeviceName == "" {
		req.DeviceName = "Unknown Device"
	}
	if req.DeviceModel == "" {
		req.DeviceModel = "Unknown Model"
	}

	existing, err := deviceService.FindByUser(userID)
	if err != nil {
		respondInternalError(c, "設備註冊失敗", err)
		return
	}
	if existing == nil {
		// 同一實體設備可能換了使用者ID重新註冊，退而依 token 比對
		existing, err = deviceService.FindByToken(req.ExpoPushToken)
		if err != nil {
			respondInternalError(c, "設備註冊失敗", err)
			return
		}
	}

	isUpdate := existing != nil
	isSameToken := existing != nil &&
		existing.ExpoPushToken == req.ExpoPushToken &&
		existing.UserID == userID

	if _, err := deviceService.Upsert(userID, services.DeviceData{
		ExpoPushToken: req.ExpoPushToken,
		Platform:      req.Platform,
		AppVersion:    req.AppVersion,
		DeviceName:    req.DeviceName,
		DeviceModel:   req.DeviceModel,
	}); err != nil {
		respondInternalError(c, "設備註冊失敗", err)
		return
	}

	// 歡迎通知不等待結果，回應先行送出
	if !req.SilentRegistration && !isSameToken {
		welcomeScheduler.Schedule(userID, req.ExpoPushToken)
	}

	message := "設備已註冊"
	if isUpdate {
		message = "設備已更新"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     message,
		"userId":      userID,
		"isUpdate":    isUpdate,
		"isSameToken": isSameToken,
	})
}

// VerifyToken 驗證 Token 健康度
// @Summary 驗證 Token
// @Description 綜合設備狀態、近期投遞錯誤與 token 語法回傳信任判定
// @Tags 設備
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token（使用者ID）"
// @Param request body VerifyTokenRequest true "驗證請求"
// @Success 200 {object} map[string]interface{} "判定結果"
// @Failure 400 {object} map[string]string "Token 缺漏"
// @Failure 500 {object} map[string]string "內部錯誤"
// @Router /api/verify-token [post]
// @Security BearerAuth
func VerifyToken(c *gin.Context) {
	userID := userIDFromContext(c)

	var req VerifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.ExpoPushToken == "" {
		respondError(c, http.StatusBadRequest, "expoPushToken 為必填")
		return
	}

	device, err := deviceService.FindByUser(userID)
	if err != nil {
		respondInternalError(c, "Token 驗證失敗", err)
		return
	}

	var recentErrors int64
	if device != nil {
		recentErrors, err = notificationService.RecentErrorCount(userID)
		if err != nil {
			respondInternalError(c, "Token 驗證失敗", err)
			return
		}
	}

	verdict := services.EvaluateTokenHealth(device, req.ExpoPushToken, recentErrors, time.Now())

	if !verdict.Valid {
		resp := gin.H{
			"valid":   false,
			"reason":  verdict.Reason,
			"message": verdict.Message,
		}
		switch verdict.Reason {
		case services.ReasonTokenChanged:
			resp["currentToken"] = verdict.CurrentToken
		case services.ReasonTooManyErrors:
			resp["recentErrors"] = verdict.RecentErrors
		case services.ReasonDeviceInactive:
			resp["lastActive"] = device.LastActive
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":            true,
		"token_matches":    true,
		"is_active":        true,
		"last_active":      device.LastActive,
		"token_updated_at": device.TokenUpdatedAt,
		"expo_valid":       verdict.ExpoValid,
		"recent_errors":    verdict.RecentErrors,
		"message":          verdict.Message,
	})
}

// GetTokenInfo 取得 Token 資訊
// @Summary Token 資訊
// @Description 回傳遮罩後的 token 預覽與設備資料
// @Tags 設備
// @Produce json
// @Param Authorization header string true "Bearer token（使用者ID）"
// @Success 200 {object} map[string]interface{} "查詢成功"
// @Failure 404 {object} map[string]string "設備不存在"
// @Failure 500 {object} map[string]string "內部錯誤"
// @Router /api/token-info [get]
// @Security BearerAuth
func GetTokenInfo(c *gin.Context) {
	device, err := deviceService.FindByUser(userIDFromContext(c))
	if err != nil {
		respondInternalError(c, "設備資訊查詢失敗", err)
		return
	}
	if device == nil {
		respondError(c, http.StatusNotFound, "設備不存在")
		return
	}

	var tokenPreview string
	if device.ExpoPushToken != "" {
		preview := device.ExpoPushToken
		if len(preview) > 20 {
			preview = preview[:20]
		}
		tokenPreview = preview + "..."
	}

	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token_info": gin.H{
			"has_token":               device.ExpoPushToken != "",
			"token_preview":           tokenPreview,
			"platform":                device.Platform,
			"app_version":             device.AppVersion,
			"device_name":             device.DeviceName,
			"device_model":            device.DeviceModel,
			"registered_at":           device.RegisteredAt,
			"last_active":             device.LastActive,
			"token_updated_at":        device.TokenUpdatedAt,
			"days_since_registration": int(now.Sub(device.RegisteredAt).Hours() / 24),
			"hours_since_active":      int(now.Sub(device.LastActive).Hours()),
		},
	})
}

// UnregisterDevice 刪除設備
// @Summary 刪除設備
// @Description 刪除設備與該使用者的所有通知紀錄
// @Tags 設備
// @Produce json
// @Param Authorization header string true "Bearer token（使用者ID）"
// @Success 200 {object} map[string]interface{} "刪除成功"
// @Failure 500 {object} map[string]string "內部錯誤"
// @Router /api/unregister [delete]
// @Security BearerAuth
func UnregisterDevice(c *gin.Context) {
	if err := deviceService.Delete(userIDFromContext(c)); err != nil {
		respondInternalError(c, "設備刪除失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "設備與通知紀錄已刪除"})
}

// Me 取得目前使用者與設備
// @Summary 目前使用者
// @Description 回傳 Bearer 對應的使用者ID與設備（可能為 null）
// @Tags 設備
// @Produce json
// @Param Authorization header string true "Bearer token（使用者ID）"
// @Success 200 {object} map[string]interface{} "查詢成功"
// @Router /api/me [get]
// @Security BearerAuth
func Me(c *gin.Context) {
	userID := userIDFromContext(c)

	device, err := deviceService.FindByUser(userID)
	if err != nil {
		respondInternalError(c, "查詢失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "userId": userID, "device": device})
}

// GetUsers 取得使用者清單
// @Summary 使用者清單
// @Description 回傳所有已註冊的使用者ID與平台，不需認證
// @Tags 設備
// @Produce json
// @Success 200 {object} map[string]interface{} "查詢成功"
// @Router /api/users [get]
func GetUsers(c *gin.Context) {
	users, err := deviceService.ListUsers()
	if err != nil {
		respondInternalError(c, "使用者清單查詢失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}
