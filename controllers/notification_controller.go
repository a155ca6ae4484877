package controllers

import (
	"net/http"
	"sync"
	"time"

	"push_API/models"
	"push_API/services"

	"github.com/gin-gonic/gin"
	sdk "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

var expoService *services.ExpoService

// SetupNotificationController 初始化通知控制器
// 設備與紀錄服務共用 SetupDeviceController 建立的實例
func SetupNotificationController(expo *services.ExpoService) {
	expoService = expo
}

// SendNotificationRequest 發送通知請求結構
type SendNotificationRequest struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// logSendFailure 發送流程中途出錯時仍要留下一筆 error 紀錄
func logSendFailure(userID, title, body string, data map[string]string, notifType models.NotificationType, cause error) {
	notificationService.Log(services.NotificationData{
		UserID:   userID,
		Title:    title,
		Body:     body,
		Data:     data,
		Type:     notifType,
		Status:   models.StatusError,
		ErrorMsg: cause.Error(),
	})
}

func firstTicket(result *services.PushResult) *sdk.PushResponse {
	if len(result.Tickets) == 0 {
		return nil
	}
	return &result.Tickets[0]
}

// SendToSelf 發送通知給自己的設備
// @Summary 發送通知
// @Description 發送一則通知到呼叫者已註冊的設備
// @Tags 通知
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token（使用者ID）"
// @Param request body SendNotificationRequest true "通知內容"
// @Success 200 {object} map[string]interface{} "發送成功"
// @Failure 400 {object} map[string]string "title 或 body 缺漏"
// @Failure 404 {object} map[string]string "設備未註冊"
// @Failure 500 {object} map[string]string "內部錯誤"
// @Router /api/send [post]
// @Security BearerAuth
func SendToSelf(c *gin.Context) {
	userID := userIDFromContext(c)

	var req SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" || req.Body == "" {
		respondError(c, http.StatusBadRequest, "title 和 body 為必填")
		return
	}

	device, err := deviceService.FindByUser(userID)
	if err != nil {
		respondInternalError(c, "通知發送失敗", err)
		return
	}
	if device == nil {
		respondError(c, http.StatusNotFound, "設備未註冊")
		return
	}

	if err := deviceService.TouchLastActive(userID); err != nil {
		logSendFailure(userID, req.Title, req.Body, req.Data, models.TypeSingle, err)
		respondInternalError(c, "通知發送失敗", err)
		return
	}

	// 一律發送到資料庫內的 token，不採用請求附帶的值
	result := expoService.Send([]*sdk.PushMessage{{
		To:    []sdk.ExponentPushToken{sdk.ExponentPushToken(device.ExpoPushToken)},
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	}})

	ticket := firstTicket(result)

	if _, err := notificationService.Log(services.NotificationData{
		UserID:   userID,
		Title:    req.Title,
		Body:     req.Body,
		Data:     req.Data,
		Type:     models.TypeSingle,
		Status:   models.StatusSent,
		TicketID: services.TicketID(ticket),
	}); err != nil {
		respondInternalError(c, "通知發送失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "通知已發送",
		"ticket":  ticket,
	})
}

// TestToken 發送測試通知
// @Summary 測試通知
// @Description 發送固定內容的測試通知以確認 token 可用
// @Tags 通知
// @Produce json
// @Param Authorization header string true "Bearer token（使用者ID）"
// @Success 200 {object} map[string]interface{} "發送成功"
// @Failure 404 {object} map[string]string "設備未註冊"
// @Failure 500 {object} map[string]string "內部錯誤"
// @Router /api/test-token [post]
// @Security BearerAuth
func TestToken(c *gin.Context) {
	userID := userIDFromContext(c)

	device, err := deviceService.FindByUser(userID)
	if err != nil {
		respondInternalError(c, "測試通知發送失敗", err)
		return
	}
	if device == nil {
		respondError(c, http.StatusNotFound, "設備未註冊")
		return
	}

	const (
		testTitle = "測試通知"
		testBody  = "這是確認 token 可用的測試通知"
	)
	timestamp := time.Now().Format(time.RFC3339)

	result := expoService.Send([]*sdk.PushMessage{{
		To:    []sdk.ExponentPushToken{sdk.ExponentPushToken(device.ExpoPushToken)},
		Title: testTitle,
		Body:  testBody,
		Data:  map[string]string{"type": "test", "timestamp": timestamp},
	}})

	ticket := firstTicket(result)

	if _, err := notificationService.Log(services.NotificationData{
		UserID:   userID,
		Title:    testTitle,
		Body:     testBody,
		Data:     map[string]string{"type": "test"},
		Type:     models.TypeTest,
		Status:   models.StatusSent,
		TicketID: services.TicketID(ticket),
	}); err != nil {
		respondInternalError(c, "測試通知發送失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "測試通知已發送",
		"ticket":    ticket,
		"timestamp": timestamp,
	})
}

// Broadcast 廣播通知給所有設備
// @Summary 廣播通知
// @Description 發送通知給所有 token 格式有效的設備，只記錄一筆彙總紀錄
// @Tags 通知
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token（管理員）"
// @Param request body SendNotificationRequest true "通知內容"
// @Success 200 {object} map[string]interface{} "廣播統計"
// @Failure 400 {object} map[string]string "title 或 body 缺漏"
// @Failure 403 {object} map[string]string "需要管理員權限"
// @Failure 500 {object} map[string]string "內部錯誤"
// @Router /api/broadcast [post]
// @Security BearerAuth
func Broadcast(c *gin.Context) {
	var req SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" || req.Body == "" {
		respondError(c, http.StatusBadRequest, "title 和 body 為必填")
		return
	}

	users, err := deviceService.ListUsers()
	if err != nil {
		respondInternalError(c, "廣播失敗", err)
		return
	}

	// 並行解析設備，全部完成後才往下走，順序無關緊要
	devices := make([]*models.Device, len(users))
	var wg sync.WaitGroup
	for i, user := range users {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			device, err := deviceService.FindByUser(userID)
			if err == nil {
				devices[i] = device
			}
		}(i, user.UserID)
	}
	wg.Wait()

	data := make(map[string]string, len(req.Data)+1)
	for k, v := range req.Data {
		data[k] = v
	}
	data["broadcast"] = "true"

	messages := make([]*sdk.PushMessage, 0, len(devices))
	for _, device := range devices {
		if device == nil || !services.IsValidExpoToken(device.ExpoPushToken) {
			continue
		}
		messages = append(messages, &sdk.PushMessage{
			To:    []sdk.ExponentPushToken{sdk.ExponentPushToken(device.ExpoPushToken)},
			Sound: "default",
			Title: req.Title,
			Body:  req.Body,
			Data:  data,
		})
	}

	result := expoService.Send(messages)

	// 廣播只留一筆彙總紀錄，不逐一記錄每個收件者
	if _, err := notificationService.Log(services.NotificationData{
		UserID: userIDFromContext(c),
		Title:  req.Title,
		Body:   req.Body,
		Data:   req.Data,
		Type:   models.TypeBroadcast,
		Status: models.StatusSent,
	}); err != nil {
		respondInternalError(c, "廣播失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"successCount": result.SuccessCount,
			"failCount":    result.FailCount,
			"tickets":      len(result.Tickets),
		},
	})
}

// History 查詢最近的發送紀錄
// @Summary 發送紀錄
// @Description 依發送時間由新到舊回傳最近 20 筆紀錄
// @Tags 通知
// @Produce json
// @Param Authorization header string true "Bearer token（管理員）"
// @Success 200 {object} map[string]interface{} "查詢成功"
// @Failure 403 {object} map[string]string "需要管理員權限"
// @Failure 500 {object} map[string]string "內部錯誤"
// @Router /api/history [get]
// @Security BearerAuth
func History(c *gin.Context) {
	logs, err := notificationService.History(services.HistoryLimit)
	if err != nil {
		respondInternalError(c, "歷史紀錄查詢失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "history": logs})
}
