package services

import (
	"sync"
	"time"

	"push_API/models"
	"push_API/utils"

	sdk "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// WelcomeDelay 註冊回應送出後到歡迎通知發送之間的延遲
const WelcomeDelay = time.Second

// 歡迎通知的固定內容
const (
	WelcomeTitle = "設備註冊成功"
	WelcomeBody  = "您現在可以接收推播通知"
)

type welcomeJob struct {
	userID string
	token  string
}

// WelcomeScheduler 在背景發送註冊後的歡迎通知
// 取代在請求流程中起計時器的做法：工作排入佇列後由單一 worker
// 延遲發送，結果只寫入通知紀錄，不回報給原本的 HTTP 呼叫端
// 佇列滿或行程結束時工作直接丟棄，本來就是盡力而為
type WelcomeScheduler struct {
	expo          *ExpoService
	notifications *NotificationService
	delay         time.Duration
	jobs          chan welcomeJob
	wg            sync.WaitGroup
}

// NewWelcomeScheduler 建立排程器並啟動 worker
func NewWelcomeScheduler(expo *ExpoService, notifications *NotificationService, delay time.Duration) *WelcomeScheduler {
	w := &WelcomeScheduler{
		expo:          expo,
		notifications: notifications,
		delay:         delay,
		jobs:          make(chan welcomeJob, 64),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Schedule 排入一筆歡迎通知，不阻塞呼叫端
func (w *WelcomeScheduler) Schedule(userID, token string) {
	select {
	case w.jobs <- welcomeJob{userID: userID, token: token}:
	default:
		utils.ErrorLogger.Errorf("歡迎通知佇列已滿，捨棄 user=%s", userID)
	}
}

// Close 停止接收新工作並等待佇列內的工作完成
func (w *WelcomeScheduler) Close() {
	close(w.jobs)
	w.wg.Wait()
}

func (w *WelcomeScheduler) run() {
	defer w.wg.Done()
	for job := range w.jobs {
		time.Sleep(w.delay)
		w.deliver(job)
	}
}

func (w *WelcomeScheduler) deliver(job welcomeJob) {
	result := w.expo.Send([]*sdk.PushMessage{{
		To:    []sdk.ExponentPushToken{sdk.ExponentPushToken(job.token)},
		Title: WelcomeTitle,
		Body:  WelcomeBody,
		Data:  map[string]string{"type": "welcome"},
	}})

	entry := NotificationData{
		UserID: job.userID,
		Title:  WelcomeTitle,
		Body:   WelcomeBody,
		Data:   map[string]string{"type": "welcome"},
		Type:   models.TypeWelcome,
		Status: models.StatusSent,
	}

	switch {
	case len(result.Tickets) > 0:
		ticket := result.Tickets[0]
		entry.TicketID = TicketID(&ticket)
		if ticket.Status != sdk.SuccessStatus {
			entry.Status = models.StatusError
			entry.ErrorMsg = ticket.Message
		}
	case result.FailCount > 0:
		entry.Status = models.StatusError
		entry.ErrorMsg = "Expo 發送失敗"
	}

	if _, err := w.notifications.Log(entry); err != nil {
		utils.ErrorLogger.Errorf("歡迎通知紀錄寫入失敗 user=%s: %v", job.userID, err)
	}
}
