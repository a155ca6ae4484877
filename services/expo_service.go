package services

import (
	"regexp"

	"push_API/utils"

	sdk "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// ExpoChunkSize Expo API 單次請求的訊息上限
const ExpoChunkSize = 100

// expo-server-sdk 的 token 格式: ExponentPushToken[...] 或 ExpoPushToken[...]
var expoTokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[[^\]]+\]$`)

// IsValidExpoToken 檢查 token 是否符合 Expo 的格式，純語法檢查不發出請求
func IsValidExpoToken(token string) bool {
	return expoTokenPattern.MatchString(token)
}

// PushResult 彙總一次邏輯發送的結果
// SuccessCount / FailCount 以「批次被傳輸層接受與否」計算，
// 批次內個別 ticket 的錯誤狀態不影響計數
type PushResult struct {
	Tickets      []sdk.PushResponse
	SuccessCount int
	FailCount    int
}

// ExpoService 包裝 Expo 推播服務
type ExpoService struct {
	Client    *sdk.PushClient
	ChunkSize int
}

// NewExpoService 建立新的 Expo 服務
func NewExpoService(accessToken string) *ExpoService {
	return &ExpoService{
		Client: sdk.NewPushClient(&sdk.ClientConfig{
			AccessToken: accessToken,
		}),
		ChunkSize: ExpoChunkSize,
	}
}

// Send 將訊息切成批次後逐批送出
// 單一批次失敗只計入 FailCount，不中斷其餘批次，也不回傳錯誤
func (s *ExpoService) Send(messages []*sdk.PushMessage) *PushResult {
	result := &PushResult{Tickets: make([]sdk.PushResponse, 0, len(messages))}

	for start := 0; start < len(messages); start += s.ChunkSize {
		end := start + s.ChunkSize
		if end > len(messages) {
			end = len(messages)
		}
		chunk := messages[start:end]

		batch := make([]sdk.PushMessage, 0, len(chunk))
		for _, m := range chunk {
			batch = append(batch, *m)
		}

		responses, err := s.Client.PublishMultiple(batch)
		if err != nil {
			result.FailCount += len(chunk)
			utils.ErrorLogger.Errorf("Expo 批次發送失敗 (%d 則): %v", len(chunk), err)
			continue
		}

		result.Tickets = append(result.Tickets, responses...)
		result.SuccessCount += len(chunk)
	}

	return result
}

// TicketID 只在 ticket 狀態為 ok 時回傳其識別碼
func TicketID(ticket *sdk.PushResponse) string {
	if ticket != nil && ticket.Status == sdk.SuccessStatus {
		return ticket.ID
	}
	return ""
}
