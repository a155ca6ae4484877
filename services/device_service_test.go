package services

import (
	"testing"
	"time"

	"push_API/models"
	"push_API/testutil"

	"github.com/stretchr/testify/assert"
)

func TestDeviceService_FindByUser_Absent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(db)
	svc := NewDeviceService(db)

	device, err := svc.FindByUser("nobody")
	assert.NoError(t, err)
	assert.Nil(t, device)
}

func TestDeviceService_Upsert_CreatesThenOverwrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(db)
	svc := NewDeviceService(db)

	created, err := svc.Upsert("alice", DeviceData{
		ExpoPushToken: "ExponentPushToken[old]",
		Platform:      "ios",
		AppVersion:    "1.0.0",
		DeviceName:    "iPhone",
		DeviceModel:   "iPhone13,2",
	})
	assert.NoError(t, err)
	assert.False(t, created.RegisteredAt.IsZero())

	registeredAt := created.RegisteredAt
	tokenUpdatedAt := created.TokenUpdatedAt

	time.Sleep(10 * time.Millisecond)

	updated, err := svc.Upsert("alice", DeviceData{
		ExpoPushToken: "ExponentPushToken[new]",
		Platform:      "android",
		AppVersion:    "1.1.0",
		DeviceName:    "Pixel",
		DeviceModel:   "Pixel 7",
	})
	assert.NoError(t, err)

	assert.Equal(t, "ExponentPushToken[new]", updated.ExpoPushToken)
	assert.Equal(t, "android", updated.Platform)
	assert.Equal(t, registeredAt.Unix(), updated.RegisteredAt.Unix())
	assert.True(t, updated.TokenUpdatedAt.After(tokenUpdatedAt))

	var count int64
	db.Model(&models.Device{}).Where("user_id = ?", "alice").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeviceService_Upsert_RefreshesTokenUpdatedAtForSameToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(db)
	svc := NewDeviceService(db)

	first, err := svc.Upsert("bob", DeviceData{ExpoPushToken: "ExponentPushToken[same]"})
	assert.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	// token 值沒變也會刷新 token_updated_at
	second, err := svc.Upsert("bob", DeviceData{ExpoPushToken: "ExponentPushToken[same]"})
	assert.NoError(t, err)
	assert.True(t, second.TokenUpdatedAt.After(first.TokenUpdatedAt))
}

func TestDeviceService_FindByToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(db)
	svc := NewDeviceService(db)

	testutil.CreateTestDevice(t, db, "carol", "ExponentPushToken[carol]")

	device, err := svc.FindByToken("ExponentPushToken[carol]")
	assert.NoError(t, err)
	assert.NotNil(t, device)
	assert.Equal(t, "carol", device.UserID)

	missing, err := svc.FindByToken("ExponentPushToken[unknown]")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeviceService_TouchLastActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(db)
	svc := NewDeviceService(db)

	device := testutil.CreateTestDevice(t, db, "dave", "ExponentPushToken[dave]")
	stale := time.Now().AddDate(0, 0, -10)
	db.Model(device).Update("last_active", stale)

	assert.NoError(t, svc.TouchLastActive("dave"))

	refreshed, err := svc.FindByUser("dave")
	assert.NoError(t, err)
	assert.True(t, refreshed.LastActive.After(stale))
}

func TestDeviceService_Delete_CascadesNotificationLogs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(db)
	svc := NewDeviceService(db)
	notifications := NewNotificationService(db)

	testutil.CreateTestDevice(t, db, "erin", "ExponentPushToken[erin]")
	testutil.CreateTestDevice(t, db, "frank", "ExponentPushToken[frank]")

	for i := 0; i < 3; i++ {
		_, err := notifications.Log(NotificationData{
			UserID: "erin", Title: "t", Body: "b",
			Type: models.TypeSingle, Status: models.StatusSent,
		})
		assert.NoError(t, err)
	}
	_, err := notifications.Log(NotificationData{
		UserID: "frank", Title: "t", Body: "b",
		Type: models.TypeSingle, Status: models.StatusSent,
	})
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete("erin"))

	device, err := svc.FindByUser("erin")
	assert.NoError(t, err)
	assert.Nil(t, device)

	var erinLogs, frankLogs int64
	db.Model(&models.NotificationLog{}).Where("user_id = ?", "erin").Count(&erinLogs)
	db.Model(&models.NotificationLog{}).Where("user_id = ?", "frank").Count(&frankLogs)
	assert.EqualValues(t, 0, erinLogs)
	assert.EqualValues(t, 1, frankLogs)

	// 其他使用者的設備不受影響
	other, err := svc.FindByUser("frank")
	assert.NoError(t, err)
	assert.NotNil(t, other)
}

func TestDeviceService_ListUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(db)
	svc := NewDeviceService(db)

	testutil.CreateTestDevice(t, db, "grace", "ExponentPushToken[grace]")
	testutil.CreateTestDevice(t, db, "heidi", "ExponentPushToken[heidi]")

	users, err := svc.ListUsers()
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	ids := []string{users[0].UserID, users[1].UserID}
	assert.Contains(t, ids, "grace")
	assert.Contains(t, ids, "heidi")
	assert.Equal(t, "ios", users[0].Platform)
}
