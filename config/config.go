package config

import "os"

type Config struct {
	Server ServerConfig
	Expo   ExpoConfig
	Admin  AdminConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
	DBUrl   string
}

type ExpoConfig struct {
	AccessToken string
}

type AdminConfig struct {
	UserID string
}

var AppConfig *Config

// Load 從環境變數讀取設定，未設定時使用預設值
func Load() {
	AppConfig = &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "3000"),
			GinMode: getEnv("GIN_MODE", "debug"),
			DBUrl:   getEnv("DB_URL", ""),
		},
		Expo: ExpoConfig{
			AccessToken: getEnv("EXPO_ACCESS_TOKEN", ""),
		},
		Admin: AdminConfig{
			UserID: getEnv("ADMIN_USER_ID", "admin"),
		},
	}
}

// AdminUserID 管理員的保留識別字串
func AdminUserID() string {
	if AppConfig == nil {
		return "admin"
	}
	return AppConfig.Admin.UserID
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
