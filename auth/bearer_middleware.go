package auth

import (
	"net/http"
	"strings"

	"push_API/config"

	"github.com/gin-gonic/gin"
)

// extractBearer 取出 Authorization 標頭中的 Bearer 值
// 為相容舊客戶端，沒有 Bearer 前綴時直接使用原始值
func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return authHeader
}

// BearerMiddleware 以 Bearer 值作為使用者識別
// 不做任何密碼學驗證，呼叫端提供什麼就信任什麼
// 若值等於保留的管理員識別字串，附加 is_admin 角色供後續檢查
func BearerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "未提供 Token"})
			c.Abort()
			return
		}

		c.Set("user_id", token)
		c.Set("is_admin", token == config.AdminUserID())

		c.Next()
	}
}

// AdminMiddleware 檢查 BearerMiddleware 附加的管理員角色
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "需要管理員權限"})
			c.Abort()
			return
		}

		c.Next()
	}
}
