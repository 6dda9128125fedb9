package shared

import (
	"github.com/procure-next/internal/http/response"
	"github.com/procure-next/internal/models"

	"github.com/gin-gonic/gin"
)

// GetContextUint 从上下文读取 uint 值并统一处理错误响应。
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "invalid "+key, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "invalid "+key, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, "invalid "+key+" type", nil)
		return 0, false
	}
}

// GetContextUser 从上下文读取认证中间件注入的用户。
func GetContextUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("current_user")
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return nil, false
	}
	user, ok := value.(*models.User)
	if !ok || user == nil {
		RespondError(c, response.CodeInternal, "invalid current_user type", nil)
		return nil, false
	}
	return user, true
}
