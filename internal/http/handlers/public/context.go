package public

import (
	handlershared "github.com/procure-next/internal/http/handlers/shared"
	"github.com/procure-next/internal/models"

	"github.com/gin-gonic/gin"
)

func getCurrentUser(c *gin.Context) (*models.User, bool) {
	return handlershared.GetContextUser(c)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}
