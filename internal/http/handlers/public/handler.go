package public

import "github.com/procure-next/internal/provider"

// Handler 客户侧 API 处理器入口
// 说明：该处理器仅用于客户（买方）侧接口。
type Handler struct {
	*provider.Container
}

// New 创建客户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
