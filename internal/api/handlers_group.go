package api

import "Prism/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	MediaHandler *handler.MediaHandler
	AdminHandler *handler.AdminHandler
}
