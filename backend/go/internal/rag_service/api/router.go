package api

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// SetupRouter 配置和返回一个 Gin 引擎实例。
// 请求日志与限流由外层 pkg/http.Server 的中间件负责，这里只挂载 Recovery。
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	// 浏览器界面
	r.GET("/", h.Index)
	r.POST("/upload", h.UploadForm)
	r.POST("/ask", h.AskForm)
	r.GET("/healthz", h.Healthz)

	// 使用 v1 版本对 API 进行分组
	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/sessions", h.CreateSession)
		apiV1.POST("/documents", h.UploadDocument)
		apiV1.POST("/query", h.Query)
		apiV1.GET("/history", h.History)
	}

	return r
}
