package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/robert-f-ruff/rules-engine/config"
	"github.com/robert-f-ruff/rules-engine/internal/api/handler"
	"github.com/robert-f-ruff/rules-engine/internal/api/middleware"
)

// 引擎重载会触发外部规则引擎动作，限制每客户端每分钟的触发次数
const (
	reloadRateLimit  = 10
	reloadRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 条件模块
		criteria := v1.Group("/criteria")
		{
			criteria.GET("", h.Criterion.ListCriteria)
			criteria.GET("/:name", h.Criterion.GetCriterion)
			criteria.POST("", h.Criterion.CreateCriterion)
			criteria.PUT("/:name", h.Criterion.UpdateCriterion)
			criteria.DELETE("/:name", h.Criterion.DeleteCriterion)
		}

		// 参数模块
		parameters := v1.Group("/parameters")
		{
			parameters.GET("", h.Parameter.ListParameters)
			parameters.GET("/:name", h.Parameter.GetParameter)
			parameters.POST("", h.Parameter.CreateParameter)
			parameters.PUT("/:name", h.Parameter.UpdateParameter)
			parameters.DELETE("/:name", h.Parameter.DeleteParameter)
		}

		// 动作模块
		actions := v1.Group("/actions")
		{
			actions.GET("", h.Action.ListActions)
			actions.GET("/:name", h.Action.GetAction)
			actions.GET("/:name/parameters", h.Action.GetActionParameterFields)
			actions.POST("", h.Action.CreateAction)
			actions.PUT("/:name", h.Action.UpdateAction)
			actions.DELETE("/:name", h.Action.DeleteAction)
		}

		// 规则模块
		rules := v1.Group("/rules")
		{
			rules.GET("", h.Rule.ListRules)
			rules.GET("/:id", h.Rule.GetRule)
			rules.POST("", h.Rule.CreateRule)
			rules.PUT("/:id", h.Rule.UpdateRule)
			rules.DELETE("/:id", h.Rule.DeleteRule)
		}

		// 引擎模块
		engine := v1.Group("/engine")
		{
			engine.GET("/status", h.Engine.GetStatus)
			engine.POST("/reload", middleware.RateLimit(limiter, reloadRateLimit, reloadRateWindow), h.Engine.Reload)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/rules", h.Export.ExportRules)
		}
	}

	return r
}
