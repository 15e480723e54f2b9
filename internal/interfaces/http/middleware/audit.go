// Package middleware 提供 HTTP 中间件
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"pixgen-ai-api/internal/infrastructure/messaging"
	"pixgen-ai-api/pkg/logger"
)

// AuditConfig 审计配置
type AuditConfig struct {
	// Enabled 是否启用审计
	Enabled bool
	// SkipPaths 跳过审计的路径
	SkipPaths []string
}

// Audit 审计中间件：记录访问日志，配置了 producer 时同步发布到审计流
func Audit(cfg AuditConfig, producer *messaging.Producer) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skipMap := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipMap[path] = true
	}

	return func(c *gin.Context) {
		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		logger.Info(c.Request.Context(), "api request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", duration.Milliseconds(),
			"ip", c.ClientIP(),
			"user_id", c.GetString("user_id"),
			"request_id", c.GetString("request_id"),
			"trace_id", c.GetString("trace_id"),
		)

		if producer != nil {
			msg := &messaging.AuditLogMessage{
				UserID:    c.GetString("user_id"),
				Action:    c.Request.Method + " " + c.FullPath(),
				RequestID: c.GetString("request_id"),
				TraceID:   c.GetString("trace_id"),
				IPAddress: c.ClientIP(),
				Metadata: map[string]interface{}{
					"status":      c.Writer.Status(),
					"duration_ms": duration.Milliseconds(),
				},
			}
			if _, err := producer.PublishAuditLog(c.Request.Context(), msg); err != nil {
				logger.Warn(c.Request.Context(), "audit log publish failed", "error", err.Error())
			}
		}
	}
}
