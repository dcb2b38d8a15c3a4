package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis keys for request statistics, read back by the health endpoints.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"
)

// ErrorLogSize is how many 5xx entries the error log keeps.
const ErrorLogSize = 50

// HealthMarker records request stats in Redis (skip /, /health*, /reset, favicon).
// A nil client disables it. Stats are best effort and never fail a request.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if rdb == nil || path == "/" || path == "/reset" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		lastReq, _ := json.Marshal(map[string]interface{}{
			"time":     start,
			"ip":       c.IP(),
			"path":     c.OriginalURL(),
			"method":   c.Method(),
			"trace_id": GetTraceID(c),
		})
		ctx := context.Background()
		if _, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, KeyLastReq, lastReq, 0)
			p.Incr(ctx, KeyReqTotal)
			return nil
		}); err != nil {
			log.Debug().Err(err).Msg("health marker unavailable")
		}

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		ms := time.Since(start).Milliseconds()
		_, _ = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Incr(ctx, KeyResCount)
			p.IncrByFloat(ctx, KeyResTime, float64(ms))
			if status >= fiber.StatusInternalServerError {
				p.Incr(ctx, KeyReqErrors)
				entry, _ := json.Marshal(map[string]interface{}{
					"time":     time.Now(),
					"path":     c.OriginalURL(),
					"method":   c.Method(),
					"status":   status,
					"message":  errorMessage(err),
					"trace_id": GetTraceID(c),
				})
				p.LPush(ctx, KeyErrorLog, entry)
				p.LTrim(ctx, KeyErrorLog, 0, ErrorLogSize-1)
			}
			return nil
		})
		return err
	}
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
