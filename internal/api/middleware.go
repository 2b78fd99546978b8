package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unitychat/unitychat/config"
	"github.com/unitychat/unitychat/internal/storage"
	"github.com/unitychat/unitychat/middleware/jwt"
	"github.com/unitychat/unitychat/utils/ratelimit"
)

type MiddlewareManager struct {
	tokenManager *jwt.TokenManager
	redisClient  *storage.RedisClient
	rateLimiter  ratelimit.Limiter
	logger       *zap.Logger
	rateLimitCfg *config.RateLimitConfig
}

func NewMiddlewareManager(
	tokenManager *jwt.TokenManager,
	redisClient *storage.RedisClient,
	logger *zap.Logger,
	rateLimitCfg *config.RateLimitConfig,
) *MiddlewareManager {
	// Fail-open: a Redis outage must not take chat down with it.
	rateLimiter := ratelimit.NewTokenBucketLimiter(redisClient.GetClient(), logger, true)

	return &MiddlewareManager{
		tokenManager: tokenManager,
		redisClient:  redisClient,
		rateLimiter:  rateLimiter,
		logger:       logger,
		rateLimitCfg: rateLimitCfg,
	}
}

func (m *MiddlewareManager) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := m.tokenManager.ParseToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("error", err.Error()),
				zap.String("ip", c.ClientIP()),
			)

			var message string
			switch err {
			case jwt.ErrExpiredToken:
				message = "token has expired"
			case jwt.ErrTokenNotYetValid:
				message = "token not yet valid"
			default:
				message = "invalid token"
			}

			c.JSON(http.StatusUnauthorized, gin.H{"error": message})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("display_name", claims.DisplayName)
		c.Set("is_admin", claims.IsAdmin)

		c.Next()
	}
}

// AdminOnly rejects requests whose token does not carry the admin flag.
// It must run after JWTAuth.
func (m *MiddlewareManager) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "admin privileges required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *MiddlewareManager) RateLimitByEndpoint(endpoint string) gin.HandlerFunc {
	rule := ratelimit.RuleForEndpoint(endpoint, &ratelimit.Config{
		RegisterPerMinute: m.rateLimitCfg.RegisterPerMinute,
		LoginPerMinute:    m.rateLimitCfg.LoginPerMinute,
		MessagePerMinute:  m.rateLimitCfg.MessagePerMinute,
		APIPerMinute:      m.rateLimitCfg.APIPerMinute,
	})

	return func(c *gin.Context) {
		ctx := context.Background()

		// Key on user_id when authenticated, client IP otherwise.
		var key string
		if userID, exists := c.Get("user_id"); exists {
			key = fmt.Sprintf("user:%v:%s", userID, endpoint)
		} else {
			key = fmt.Sprintf("ip:%s:%s", c.ClientIP(), endpoint)
		}

		allowed, err := m.rateLimiter.Allow(ctx, key, rule.Limit, rule.Window)
		if err != nil {
			m.logger.Error("rate limit check failed",
				zap.String("error", err.Error()),
				zap.String("key", key),
				zap.String("endpoint", endpoint),
			)
			if allowed {
				c.Next()
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "rate limit check failed",
				})
				c.Abort()
			}
			return
		}

		if !allowed {
			remaining, _ := m.rateLimiter.GetRemaining(ctx, key, rule.Limit, rule.Window)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(rule.Window.Seconds()),
				"remaining":   remaining,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *MiddlewareManager) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		if userID, exists := c.Get("user_id"); exists {
			fields = append(fields, zap.Any("user_id", userID))
		}

		if statusCode >= 500 {
			m.logger.Error("server error", fields...)
		} else if statusCode >= 400 {
			m.logger.Warn("client error", fields...)
		} else {
			m.logger.Info("request completed", fields...)
		}
	}
}

func (m *MiddlewareManager) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (m *MiddlewareManager) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				m.logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}
