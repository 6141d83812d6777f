package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// gin.Context 中由本包写入的键
const (
	CtxRequestID = "request_id"
	CtxUserID    = "user_id"
	CtxUserName  = "user_name"
	CtxRoles     = "roles"
	CtxClaims    = "claims"

	headerRequestID = "X-Request-ID"
)

// Logger 每个请求一条访问日志：5xx 记 Error，4xx 记 Warn。
// 带上 RequestID 分配的 request_id；开启认证时附带 user_id，幂等重放的响应标记 replayed。
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(CtxRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(begin)),
			zap.String("ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if uid := c.GetString(CtxUserID); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if c.Writer.Header().Get(HeaderReplayed) != "" {
			fields = append(fields, zap.Bool("replayed", true))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// CORS 前端直接调用 /api/v1。客户端重试写请求时需要带 Idempotency-Key，
// 并能读到 Idempotent-Replayed 与 X-Request-ID。
func CORS() gin.HandlerFunc {
	allowHeaders := strings.Join([]string{
		"Content-Type", "Accept", "Authorization", "Origin",
		headerRequestID, HeaderIdempotencyKey,
	}, ", ")
	exposeHeaders := strings.Join([]string{headerRequestID, HeaderReplayed, "Content-Disposition"}, ", ")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestID 沿用上游传入的 X-Request-ID，没有则生成一个
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CtxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// JWTClaims 外部签发的访问令牌。本服务只校验不签发。
type JWTClaims struct {
	UserID string   `json:"uid"`
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTAuth 仅在配置了 jwt.secret 时挂到 /api/v1 上。
// 令牌只从 Authorization: Bearer 读取，必须是 HS256；
// 通过后 uid/name/roles 写入上下文，访问日志和业务日志据此记录操作人。
// 角色只做记录，不做按路由的权限判断。
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, 40100, "Authorization is required")
			return
		}

		claims := &JWTClaims{}
		token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		switch {
		case err != nil:
			abortUnauthorized(c, 40102, "Invalid or expired token")
			return
		case !token.Valid || claims.UserID == "":
			abortUnauthorized(c, 40103, "Invalid token claims")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserName, claims.Name)
		c.Set(CtxRoles, claims.Roles)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    code,
		"message": message,
		"data":    nil,
	})
}
