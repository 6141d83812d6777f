package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// IdempotencyRecord 已完成请求的响应快照；Pending 表示同一 key 的请求正在处理
type IdempotencyRecord struct {
	Pending     bool   `json:"pending"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// IdempotencyStore 幂等键存储
type IdempotencyStore interface {
	// Reserve 占用 key，已被占用时返回 false
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Load(ctx context.Context, key string) (*IdempotencyRecord, error)
	Save(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// RedisIdempotencyStore 基于 Redis 的幂等键存储
type RedisIdempotencyStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisIdempotencyStore(rdb *redis.Client, prefix string) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, prefix: prefix}
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	pending, _ := json.Marshal(IdempotencyRecord{Pending: true})
	return s.rdb.SetNX(ctx, s.prefix+key, pending, ttl).Result()
}

func (s *RedisIdempotencyStore) Load(ctx context.Context, key string) (*IdempotencyRecord, error) {
	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec IdempotencyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisIdempotencyStore) Save(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.prefix+key, data, ttl).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// fingerprint 请求体的 SHA-256，同一个 key 只能对应同一份请求体
func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Idempotency 带 Idempotency-Key 的重试请求直接重放第一次的响应。
// 5xx 响应和 panic 都会释放 key，允许客户端用同一个 key 重试；存储不可用时降级为直接处理。
func Idempotency(store IdempotencyStore, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		scoped := c.Request.Method + ":" + c.FullPath() + ":" + key
		ctx := c.Request.Context()

		body, err := c.GetRawData()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"code":    42200,
				"message": "failed to read request body",
				"data":    nil,
			})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		digest := fingerprint(body)

		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			logger.Warn("Idempotency store unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			rec, err := store.Load(ctx, scoped)
			if err != nil {
				logger.Warn("Idempotency load failed", zap.String("key", key), zap.Error(err))
				c.Next()
				return
			}
			if rec == nil || rec.Pending {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"code":    40901,
					"message": "a request with this Idempotency-Key is still in progress",
					"data":    nil,
				})
				return
			}
			if rec.Fingerprint != digest {
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
					"code":    42203,
					"message": "Idempotency-Key was already used with a different request body",
					"data":    nil,
				})
				return
			}
			c.Header(HeaderReplayed, "true")
			c.Data(rec.Status, rec.ContentType, rec.Body)
			c.Abort()
			return
		}

		release := func() {
			if err := store.Release(context.WithoutCancel(ctx), scoped); err != nil {
				logger.Warn("Idempotency release failed", zap.String("key", key), zap.Error(err))
			}
		}
		finished := false
		defer func() {
			// handler panic：恢复中间件会返回 500，key 不能一直保持 pending
			if !finished {
				release()
			}
		}()

		w := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()
		finished = true

		status := w.Status()
		if status >= 500 {
			release()
			return
		}
		rec := IdempotencyRecord{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
			Fingerprint: digest,
		}
		if err := store.Save(context.WithoutCancel(ctx), scoped, rec, ttl); err != nil {
			logger.Warn("Idempotency save failed", zap.String("key", key), zap.Error(err))
		}
	}
}
