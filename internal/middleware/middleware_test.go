package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/testutil"
	"github.com/tonysodeep/ConnectBakeryIS/internal/middleware"
	"go.uber.org/zap"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]middleware.IdempotencyRecord
	down    bool
}

func newMemStore() *memStore {
	return &memStore{records: map[string]middleware.IdempotencyRecord{}}
}

func (s *memStore) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return false, errors.New("connection refused")
	}
	if _, ok := s.records[key]; ok {
		return false, nil
	}
	s.records[key] = middleware.IdempotencyRecord{Pending: true}
	return true, nil
}

func (s *memStore) Load(_ context.Context, key string) (*middleware.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *memStore) Save(_ context.Context, key string, rec middleware.IdempotencyRecord, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = rec
	return nil
}

func (s *memStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func idempotentRouter(store middleware.IdempotencyStore, status *int, calls *int) *gin.Engine {
	r := testutil.SetupRouter()
	r.POST("/invoices", middleware.Idempotency(store, time.Hour, zap.NewNop()), func(c *gin.Context) {
		*calls++
		c.JSON(*status, gin.H{"code": 0, "message": "success", "data": gin.H{"id": *calls}})
	})
	return r
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	store := newMemStore()
	status, calls := http.StatusCreated, 0
	r := idempotentRouter(store, &status, &calls)
	key := map[string]string{middleware.HeaderIdempotencyKey: "k-1"}

	first := testutil.DoRequest(r, http.MethodPost, "/invoices", `{}`, key)
	second := testutil.DoRequest(r, http.MethodPost, "/invoices", `{}`, key)

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status = %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body %q != %q", second.Body.String(), first.Body.String())
	}
	if second.Header().Get(middleware.HeaderReplayed) != "true" {
		t.Fatalf("replay should be marked")
	}
	if first.Header().Get(middleware.HeaderReplayed) != "" {
		t.Fatalf("first response should not be marked")
	}
}

func TestIdempotencyWithoutKey(t *testing.T) {
	store := newMemStore()
	status, calls := http.StatusCreated, 0
	r := idempotentRouter(store, &status, &calls)

	testutil.DoRequest(r, http.MethodPost, "/invoices", `{}`, nil)
	testutil.DoRequest(r, http.MethodPost, "/invoices", `{}`, nil)
	if calls != 2 {
		t.Fatalf("handler ran %d times, want 2", calls)
	}
}

func TestIdempotencyPendingKeyConflicts(t *testing.T) {
	store := newMemStore()
	store.records["POST:/invoices:k-2"] = middleware.IdempotencyRecord{Pending: true}
	status, calls := http.StatusCreated, 0
	r := idempotentRouter(store, &status, &calls)

	w := testutil.DoRequest(r, http.MethodPost, "/invoices", `{}`, map[string]string{middleware.HeaderIdempotencyKey: "k-2"})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if calls != 0 {
		t.Fatalf("handler should not run")
	}
}

func TestIdempotencyServerErrorReleasesKey(t *testing.T) {
	store := newMemStore()
	status, calls := http.StatusInternalServerError, 0
	r := idempotentRouter(store, &status, &calls)
	key := map[string]string{middleware.HeaderIdempotencyKey: "k-3"}

	testutil.DoRequest(r, http.MethodPost, "/invoices", `{}`, key)
	if len(store.records) != 0 {
		t.Fatalf("5xx response should not be kept")
	}
	status = http.StatusCreated
	w := testutil.DoRequest(r, http.MethodPost, "/invoices", `{}`, key)
	if w.Code != http.StatusCreated || calls != 2 {
		t.Fatalf("retry status = %d calls = %d", w.Code, calls)
	}
}

func TestIdempotencyPanicReleasesKey(t *testing.T) {
	store := newMemStore()
	calls := 0
	r := testutil.SetupRouter()
	r.POST("/receipts", middleware.Idempotency(store, time.Hour, zap.NewNop()), func(c *gin.Context) {
		calls++
		if calls == 1 {
			panic("database connection lost")
		}
		c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "success", "data": gin.H{"id": calls}})
	})
	key := map[string]string{middleware.HeaderIdempotencyKey: "k-5"}

	first := testutil.DoRequest(r, http.MethodPost, "/receipts", `{}`, key)
	if first.Code != http.StatusInternalServerError {
		t.Fatalf("first status = %d, want 500", first.Code)
	}
	if len(store.records) != 0 {
		t.Fatalf("key should be released after a panic, got %v", store.records)
	}
	second := testutil.DoRequest(r, http.MethodPost, "/receipts", `{}`, key)
	if second.Code != http.StatusCreated || calls != 2 {
		t.Fatalf("retry status = %d calls = %d", second.Code, calls)
	}
}

func TestIdempotencyDifferentBodyRejected(t *testing.T) {
	store := newMemStore()
	status, calls := http.StatusCreated, 0
	r := idempotentRouter(store, &status, &calls)
	key := map[string]string{middleware.HeaderIdempotencyKey: "k-6"}

	testutil.DoRequest(r, http.MethodPost, "/invoices", `{"invoice": {"code": "HD-1"}}`, key)
	w := testutil.DoRequest(r, http.MethodPost, "/invoices", `{"invoice": {"code": "HD-2"}}`, key)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if w.Header().Get(middleware.HeaderReplayed) != "" {
		t.Fatalf("mismatched body must not be replayed")
	}
}

func TestIdempotencyHandlerSeesBody(t *testing.T) {
	store := newMemStore()
	r := testutil.SetupRouter()
	r.POST("/echo", middleware.Idempotency(store, time.Hour, zap.NewNop()), func(c *gin.Context) {
		raw, _ := c.GetRawData()
		c.String(http.StatusOK, string(raw))
	})
	w := testutil.DoRequest(r, http.MethodPost, "/echo", `{"a":1}`, map[string]string{middleware.HeaderIdempotencyKey: "k-7"})
	if w.Body.String() != `{"a":1}` {
		t.Fatalf("handler body = %q", w.Body.String())
	}
}

func TestIdempotencyStoreDownPassesThrough(t *testing.T) {
	store := newMemStore()
	store.down = true
	status, calls := http.StatusCreated, 0
	r := idempotentRouter(store, &status, &calls)
	key := map[string]string{middleware.HeaderIdempotencyKey: "k-4"}

	testutil.DoRequest(r, http.MethodPost, "/invoices", `{}`, key)
	testutil.DoRequest(r, http.MethodPost, "/invoices", `{}`, key)
	if calls != 2 {
		t.Fatalf("handler ran %d times, want 2", calls)
	}
}

func TestJWTAuth(t *testing.T) {
	r := testutil.SetupRouter()
	r.GET("/me", middleware.JWTAuth(testutil.JWTSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "name": c.GetString("user_name")})
	})

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing header", nil, http.StatusUnauthorized},
		{"not bearer", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized},
		{"garbage token", testutil.Bearer("not-a-jwt"), http.StatusUnauthorized},
		{"empty bearer", map[string]string{"Authorization": "Bearer  "}, http.StatusUnauthorized},
		{"token without uid", testutil.Bearer(testutil.GenerateTestToken("", "Linh", nil)), http.StatusUnauthorized},
		{"valid token", testutil.Bearer(testutil.GenerateTestToken("u-7", "Linh", []string{"storekeeper"})), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.DoRequest(r, http.MethodGet, "/me", nil, tt.headers)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusOK {
				resp := testutil.ParseResponse(t, w)
				if resp["user_id"] != "u-7" || resp["name"] != "Linh" {
					t.Fatalf("claims not propagated: %v", resp)
				}
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := testutil.SetupRouter()
	r.Use(middleware.RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := testutil.DoRequest(r, http.MethodGet, "/ping", nil, nil)
	if got := w.Header().Get("X-Request-ID"); got == "" || got != w.Body.String() {
		t.Fatalf("generated request id %q, body %q", got, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodGet, "/ping", nil, map[string]string{"X-Request-ID": "abc"})
	if w.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("incoming request id should be kept")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := testutil.SetupRouter()
	r.Use(middleware.CORS())
	r.POST("/invoices", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := testutil.DoRequest(r, http.MethodOptions, "/invoices", nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if allow := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(allow, middleware.HeaderIdempotencyKey) {
		t.Errorf("allowed headers %q should include the idempotency key", allow)
	}
	if expose := w.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(expose, middleware.HeaderReplayed) {
		t.Errorf("exposed headers %q should include the replay marker", expose)
	}
}
