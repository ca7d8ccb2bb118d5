package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/haulman/internal/model"
	"github.com/hitoshi/haulman/internal/token"
)

func tinyLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(0.01), // テスト中に補充されない程度に遅く
		GeneralBurst:    2,
		LoginRate:       rate.Limit(0.01),
		LoginBurst:      1,
		CleanupInterval: time.Minute,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_General_BlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(tinyLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/shipments", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/shipments", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After")
	}
}

func TestRateLimiter_General_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(tinyLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	// 1つ目のアドレスを使い切る
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// 別アドレスは影響を受けない
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", w.Code)
	}
}

func TestRateLimiter_General_AuthenticatedKeyIsPersonID(t *testing.T) {
	rl := NewRateLimiter(tinyLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	// 同一アドレスでも別人のセッションなら別キーになる
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req = req.WithContext(ContextWithClaims(req.Context(),
			&token.Claims{PersonID: "person-a", Role: model.RoleEmployee}))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req = req.WithContext(ContextWithClaims(req.Context(),
		&token.Claims{PersonID: "person-b", Role: model.RoleEmployee}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("other person status = %d, want 200", w.Code)
	}
}

func TestRateLimiter_Login_AlwaysKeyedByAddress(t *testing.T) {
	rl := NewRateLimiter(tinyLimiterConfig())
	defer rl.Stop()

	handler := rl.LoginMiddleware()(okHandler())

	// 認証済みクレームがあっても接続元アドレスでカウントされる
	first := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	second.RemoteAddr = "10.0.0.1:5678" // 同一ホスト・別ポート
	second = second.WithContext(ContextWithClaims(second.Context(),
		&token.Claims{PersonID: "someone", Role: model.RoleEmployee}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, second)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 (burst of 1 exhausted per host)", w.Code)
	}
}
