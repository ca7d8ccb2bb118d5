package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/haulman/internal/middleware"
)

// RouterDeps はルーター構築に必要な依存を保持する。
type RouterDeps struct {
	AuthHandler     *AuthHandler
	ShipmentHandler *ShipmentHandler
	PersonHandler   *PersonHandler

	Logger            *slog.Logger
	TokenVerifier     middleware.TokenVerifier
	RateLimiter       *middleware.RateLimiter
	MetricsMiddleware func(next http.Handler) http.Handler
	MetricsHandler    http.Handler
	CORSAllowedOrigin string
}

// NewRouter はアプリケーション全体のルーターを構築する。
// ミドルウェアはCORS → リカバリ → 認証 → ロギング → メトリクス → レート制限の順。
// 認証をロギングより先に通すことで、アクセスログに従業員IDが乗る。
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewIdentityMiddleware(deps.TokenVerifier))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.MetricsMiddleware != nil {
		r.Use(deps.MetricsMiddleware)
	}
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.GeneralMiddleware())
	}

	// 稼働確認
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// 認証。ログイン・登録は総当たり対策の厳しめレート制限をかける。
	r.Route("/auth", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", deps.AuthHandler.Login)
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/register", deps.AuthHandler.Register)
		} else {
			r.Post("/login", deps.AuthHandler.Login)
			r.Post("/register", deps.AuthHandler.Register)
		}
		r.Post("/logout", deps.AuthHandler.Logout)
		r.Get("/me", deps.PersonHandler.Me)
	})

	// リソースAPI。認可はサービス層のガードが判定する。
	r.Route("/api", func(r chi.Router) {
		r.Route("/shipments", func(r chi.Router) {
			r.Get("/", deps.ShipmentHandler.List)
			r.Post("/", deps.ShipmentHandler.Create)
			r.Get("/{id}", deps.ShipmentHandler.Get)
			r.Put("/{id}", deps.ShipmentHandler.Update)
			r.Delete("/{id}", deps.ShipmentHandler.Delete)
		})

		r.Route("/persons", func(r chi.Router) {
			r.Get("/", deps.PersonHandler.List)
			r.Get("/{id}", deps.PersonHandler.Get)
			r.Put("/{id}", deps.PersonHandler.Update)
			r.Delete("/{id}", deps.PersonHandler.Delete)
		})
	})

	return r
}
