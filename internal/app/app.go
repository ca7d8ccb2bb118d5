// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/haulman/internal/auth"
	"github.com/hitoshi/haulman/internal/config"
	"github.com/hitoshi/haulman/internal/credential"
	"github.com/hitoshi/haulman/internal/handler"
	"github.com/hitoshi/haulman/internal/logger"
	"github.com/hitoshi/haulman/internal/metrics"
	"github.com/hitoshi/haulman/internal/middleware"
	"github.com/hitoshi/haulman/internal/person"
	"github.com/hitoshi/haulman/internal/seed"
	"github.com/hitoshi/haulman/internal/shipment"
	"github.com/hitoshi/haulman/internal/store"
	"github.com/hitoshi/haulman/internal/token"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ストアの初期化
	shipmentStore := store.NewMemoryShipmentStore()
	personStore := store.NewMemoryPersonStore()

	// 2. 資格情報ハッシュとトークンサービスの初期化
	hasher := credential.NewHasher(credential.DefaultParams)

	tokenService, err := token.NewService(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// 3. デモデータの投入
	if cfg.SeedDemoData {
		if err := seed.Run(context.Background(), shipmentStore, personStore, hasher); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	// 4. ドメインサービスの初期化
	authService := auth.NewService(personStore, hasher, tokenService)
	shipmentService := shipment.NewService(shipmentStore)
	personService := person.NewService(personStore)

	// 5. メトリクスの初期化
	collector := metrics.NewCollector()
	collector.RegisterEntityGauges(shipmentStore.CountShipments, personStore.CountPersons)

	// 6. レート制限の初期化（configはreq/min単位なのでreq/secに変換する）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.LoginRate = rate.Limit(float64(cfg.RateLimitLogin) / 60.0)
	rateLimiterCfg.LoginBurst = cfg.RateLimitLogin
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	router := handler.NewRouter(handler.RouterDeps{
		AuthHandler:     handler.NewAuthHandler(authService, collector),
		ShipmentHandler: handler.NewShipmentHandler(shipmentService),
		PersonHandler:   handler.NewPersonHandler(personService),

		Logger:            slog.Default(),
		TokenVerifier:     tokenService,
		RateLimiter:       rateLimiter,
		MetricsMiddleware: collector.Middleware(),
		MetricsHandler:    collector.Handler(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
	})

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
