package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"PRISM-backend/internal/audit"
	"PRISM-backend/internal/backup"
	"PRISM-backend/internal/items"
	"PRISM-backend/internal/platform/auth"
	"PRISM-backend/internal/platform/db"
	"PRISM-backend/internal/platform/logger"
	"PRISM-backend/internal/platform/storage"
	"PRISM-backend/internal/settings"
	"PRISM-backend/internal/users"
)

func main() {
	// .env は無くてもよい（機密値は環境変数からも拾う）
	_ = godotenv.Load()

	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("起動", zap.String("version", cfg.Version), zap.String("mode", cfg.Mode))

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal("DB接続に失敗", zap.Error(err))
	}
	defer conn.Close()
	log.Info("DB接続完了", zap.String("dbname", cfg.DB.DBName))

	// バックアップ媒体。検出・コピーの実体は外部コラボレータが差し替える。
	var store storage.Unavailable
	st := store.Status()
	log.Info("バックアップ媒体",
		zap.Bool("connected", st.Connected),
		zap.Bool("writable", st.Writable),
		zap.String("message", st.Message),
	)
	if cfg.Storage.Required && !store.IsWritable() {
		log.Fatal("バックアップ媒体に書き込めないため起動を中止します")
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	auditSvc := audit.NewService(conn, log)
	settingsSvc := settings.NewService(conn, auditSvc, cfg.App.DefaultReturnDays, log)
	itemsSvc := items.NewService(conn, auditSvc, settingsSvc, log)
	usersSvc := users.NewService(conn, auditSvc, issuer, log)

	// 初回起動時のデフォルト管理者
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := usersSvc.Bootstrap(ctx, cfg.App.AdminName, cfg.App.AdminPassword); err != nil {
		cancel()
		log.Fatal("初期ユーザー作成に失敗", zap.Error(err))
	}
	cancel()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// /api/v1
	api := r.Group("/api/v1")
	users.RegisterPublicRoutes(api, usersSvc)

	authed := api.Group("", auth.RequireAuth(issuer.Secret()))
	items.RegisterRoutes(authed, itemsSvc)
	audit.RegisterRoutes(authed, auditSvc)
	settings.RegisterReadRoutes(authed, settingsSvc)
	backup.RegisterRoutes(authed, store, store)

	admin := authed.Group("", auth.RequireAdmin())
	users.RegisterAdminRoutes(admin, usersSvc)
	settings.RegisterAdminRoutes(admin, settingsSvc)

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("サーバー停止", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("シャットダウンに失敗", zap.Error(err))
	}
}
