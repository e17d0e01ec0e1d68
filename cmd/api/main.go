package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sweetshop/internal/core/auth"
	"sweetshop/internal/core/cache"
	"sweetshop/internal/core/config"
	"sweetshop/internal/core/database"
	"sweetshop/internal/core/logger"
	"sweetshop/internal/core/server"
	"sweetshop/internal/domain"
	"sweetshop/internal/repo"
	"sweetshop/internal/service"
	"sweetshop/internal/transport/http/handler"
	"sweetshop/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	// 配置不完整（签名密钥/DSN 缺失）直接拒绝启动
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	db := mustOpenDB(cfg, log)
	log.Info("database connected",
		zap.String("driver", cfg.DB.Driver),
		zap.String("dsn", database.MaskDSN(cfg.DB.DSN)),
	)

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Sweet{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	// redis 未配置时列表接口直连 DB
	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("listing cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// 依赖
	userRepo := repo.NewUserRepo(db)
	sweetRepo := repo.NewSweetRepo(db)
	authSvc := service.NewAuthService(userRepo, jwter, cfg.Auth.BcryptCost)
	sweetSvc := service.NewSweetService(sweetRepo, c, time.Duration(cfg.Redis.CacheSec)*time.Second)
	authH := handler.NewAuthHandler(authSvc)
	sweetH := handler.NewSweetHandler(sweetSvc)

	r := router.NewAPIEngine(log, jwter, authH, sweetH)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("sweetshop api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("sweetshop api start FAILED", zap.Error(err))
		}
	}()
	log.Info("sweetshop api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("sweetshop api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
