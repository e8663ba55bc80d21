// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillshare/internal/apiserver/auth"
	"skillshare/internal/apiserver/salary"
	"skillshare/internal/apiserver/server"
	"skillshare/internal/config"
	"skillshare/internal/shared/cache"
	cacheredis "skillshare/internal/shared/cache/redis"
	"skillshare/internal/shared/storage/mongostore"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换数据库和 Redis）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 初始化 MongoDB（持久化业务数据）
	store, err := mongostore.NewStore(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 初始化 Redis（公开帖子列表缓存，可选，失败时降级为 NoOp）
	var listCache cache.PostListCache = cache.NewNoOpCache()
	if cfg.RedisEnabled {
		redisCache, err := cacheredis.NewStoreFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable, post list cache disabled: %v", err)
		} else {
			defer redisCache.Close()
			listCache = redisCache
			log.Println("Connected to Redis")
		}
	}

	// 引导管理员账号
	authCfg := auth.Config{
		JWTSecret:      cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
	}
	if cfg.AdminPassword != "" {
		if err := auth.EnsureAdminUser(store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("Failed to ensure admin user: %v", err)
		}
	} else {
		log.Println("ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	// 初始化 Handler
	h := server.NewHandler(store, listCache, authCfg)

	// 启动薪资定时任务
	if cfg.SalaryEnabled {
		scheduler := salary.NewScheduler(h.Aggregator(), cfg.SalarySchedule)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start salary scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
