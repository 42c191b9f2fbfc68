// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"smart-chat-go/internal/config"
	"smart-chat-go/internal/handler"
	"smart-chat-go/internal/repository"
	"smart-chat-go/internal/service"
	"smart-chat-go/pkg/database"
	"smart-chat-go/pkg/kafka"
	"smart-chat-go/pkg/llm"
	"smart-chat-go/pkg/log"
	"smart-chat-go/pkg/media"
	"smart-chat-go/pkg/storage"
	"smart-chat-go/pkg/token"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := "./configs/config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// 1. 初始化配置
	config.Init(configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	ctx := context.Background()
	timeout := time.Duration(cfg.Server.HTTPTimeoutSeconds) * time.Second
	httpClient := &http.Client{Timeout: timeout}

	// 3. 初始化会话存储
	repo := mustInitRepository(cfg)

	// 4. 初始化外部客户端
	llmClient, err := llm.NewClient(ctx, cfg.LLM, timeout)
	if err != nil {
		log.Fatal("初始化 LLM 客户端失败", err)
	}
	imageClient := media.NewImageClient(cfg.Image, cfg.Replicate, httpClient)
	videoClient := media.NewVideoClient(cfg.Video, cfg.Replicate, httpClient)

	var archiver service.MediaArchiver
	if cfg.MinIO.Enabled {
		a, err := storage.InitMinIO(ctx, cfg.MinIO, httpClient)
		if err != nil {
			log.Fatal("初始化 MinIO 失败", err)
		}
		archiver = a
	}

	var publisher service.EventPublisher
	var eventPublisher *kafka.EventPublisher
	if len(kafka.SplitBrokers(cfg.Kafka.Brokers)) > 0 {
		eventPublisher = kafka.NewEventPublisher(cfg.Kafka)
		publisher = eventPublisher
	}

	var jwtManager *token.JWTManager
	if cfg.JWT.Secret != "" {
		jwtManager = token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
		log.Info("已启用 JWT 身份识别")
	}

	// 5. 初始化 Service (依赖注入)
	replyService := service.NewReplyService(llmClient, cfg.LLM)
	mediaService := service.NewMediaService(imageClient, videoClient, archiver, time.Duration(cfg.Video.StatusCacheMinutes)*time.Minute)
	chatService := service.NewChatSessionService(repo, replyService, mediaService, publisher)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(chatService, mediaService, jwtManager)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s, 存储驱动: %s, LLM: %s", srv.Addr, cfg.Store.Driver, cfg.LLM.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	if eventPublisher != nil {
		if err := eventPublisher.Close(); err != nil {
			log.Warnf("关闭 Kafka 生产者失败: %v", err)
		}
	}
	database.CloseRedis()
	database.CloseMySQL()
	log.Info("服务已优雅关闭")
}

// mustInitRepository 按 store.driver 选择会话存储实现。
func mustInitRepository(cfg config.Config) repository.ChatRepository {
	switch cfg.Store.Driver {
	case "", "memory":
		log.Warnf("使用内存存储，服务重启后所有会话将丢失")
		return repository.NewMemoryChatRepository()
	case "redis":
		rdb, err := database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		if err != nil {
			log.Fatal("初始化 Redis 失败", err)
		}
		return repository.NewRedisChatRepository(rdb)
	case "mysql":
		db, err := database.InitMySQL(cfg.Database.MySQL.DSN)
		if err != nil {
			log.Fatal("初始化 MySQL 失败", err)
		}
		if err := repository.AutoMigrate(db); err != nil {
			log.Fatal("数据库迁移失败", err)
		}
		return repository.NewGormChatRepository(db)
	default:
		log.Fatalf("未知的存储驱动: %s", cfg.Store.Driver)
		return nil
	}
}
