package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"Confizz/internal/config"
	"Confizz/internal/handler"
	"Confizz/internal/pkg"
	"Confizz/internal/repository/mysql"
	redisrepo "Confizz/internal/repository/redis"
	"Confizz/internal/router"
	"Confizz/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	logger, err := pkg.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	gin.SetMode(cfg.Server.Mode)

	db, err := mysql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	// 自动建表
	if err := mysql.AutoMigrate(db); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// 连接redis
	rdb, err := redisrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	issuer := pkg.NewTokenIssuer(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	sessions := pkg.NewSessionManager(cfg.Auth.SessionKey, cfg.Auth.SecureCookie, cfg.Auth.RefreshTTL)
	mailer := pkg.NewSMTPMailer(pkg.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	summarizer := pkg.NewSummarizer(pkg.LLMConfig{
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		BaseURL:   cfg.LLM.BaseURL,
		Timeout:   cfg.LLM.Timeout,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if cfg.LLM.APIKey == "" {
		logger.Warn("llm api key not configured, summaries are disabled")
	}

	userRepo := mysql.NewUserRepository(db)
	communityRepo := mysql.NewCommunityRepository(db)
	confessionRepo := mysql.NewConfessionRepository(db)
	commentRepo := mysql.NewCommentRepository(db)
	tokens := redisrepo.NewTokenRepository(rdb, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	codes := redisrepo.NewResetCodeRepository(rdb)

	users := service.NewUserService(userRepo, tokens, codes, issuer)
	confessions := service.NewConfessionService(confessionRepo, communityRepo, cfg.Location())

	r := router.InitRouter(router.Deps{
		Users:       users,
		Emails:      service.NewEmailService(userRepo, codes, mailer, logger),
		Communities: service.NewCommunityService(communityRepo),
		Confessions: confessions,
		Comments:    service.NewCommentService(commentRepo, confessionRepo),
		Summaries:   service.NewSummaryService(summarizer),
		Sessions:    sessions,
		Checks: map[string]handler.Checker{
			"database": sqlDB.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Logger: logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
