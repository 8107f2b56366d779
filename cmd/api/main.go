package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/config"
	"github.com/putrairawan992/tradoora-b2b/internal/handler"
	"github.com/putrairawan992/tradoora-b2b/internal/infra/db"
	"github.com/putrairawan992/tradoora-b2b/internal/infra/kafka"
	"github.com/putrairawan992/tradoora-b2b/internal/infra/midtrans"
	"github.com/putrairawan992/tradoora-b2b/internal/infra/redislock"
	infraRepo "github.com/putrairawan992/tradoora-b2b/internal/infra/repository"
	"github.com/putrairawan992/tradoora-b2b/internal/metrics"
	"github.com/putrairawan992/tradoora-b2b/internal/server"
	"github.com/putrairawan992/tradoora-b2b/internal/usecase"
	auth "github.com/putrairawan992/tradoora-b2b/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg.DSN(), logger)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	//決済ゲートウェイ
	gateway := midtrans.NewClient(cfg.MidtransBaseURL, cfg.MidtransServerKey, cfg.GatewayTimeout)

	txOpts := []usecase.TransactionOption{usecase.WithPaymentMetrics(m)}

	//Redisがあれば注文ロックを使う
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		txOpts = append(txOpts, usecase.WithLocker(redislock.New(rdb, "tradoora:lock:order:", cfg.LockTTL,
			redislock.WithWait(2*time.Second, 50*time.Millisecond),
			redislock.WithLogger(logger),
		)))
		logger.Info("redis order lock enabled")
	}

	//Kafkaがあれば outbox relay を起動
	if len(cfg.KafkaBrokers) > 0 {
		writer := kafka.NewWriter(cfg.KafkaBrokers)
		defer writer.Close()
		relay := kafka.NewRelay(txManager, writer, 100, logger)
		go relay.Run(ctx, cfg.OutboxInterval)
		logger.Info("outbox relay started", "brokers", cfg.KafkaBrokers)
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	sessionUC := auth.NewSessionUsecase(userRepo)
	productUC := usecase.NewProductUsecase(txManager, productRepo, categoryRepo)
	cartUC := usecase.NewCartUsecase(cartItemRepo, productRepo)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, productRepo)
	auditUC := usecase.NewAuditUsecase(auditRepo, orderRepo)
	transactionUC := usecase.NewTransactionUsecase(
		txManager, orderRepo, userRepo, productRepo, gateway, cfg.MidtransServerKey, logger, txOpts...,
	)

	//Handler生成
	handlers := server.Handlers{
		Auth:            handler.NewAuthHandler(registerUC, loginUC, sessionUC),
		AdminUser:       handler.NewAdminUserHandler(sessionUC),
		Product:         handler.NewProductHandler(productUC),
		AdminProduct:    handler.NewAdminProductHandler(productUC),
		Cart:            handler.NewCartHandler(cartUC),
		Review:          handler.NewReviewHandler(reviewUC),
		Transaction:     handler.NewTransactionHandler(transactionUC),
		AdminOrder:      handler.NewAdminOrderHandler(transactionUC),
		AdminAudit:      handler.NewAdminAuditHandler(auditUC),
		PaymentCallback: handler.NewPaymentCallbackHandler(transactionUC, logger),
	}

	e := server.New(server.Deps{
		Config:   cfg,
		Logger:   logger,
		UserRepo: userRepo,
		Metrics:  m,
		Gatherer: reg,
		Ping:     sqlDB.PingContext,
		Handlers: handlers,
	})

	//Server起動
	return server.Start(ctx, e, cfg.Addr(), logger)
}
