package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"payment-epayco/config"
	"payment-epayco/database"
	"payment-epayco/handler"
	"payment-epayco/middleware"
	"payment-epayco/repository"
	"payment-epayco/router"
	"payment-epayco/scheduler"
	"payment-epayco/service"
	"payment-epayco/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
)

func main() {
	config.SetupEnvFile()

	cfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Env, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conns := &database.Connections{}
	conns.DB, err = database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Fatal("Database setup failed", zap.Error(err))
	}
	conns.Mongo, err = database.SetupMongoDB(ctx, cfg.MongoURI, logger)
	if err != nil {
		logger.Fatal("MongoDB setup failed", zap.Error(err))
	}
	conns.Redis = database.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPass, logger)

	transactions := repository.NewGormTransactionRepo(conns.DB)
	acquirers := repository.NewGormAcquirerRepo(conns.DB)

	callbackLogs := repository.NewNopCallbackLogRepo()
	if conns.Mongo != nil {
		callbackLogs = repository.NewMongoCallbackLogRepo(conns.Mongo.Database(cfg.MongoDatabase))
	}

	locker := repository.NewNopLocker()
	if conns.Redis != nil {
		locker = repository.NewRedisLocker(conns.Redis, cfg.LockTTL)
	}

	callbackWorker := worker.NewCallbackWorker(cfg.NotifySecret, logger)
	go callbackWorker.ProcessCallbackQueue(ctx)

	reconciler := service.NewReconciler(service.ReconcilerConfig{
		Transactions: transactions,
		Acquirers:    acquirers,
		CallbackLogs: callbackLogs,
		Locker:       locker,
		Notifier:     callbackWorker,
		Logger:       logger,
		Strict:       cfg.StrictConsistency,
	})
	payments := service.NewPaymentService(transactions, acquirers, logger, cfg.BaseURL)

	authHandler := handler.NewAuthHandler(repository.NewGormUserRepo(conns.DB), cfg.JWTSecret, logger)
	if err := authHandler.BootstrapAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatal("Admin bootstrap failed", zap.Error(err))
	}

	draftScheduler := scheduler.NewTransactionScheduler(transactions, logger, cfg.DraftSweepSpec, cfg.DraftTTL)
	if err := draftScheduler.Start(); err != nil {
		logger.Fatal("Scheduler setup failed", zap.Error(err))
	}

	middleware.PrometheusInit()

	engine := html.New(cfg.ViewDir, ".html")
	app := fiber.New(fiber.Config{
		Views:         engine,
		CaseSensitive: true,
		ServerHeader:  "Fiber",
		AppName:       "ePayco Payment",
	})

	router.SetupRoutes(app, router.Handlers{
		Epayco:       handler.NewEpaycoHandler(reconciler, payments, logger),
		Transactions: handler.NewTransactionHandler(payments, logger),
		Acquirers:    handler.NewAcquirerHandler(acquirers, callbackLogs, logger),
		Auth:         authHandler,
		Summary:      handler.NewSummaryHandler(transactions, logger),
		Scheduler:    draftScheduler,
		JWTSecret:    cfg.JWTSecret,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("Error starting HTTP server", zap.Error(err))
			stop()
		}
	}()
	logger.Info("Server started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	<-ctx.Done()
	logger.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	draftScheduler.Stop()
	callbackWorker.Stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conns.Close(closeCtx); err != nil {
		logger.Error("Closing connections failed", zap.Error(err))
	}

	logger.Info("Server stopped gracefully.")
}
