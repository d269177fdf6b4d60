package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/command"
	"github.com/vinigdesouza/api-financial/internal/config"
	"github.com/vinigdesouza/api-financial/internal/currency"
	"github.com/vinigdesouza/api-financial/internal/events"
	"github.com/vinigdesouza/api-financial/internal/handler"
	"github.com/vinigdesouza/api-financial/internal/jobs"
	"github.com/vinigdesouza/api-financial/internal/listener"
	"github.com/vinigdesouza/api-financial/internal/middleware"
	"github.com/vinigdesouza/api-financial/internal/query"
	"github.com/vinigdesouza/api-financial/internal/queue"
	"github.com/vinigdesouza/api-financial/internal/repository"
)

func main() {
	cfg := config.LoadConfig()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(cfg.LogLevel)

	// PostgreSQL: the authoritative store for accounts and transactions.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Redis: settlement event stream, delay queue, settlement marker,
	// notification channel.
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	{
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
	}

	// Repositories
	accountRepo := repository.NewAccountRepository(db, log)
	transactionRepo := repository.NewTransactionRepository(db, log)
	scheduledRepo := repository.NewScheduledTransactionRepository(db, log)
	marker := repository.NewSettlementMarker(rdb, log)

	// Event bus + notifications
	publisher := events.NewPublisher(rdb, log)
	notifier := events.NewNotifier(rdb, log)

	// Delay queue
	transactionQueue := queue.NewTransactionQueue(rdb, log)
	scheduler := queue.NewTransactionScheduler(transactionQueue)

	// Currency conversion
	priceGateway := currency.NewHTTPPriceGateway(cfg.CurrencyAPIHost, log)
	conversionSvc := currency.NewConversionService(priceGateway, log)

	// Services
	transactionCmdSvc := command.NewTransactionCommandService(
		accountRepo, transactionRepo, scheduledRepo, conversionSvc, scheduler, publisher, log,
	)
	accountCmdSvc := command.NewAccountCommandService(accountRepo, log)
	settlementSvc := command.NewSettlementService(transactionRepo, scheduledRepo, publisher, log)
	transactionQrySvc := query.NewTransactionQueryService(transactionRepo, log)
	accountQrySvc := query.NewAccountQueryService(accountRepo, log)

	settlementListener := listener.NewTransactionListener(accountRepo, transactionRepo, marker, notifier, log)

	// Handlers + router
	transactionHandler := handler.NewTransactionHandler(transactionCmdSvc, transactionQrySvc, transactionRepo)
	accountHandler := handler.NewAccountHandler(accountCmdSvc, accountQrySvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		accounts := v1.Group("/accounts")
		accounts.POST("", accountHandler.CreateAccount)
		accounts.GET("/:id", accountHandler.GetAccount)
		accounts.GET("/number/:accountNumber", accountHandler.GetAccountByNumber)
		accounts.PATCH("/:id", accountHandler.UpdateAccount)
		accounts.DELETE("/:id", accountHandler.DeleteAccount)
		accounts.GET("/:id/transactions", transactionHandler.ListTransactionsByAccount)

		transactions := v1.Group("/transactions")
		transactions.POST("", transactionHandler.CreateTransaction)
		transactions.GET("/:id", transactionHandler.GetTransaction)
		transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Settlement listener: consumes settlement events and applies balances.
	go func() {
		subscriber := events.NewSubscriber(rdb, log, events.SubscriberConfig{
			Group:    "settlement-group",
			Consumer: "settlement-consumer-1",
			Stream:   events.TransactionEventsStream,
			Handler:  settlementListener.HandleSettlementEvent,
		})
		if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("subscriber stopped")
		}
	}()

	// Delay-queue processor: dispatches due jobs to the settlement worker.
	go func() {
		processor := queue.NewTransactionProcessor(transactionQueue, settlementSvc, cfg.QueuePollInterval, log)
		if err := processor.Start(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("transaction processor stopped")
		}
	}()

	// Stale-settlement report
	staleReporter := jobs.NewStaleSettlementReporter(scheduledRepo, 5*time.Minute, log)
	c := cron.New()
	if _, err := c.AddFunc(cfg.StaleReportSpec, func() { staleReporter.Run(ctx) }); err != nil {
		log.Fatalf("Failed to register stale settlement report: %v", err)
	}
	c.Start()
	defer c.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Infof("api-financial listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}
