package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/cancel_broadcast"
	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/get_user"
	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/health"
	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/list_broadcasts"
	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/run_task"
	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/send_notification"
	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/view_config"
	"github.com/m04kA/SMC-WikiControlService/internal/api/middleware"
	"github.com/m04kA/SMC-WikiControlService/internal/config"
	"github.com/m04kA/SMC-WikiControlService/internal/infra/sessions"
	auditRepoPkg "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/audit"
	deliveryRepoPkg "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/delivery"
	eventRepoPkg "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/event"
	jobRepoPkg "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/job"
	userRepoPkg "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/user"
	"github.com/m04kA/SMC-WikiControlService/internal/integrations/cdn"
	"github.com/m04kA/SMC-WikiControlService/internal/service/audience"
	"github.com/m04kA/SMC-WikiControlService/internal/service/broadcast"
	"github.com/m04kA/SMC-WikiControlService/internal/service/delivery"
	"github.com/m04kA/SMC-WikiControlService/internal/service/siteconfig"
	"github.com/m04kA/SMC-WikiControlService/internal/service/tasks"
	"github.com/m04kA/SMC-WikiControlService/internal/service/telegram"
	"github.com/m04kA/SMC-WikiControlService/internal/service/users"
	"github.com/m04kA/SMC-WikiControlService/internal/worker"
	"github.com/m04kA/SMC-WikiControlService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WikiControlService/pkg/logger"
	"github.com/m04kA/SMC-WikiControlService/pkg/metrics"
	"github.com/m04kA/SMC-WikiControlService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-WikiControlService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Оборачиваем БД метриками и готовим менеджер транзакций
	var dbExecutor dbmetrics.DBExecutor = db
	var txBeginner dbmetrics.TxBeginner = dbmetrics.NewBeginner(db)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		dbExecutor = wrappedDB
		txBeginner = wrappedDB
		log.Info("Database metrics collection started")
	}

	txManager := txmanager.NewTransactionManager(txBeginner)

	// Инициализируем репозитории
	userRepo := userRepoPkg.NewRepository(dbExecutor)
	eventRepo := eventRepoPkg.NewRepository(dbExecutor)
	deliveryRepo := deliveryRepoPkg.NewRepository(dbExecutor)
	jobRepo := jobRepoPkg.NewRepository(dbExecutor)
	auditRepo := auditRepoPkg.NewRepository(dbExecutor)

	// Подключаемся к хранилищу сессий
	sessionStore, err := sessions.NewStore(cfg.Redis)
	if err != nil {
		// Сервис работает и без Redis, страдает только завершение сессий
		log.Warn("Session store unavailable: %v", err)
		sessionStore = nil
	} else {
		defer sessionStore.Close()
		log.Info("Session store connected (address=%s)", cfg.Redis.Address)
	}

	// Инициализируем клиент CDN
	cdnClient := cdn.NewClient(cfg.CDN.Endpoint, time.Duration(cfg.CDN.Timeout)*time.Second)
	log.Info("CDN client initialized (endpoint=%s)", cfg.CDN.Endpoint)

	// Инициализируем Telegram канал (опционально)
	var telegramSvc *telegram.Service
	if cfg.Telegram.Enabled {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			log.Fatal("Failed to initialize Telegram Bot API: %v", err)
		}
		telegramSvc = telegram.NewService(bot)
		log.Info("Telegram channel initialized (@%s)", bot.Self.UserName)
	} else {
		log.Info("Telegram channel disabled")
	}

	// Инициализируем сервисный слой
	broadcastSvc := broadcast.NewService(userRepo, eventRepo, jobRepo, cfg.Broadcast)
	audienceResolver := audience.NewResolver(userRepo)

	// nil-интерфейсы нельзя передавать напрямую, иначе проверка на nil внутри не сработает
	var telegramSender delivery.TelegramSender
	if telegramSvc != nil {
		telegramSender = telegramSvc
	}
	deliverySvc := delivery.NewService(audienceResolver, deliveryRepo, telegramSender, log)

	var sessionInvalidator tasks.SessionStore
	if sessionStore != nil {
		sessionInvalidator = sessionStore
	}
	tasksSvc := tasks.NewService(userRepo, sessionInvalidator, cdnClient, auditRepo, txManager, cfg.Tasks, log)

	usersSvc := users.NewService(userRepo)
	siteconfigSvc := siteconfig.NewService(cfg)
	log.Info("Services initialized")

	// Инициализируем Worker компоненты
	scheduler := worker.NewScheduler(jobRepo, log)
	jobRunner := worker.NewJobRunner(
		jobRepo,
		broadcastSvc,
		eventRepo,
		log,
		metricsCollector,
		time.Duration(cfg.Worker.JobInterval)*time.Second,
		cfg.Broadcast.MaxAttempts,
	)
	processor := worker.NewProcessor(
		eventRepo,
		deliverySvc,
		log,
		metricsCollector,
		time.Duration(cfg.Worker.ProcessorInterval)*time.Second,
		cfg.Worker.ProcessorBatchSize,
	)

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	// КРИТИЧНО: scheduler запускается ПЕРЕД загрузкой отложенных задач
	scheduler.Start()
	if err := scheduler.LoadScheduledJobs(ctx); err != nil {
		log.Error("Failed to load scheduled jobs: %v", err)
	}

	jobRunner.Start()
	processor.Start()
	log.Info("Workers started (processor interval=%ds, job interval=%ds)",
		cfg.Worker.ProcessorInterval, cfg.Worker.JobInterval)

	// Инициализируем handlers
	healthHandler := health.NewHandler()
	sendNotificationHandler := send_notification.NewHandler(broadcastSvc, scheduler, log)
	listBroadcastsHandler := list_broadcasts.NewHandler(broadcastSvc, log)
	cancelBroadcastHandler := cancel_broadcast.NewHandler(broadcastSvc, scheduler, log)
	runTaskHandler := run_task.NewHandler(tasksSvc, log)
	getUserHandler := get_user.NewHandler(usersSvc, log)
	viewConfigHandler := view_config.NewHandler(siteconfigSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Публичные endpoints
	r.HandleFunc("/health", healthHandler.Handle).Methods(http.MethodGet)

	// Metrics endpoint (публичный)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API v1 endpoints
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/notifications", sendNotificationHandler.Handle).Methods(http.MethodPost)
	api.HandleFunc("/notifications", listBroadcastsHandler.Handle).Methods(http.MethodGet)
	api.HandleFunc("/notifications/jobs/{id}", cancelBroadcastHandler.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/tasks", runTaskHandler.Handle).Methods(http.MethodPost)
	api.HandleFunc("/users/{username}", getUserHandler.Handle).Methods(http.MethodGet)
	api.HandleFunc("/config", viewConfigHandler.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Запускаем HTTP сервер
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// КРИТИЧНО: Останавливаем Worker ПЕРЕД сервером
	processor.Stop()
	jobRunner.Stop()
	scheduler.Stop()
	log.Info("Worker components stopped")

	// Останавливаем сбор метрик
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	// Graceful shutdown HTTP сервера
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
