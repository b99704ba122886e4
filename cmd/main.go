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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelAppointmentHandler "github.com/avkor/SMB-SchedulingService/internal/api/handlers/cancel_appointment"
	getAvailableSlotsHandler "github.com/avkor/SMB-SchedulingService/internal/api/handlers/get_available_slots"
	getPolicyHandler "github.com/avkor/SMB-SchedulingService/internal/api/handlers/get_policy"
	getScheduleHandler "github.com/avkor/SMB-SchedulingService/internal/api/handlers/get_schedule"
	handleTurnHandler "github.com/avkor/SMB-SchedulingService/internal/api/handlers/handle_turn"
	listAppointmentsHandler "github.com/avkor/SMB-SchedulingService/internal/api/handlers/list_appointments"
	updatePolicyHandler "github.com/avkor/SMB-SchedulingService/internal/api/handlers/update_policy"
	updateScheduleHandler "github.com/avkor/SMB-SchedulingService/internal/api/handlers/update_schedule"
	"github.com/avkor/SMB-SchedulingService/internal/api/middleware"
	"github.com/avkor/SMB-SchedulingService/internal/config"
	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/internal/infra/idempotency"
	appointmentRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/appointment"
	draftStore "github.com/avkor/SMB-SchedulingService/internal/infra/storage/draft"
	policyRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/policy"
	scheduleRepo "github.com/avkor/SMB-SchedulingService/internal/infra/storage/schedule"
	catalogServiceClient "github.com/avkor/SMB-SchedulingService/internal/integrations/catalogservice"
	appointmentsService "github.com/avkor/SMB-SchedulingService/internal/service/appointments"
	scheduleService "github.com/avkor/SMB-SchedulingService/internal/service/schedule"
	claimSlotUC "github.com/avkor/SMB-SchedulingService/internal/usecase/claim_slot"
	findSlotsUC "github.com/avkor/SMB-SchedulingService/internal/usecase/find_slots"
	handleTurnUC "github.com/avkor/SMB-SchedulingService/internal/usecase/handle_turn"
	"github.com/avkor/SMB-SchedulingService/pkg/dbmetrics"
	"github.com/avkor/SMB-SchedulingService/pkg/logger"
	"github.com/avkor/SMB-SchedulingService/pkg/metrics"
	"github.com/avkor/SMB-SchedulingService/pkg/simpletxmanager"
	"github.com/avkor/SMB-SchedulingService/pkg/txmanager"
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

	log.Info("Starting SMB-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Подключаемся к Redis (черновики диалогов и кэш идемпотентности)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatal("Failed to ping redis: %v", err)
	}
	pingCancel()
	log.Info("Successfully connected to redis (addr=%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)

	// Инициализируем клиент каталога услуг
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
		policyRepository      *policyRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		policyRepository = policyRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		policyRepository = policyRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Хранилище черновиков и кэш идемпотентности поверх Redis
	drafts := draftStore.NewStore(redisClient, domain.DefaultDraftTTLMinutes*time.Minute)
	idempotencyCache := idempotency.NewCache(redisClient, domain.DefaultDedupWindowSeconds*time.Second)

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(appointmentRepository, log)
	scheduleSvc := scheduleService.NewService(scheduleRepository, policyRepository, log)

	// Инициализируем use cases
	findSlotsUseCase := findSlotsUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		policyRepository,
		log,
	)

	claimSlotUseCase := claimSlotUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		policyRepository,
		txMgr,
		log,
	)

	handleTurnUseCase := handleTurnUC.NewUseCase(
		drafts,
		idempotencyCache,
		catalogClient,
		findSlotsUseCase,
		claimSlotUseCase,
		appointmentsSvc,
		policyRepository,
		log,
	)

	// Инициализируем handlers
	handleTurn := handleTurnHandler.NewHandler(handleTurnUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(findSlotsUseCase, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)
	getPolicy := getPolicyHandler.NewHandler(scheduleSvc, log)
	updatePolicy := updatePolicyHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Обработка хода диалога (вызывается ботом-гейтвеем)
	api.HandleFunc("/conversations/{conversationId}/turns",
		handleTurn.Handle).Methods(http.MethodPost)

	// Доступные слоты бизнеса
	api.HandleFunc("/businesses/{businessId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Расписание и политика бизнеса (чтение)
	api.HandleFunc("/businesses/{businessId}/schedule",
		getSchedule.Handle).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{businessId}/policy",
		getPolicy.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	// Список записей бизнеса
	protected.HandleFunc("/businesses/{businessId}/appointments",
		listAppointments.Handle).Methods(http.MethodGet)

	// Отмена записи
	protected.HandleFunc("/businesses/{businessId}/appointments/{appointmentId}/cancel",
		cancelAppointment.Handle).Methods(http.MethodPatch)

	// --- Управление расписанием (для владельцев бизнеса) ---
	protected.HandleFunc("/businesses/{businessId}/schedule",
		updateSchedule.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/businesses/{businessId}/policy",
		updatePolicy.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
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

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

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
