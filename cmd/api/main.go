package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/config"
	"github.com/fekuna/omnipos-stockflow-service/internal/docnumber"
	"github.com/fekuna/omnipos-stockflow-service/internal/events"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/broker"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/cache"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/postgres"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/tracing"
	"github.com/fekuna/omnipos-stockflow-service/internal/product"
	"github.com/fekuna/omnipos-stockflow-service/internal/server"

	bomH "github.com/fekuna/omnipos-stockflow-service/internal/bom/handler"
	bomRepoPkg "github.com/fekuna/omnipos-stockflow-service/internal/bom/repository"
	bomUCPkg "github.com/fekuna/omnipos-stockflow-service/internal/bom/usecase"

	deliveryH "github.com/fekuna/omnipos-stockflow-service/internal/delivery/handler"
	deliveryRepoPkg "github.com/fekuna/omnipos-stockflow-service/internal/delivery/repository"
	deliveryUCPkg "github.com/fekuna/omnipos-stockflow-service/internal/delivery/usecase"

	docH "github.com/fekuna/omnipos-stockflow-service/internal/docnumber/handler"
	docRepoPkg "github.com/fekuna/omnipos-stockflow-service/internal/docnumber/repository"
	docUCPkg "github.com/fekuna/omnipos-stockflow-service/internal/docnumber/usecase"

	prodH "github.com/fekuna/omnipos-stockflow-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-stockflow-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-stockflow-service/internal/product/usecase"

	poH "github.com/fekuna/omnipos-stockflow-service/internal/purchase/handler"
	poRepoPkg "github.com/fekuna/omnipos-stockflow-service/internal/purchase/repository"
	poUCPkg "github.com/fekuna/omnipos-stockflow-service/internal/purchase/usecase"

	quoteH "github.com/fekuna/omnipos-stockflow-service/internal/quotation/handler"
	quoteRepoPkg "github.com/fekuna/omnipos-stockflow-service/internal/quotation/repository"
	quoteUCPkg "github.com/fekuna/omnipos-stockflow-service/internal/quotation/usecase"

	resH "github.com/fekuna/omnipos-stockflow-service/internal/reservation/handler"
	resListenerPkg "github.com/fekuna/omnipos-stockflow-service/internal/reservation/listener"
	resRepoPkg "github.com/fekuna/omnipos-stockflow-service/internal/reservation/repository"
	resUCPkg "github.com/fekuna/omnipos-stockflow-service/internal/reservation/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "omnipos-stockflow-service"

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing
	shutdownTracing, err := tracing.Setup(ctx, &tracing.Config{
		ServiceName:    cfg.Otel.ServiceName,
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		URLPath:        cfg.Otel.URLPath,
		Insecure:       cfg.Otel.Insecure,
	})
	if err != nil {
		appLogger.Fatal("Could not set up tracing", zap.Error(err))
	}

	// 4. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	txManager := postgres.NewTxManager(db, time.Duration(cfg.Postgres.LockTimeoutMs)*time.Millisecond)

	// 5. Initialize Redis (optional)
	var readCache cache.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, running without cache", zap.Error(err))
		} else {
			readCache = redisClient
			defer redisClient.Close()
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 6. Initialize Kafka (optional)
	var publisher broker.Publisher = broker.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.EventsTopic,
		})
		defer producer.Close()
		publisher = producer
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.EventsTopic))
	}
	emitter := events.NewEmitter(publisher, appLogger)

	// 7. Initialize Repositories
	prodRepo := prodRepoPkg.NewPGRepository(db)
	resRepo := resRepoPkg.NewPGRepository(db)
	bomRepo := bomRepoPkg.NewPGRepository(db)
	docRepo := docRepoPkg.NewPGRepository()
	deliveryRepo := deliveryRepoPkg.NewPGRepository(db)
	poRepo := poRepoPkg.NewPGRepository(db)
	quoteRepo := quoteRepoPkg.NewPGRepository(db)

	// 8. Initialize UseCases
	ledger := product.NewLedger(prodRepo).WithCache(readCache, appLogger)
	allocator := docnumber.NewAllocator(docRepo, docnumber.CalendarByName(cfg.Numbering.Calendar))

	prodUC := prodUCPkg.NewProductUseCase(prodRepo, ledger, txManager, readCache, appLogger)
	resUC := resUCPkg.NewReservationUseCase(resRepo, ledger, txManager, emitter, appLogger)
	bomUC := bomUCPkg.NewBOMUseCase(bomRepo, ledger, txManager, readCache, emitter, appLogger)
	deliveryUC := deliveryUCPkg.NewDeliveryUseCase(deliveryRepo, resRepo, docRepo, allocator, ledger, txManager, emitter, appLogger)
	docUC := docUCPkg.NewDocNumberUseCase(txManager, allocator, appLogger)
	poUC := poUCPkg.NewPurchaseUseCase(poRepo, ledger, allocator, txManager, emitter, appLogger)
	quoteUC := quoteUCPkg.NewQuotationUseCase(quoteRepo, allocator, txManager, appLogger)

	// 9. Initialize Listeners
	if cfg.Kafka.ListenRequests && len(cfg.Kafka.Brokers) > 0 {
		consumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.RequestsTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		go resListenerPkg.NewReservationListener(consumer, resUC, appLogger).Start(ctx)
		appLogger.Info("Listening for reservation requests", zap.String("topic", cfg.Kafka.RequestsTopic))
	}

	// 10. Initialize Handlers
	router := server.NewRouter(&server.Handlers{
		Product:     prodH.NewProductHandler(prodUC, appLogger),
		Reservation: resH.NewReservationHandler(resUC, appLogger),
		BOM:         bomH.NewBOMHandler(bomUC, appLogger),
		Delivery:    deliveryH.NewDeliveryHandler(deliveryUC, appLogger),
		DocNumber:   docH.NewDocNumberHandler(docUC, appLogger),
		Purchase:    poH.NewPurchaseHandler(poUC, appLogger),
		Quotation:   quoteH.NewQuotationHandler(quoteUC, appLogger),
	}, server.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Health: func(r *http.Request) error {
			return db.PingContext(r.Context())
		},
	})

	httpServer := &http.Server{
		Addr:              withColon(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 11. Start gRPC health server
	lis, err := net.Listen("tcp", withColon(cfg.Server.GRPCPort))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer done()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Error("Tracing shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func withColon(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
