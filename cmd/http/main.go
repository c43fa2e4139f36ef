package main

import (
	"clinicdesk-service/internal/app/config"
	"clinicdesk-service/internal/app/contracts"
	"clinicdesk-service/internal/app/delivery/http/controllers"
	"clinicdesk-service/internal/app/delivery/http/middlewares"
	"clinicdesk-service/internal/app/delivery/http/routers"
	"clinicdesk-service/internal/app/drivers/database"
	"clinicdesk-service/internal/app/drivers/logger"
	"clinicdesk-service/internal/app/drivers/messaging"
	"clinicdesk-service/internal/app/services/clinic_api"
	"clinicdesk-service/internal/app/services/clinic_api/appointments"
	"clinicdesk-service/internal/app/services/clinic_api/assignments"
	"clinicdesk-service/internal/app/services/clinic_api/catalog"
	"clinicdesk-service/internal/app/services/core/service_assignment"
	"clinicdesk-service/internal/app/services/shared/catalog_cache"
	"clinicdesk-service/internal/app/services/shared/locker"
	"clinicdesk-service/internal/app/services/shared/receipts"
	"clinicdesk-service/internal/app/services/shared/redis"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewLogrusLogger(internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	zapLogger, err := logger.NewZapLogger(driverConfig, internalConfig)
	if err != nil {
		log.Fatalf("Error initializing zap logger: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoDB, err := database.NewMongoDB(ctx, driverConfig)
	if err != nil {
		log.Fatalf("Error connecting to MongoDB: %v", err)
	}
	log.Println("Successfully connected to MongoDB")

	redisClient, err := database.NewRedisClient(ctx, driverConfig)
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	log.Println("Successfully connected to Redis")

	rabbitMQ, err := messaging.NewRabbitMQ(driverConfig)
	if err != nil {
		// receipts are best effort, the flow keeps working without the broker
		log.Warnf("Error connecting to RabbitMQ, receipts will not be published: %v", err)
		rabbitMQ = nil
	} else {
		log.Println("Successfully connected to RabbitMQ")
	}

	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Logger:         zapLogger,
		Logrus:         log,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}

	registry := bootstrapingTheApp(bootstrap)

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		log.Printf("Server listening on %s", internalConfig.App.Port)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer shutdownCancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	registry.CloseAll()
	log.Println("Successfully closed open appointment flows")

	err = bootstrap.Shutdown(shutdownCtx)
	if err != nil {
		log.Errorf("Error shutting down drivers: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) *service_assignment.Registry {
	flowConfig := bootstrap.InternalConfig.Flow

	// Redis
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockService := locker.NewLockService(redisRepository, bootstrap.Logger)

	// Clinic API
	clinicClient := clinic_api.NewClient(bootstrap.InternalConfig.ClinicAPI, bootstrap.Logger)
	appointmentSource := appointments.NewAppointmentClinicClient(clinicClient, bootstrap.Logger)
	catalogSource := catalog_cache.NewCatalogCache(
		catalog.NewCatalogClinicClient(clinicClient, bootstrap.Logger),
		redisRepository,
		time.Duration(flowConfig.CatalogCacheTTLInSeconds)*time.Second,
		bootstrap.Logger,
	)
	assignmentSource := assignments.NewAssignmentClinicClient(clinicClient, bootstrap.Logger)

	// Receipts
	var receiptPublisher contracts.ReceiptPublisher
	if bootstrap.RabbitMQ != nil && flowConfig.PublishReceipts {
		publisher, err := receipts.NewReceiptPublisher(bootstrap.RabbitMQ, bootstrap.InternalConfig.RabbitMQ.ReceiptQueue, bootstrap.Logger)
		if err != nil {
			bootstrap.Logger.Warn("bootstrap receipt publisher disabled", zap.Error(err))
		} else {
			receiptPublisher = publisher
		}
	}
	receiptRepository := receipts.NewReceiptMongoRepository(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)

	// Service assignment
	registry := service_assignment.NewRegistry(bootstrap.Logger)
	worker := service_assignment.NewWorker(bootstrap.Logger, bootstrap.InternalConfig, registry)
	bootstrap.WorkerStop = worker.Start(context.Background())

	sources := service_assignment.FlowSources{
		Appointments: appointmentSource,
		Catalog:      catalogSource,
		Assignments:  assignmentSource,
		Writer: service_assignment.NewLockedAssignmentWriter(
			assignmentSource,
			lockService,
			time.Duration(flowConfig.SubmissionLockTTLInSeconds)*time.Second,
			bootstrap.Logger,
		),
	}
	serviceAssignmentUsecase := service_assignment.NewServiceAssignmentUsecase(
		registry,
		sources,
		receiptPublisher,
		receiptRepository,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)

	// Delivery
	middlewares := middlewares.NewMiddlewares(bootstrap.Logger, bootstrap.Logrus, bootstrap.InternalConfig)
	serviceAssignmentController := controllers.NewServiceAssignmentController(
		bootstrap.Logger,
		serviceAssignmentUsecase,
		time.Duration(bootstrap.InternalConfig.App.RequestTimeoutInSeconds)*time.Second,
	)

	routers.SetupRoutes(bootstrap.Router, bootstrap.InternalConfig, middlewares, serviceAssignmentController)
	return registry
}
