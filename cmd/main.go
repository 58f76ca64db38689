package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"treehouse-service/internal/api/handlers"
	"treehouse-service/internal/config"
	"treehouse-service/internal/database/minio"
	"treehouse-service/internal/database/mongo"
	"treehouse-service/internal/database/redis"
	"treehouse-service/internal/events"
	"treehouse-service/internal/repository"
	"treehouse-service/internal/service"
	"treehouse-service/pkg/discovery"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/treehouse", "log", "treehouse_service")
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.Load()

	if err := mongo.InitMongoDB(&cfg.MongoDB); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	if err := minio.InitMinioClient(&cfg.MinIO); err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	if err := redis.InitRedisClient(&cfg.Redis); err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"*"},
	}))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Treehouse Service is healthy")
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	groupRepo := repository.NewGroupRepository()
	pictureRepo := repository.NewPictureRepository()
	redisRepo := repository.NewRedisRepo()

	// Create database indexes
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := userRepo.CreateIndexes(ctx); err != nil {
		log.Printf("Warning: Failed to create user indexes: %v", err)
	}
	if err := groupRepo.CreateIndexes(ctx); err != nil {
		log.Printf("Warning: Failed to create group indexes: %v", err)
	}
	if err := pictureRepo.CreateIndexes(ctx); err != nil {
		log.Printf("Warning: Failed to create picture indexes: %v", err)
	}
	cancel()

	eventPublisher, err := events.NewEventPublisher(cfg.RabbitMQ.URI)
	if err != nil {
		log.Printf("Warning: Failed to initialize event publisher: %v", err)
		// Fall back to a disabled publisher so services can still run
		eventPublisher, _ = events.NewEventPublisher("")
	}

	eventConsumer, err := events.NewEventConsumer(cfg.RabbitMQ.URI, userRepo)
	if err != nil {
		log.Printf("Warning: Failed to initialize event consumer: %v", err)
	} else {
		if err := eventConsumer.Start(); err != nil {
			log.Printf("Warning: Failed to start event consumer: %v", err)
			eventConsumer.Close()
		} else {
			log.Println("Successfully started event consumer")
			defer eventConsumer.Close()
		}
	}

	// Initialize services
	urlResolver := service.NewURLResolver(redisRepo, &cfg.MinIO)
	userService := service.NewUserService(userRepo, redisRepo, urlResolver, eventPublisher)
	groupService := service.NewGroupService(groupRepo, userRepo, urlResolver, eventPublisher)
	photoService := service.NewPhotoService(pictureRepo, groupRepo, userRepo, redisRepo, urlResolver, eventPublisher, cfg)

	// Initialize and register handlers
	userHandler := handlers.NewUserHandler(userService, photoService)
	userHandler.RegisterRoutes(app)

	groupHandler := handlers.NewGroupHandler(groupService, photoService, userService)
	groupHandler.RegisterRoutes(app)

	pictureHandler := handlers.NewPictureHandler(photoService)
	pictureHandler.RegisterRoutes(app)

	// Register with service discovery
	serviceRegistry, err := discovery.NewServiceRegistry(cfg)
	if err != nil {
		log.Printf("Warning: Failed to create service registry: %v", err)
	} else {
		if err := serviceRegistry.Register(); err != nil {
			log.Printf("Warning: Failed to register with Consul: %v", err)
		}
	}

	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)

	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := app.Listen(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
		doneChan <- true
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if eventPublisher != nil {
		if err := eventPublisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	}

	redis.CloseRedis()
	mongo.CloseDB()

	if serviceRegistry != nil {
		if err := serviceRegistry.Deregister(); err != nil {
			log.Printf("Error deregistering from service discovery: %v", err)
		}
	}

	<-doneChan
	log.Println("Server shutdown complete")
}
