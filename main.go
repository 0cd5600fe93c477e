package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pasarhub/internal/config"
	"pasarhub/internal/handlers"
	"pasarhub/internal/middleware"
	"pasarhub/internal/models"
	"pasarhub/internal/repositories"
	"pasarhub/internal/services"
	"pasarhub/pkg/mail"
	"pasarhub/pkg/payment"
	"pasarhub/pkg/rabbitmq"
	"pasarhub/pkg/realtime"
	"pasarhub/pkg/storage"
)

func main() {
	cfg := config.Load()

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional; realtime fan-out is disabled without it) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set; event publishing disabled")
	}

	// --- Redis cache (optional) ---
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	} else {
		log.Println("REDIS_ADDR not set; product cache and view dedup fast path disabled")
	}

	// --- Attachment storage ---
	blobStore, err := storage.NewLocalStore(cfg.StorageDir, cfg.StorageBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize attachment storage: %v", err)
	}

	// --- Outbound mail (optional) ---
	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
	} else {
		log.Println("SMTP_HOST not set; receipt email disabled")
	}

	// --- Payment gateway (optional; COD still works without it) ---
	var gateway payment.Gateway
	if cfg.PaymentAPIKey != "" {
		gateway = payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentAPIKey)
	} else {
		log.Println("PAYMENT_API_KEY not set; online payment disabled")
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	couponRepo := repositories.NewGORMCouponRepository(db)
	addressRepo := repositories.NewGORMAddressRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	convRepo := repositories.NewGORMConversationRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	catalogService := services.NewCatalogService(productRepo, cache)
	cartService := services.NewCartService(productRepo)
	addressService := services.NewAddressService(addressRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, couponRepo, addressRepo, userRepo, gateway, mailer, mqClient)
	messagingService := services.NewMessagingService(convRepo, productRepo, blobStore, mqClient)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, cartService)
	addressHandler := handlers.NewAddressHandler(addressService)
	orderHandler := handlers.NewOrderHandler(orderService)
	messagingHandler := handlers.NewMessagingHandler(messagingService)
	realtimeHandler := handlers.NewRealtimeHandler(
		realtime.NewAuthorizer(cfg.PusherAppID, cfg.PusherAppKey, cfg.PusherSecret, cfg.PusherCluster),
		authService,
	)

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		BodyLimit: 52 * 1024 * 1024, // video uploads top out at 50MB
	})
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	catalogHandler.RegisterRoutes(apiV1)

	// Protected routes
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterCustomerRoutes(protected)
	addressHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	messagingHandler.RegisterRoutes(protected)

	// Channel auth lives outside /api/v1; the pub/sub client library
	// posts here directly.
	realtimeHandler.RegisterRoutes(app.Group("/api", middleware.AuthRequired(authService)))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Notification consumer ---
	// Drains the notification queue and forwards events to the push
	// tier. Kept in-process here; a larger deployment would run it as
	// its own worker.
	if mqClient != nil {
		go func() {
			log.Println("Starting notification consumer...")
			err := mqClient.ConsumeEvents(func(msg amqp.Delivery) error {
				log.Printf("Notification event (tag %d): %s", msg.DeliveryTag, msg.Body)
				return nil
			})
			if err != nil {
				log.Printf("Notification consumer stopped: %v", err)
			}
		}()
	}

	// --- Start HTTP server with graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// autoMigrate keeps the schema in sync with the models.
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.Address{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductSpecification{},
		&models.ProductDiscount{},
		&models.NewArrivalDiscount{},
		&models.ProductView{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.Conversation{},
		&models.ParticipantConversation{},
		&models.Message{},
		&models.MessageSeen{},
		&models.AutomatedResponse{},
	)
}
