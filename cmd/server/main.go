package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/postpilot/autopost/configs"
	"github.com/postpilot/autopost/internal/api/handlers"
	"github.com/postpilot/autopost/internal/api/middleware"
	job "github.com/postpilot/autopost/internal/jobs"
	"github.com/postpilot/autopost/internal/notify"
	"github.com/postpilot/autopost/internal/publisher"
	"github.com/postpilot/autopost/internal/queue"
	"github.com/postpilot/autopost/internal/repository"
	"github.com/postpilot/autopost/internal/service"
	"github.com/postpilot/autopost/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer redisClient.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	autoListRepo := repository.NewAutoListRepository(db)
	entryRepo := repository.NewAutoListEntryRepository(db)
	mediaPostRepo := repository.NewMediaPostRepository(db)
	publicationRepo := repository.NewPublicationRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)

	credStore := service.NewCredentialStore(cfg.CredentialKey)
	mediaStorage := storage.NewR2Storage(*cfg)
	notifier := notify.NewRedisNotifier(redisClient)
	factory := publisher.NewFactory(*cfg)
	enqueuer := queue.NewEnqueuer(client)

	autoListService := service.NewAutoListService(autoListRepo, entryRepo, socialAccountRepo)
	publicationService := service.NewPublicationService(publicationRepo, mediaPostRepo, socialAccountRepo, autoListRepo, factory, credStore, mediaStorage, notifier, enqueuer)
	orchestrator := service.NewPublicationOrchestrator(db, entryRepo, autoListRepo, mediaPostRepo, publicationRepo, enqueuer)
	scanner := service.NewTriggerScanner(entryRepo)
	connectService := service.NewConnectService(*cfg, db, socialAccountRepo, credStore)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	connection := handlers.NewConnectionHandler(connectService, *cfg)
	app.Get("/connections/:project_id/auth-url", connection.GetAuthURL)
	app.Get("/connections/callback", connection.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	autoList := handlers.NewAutoListHandler(autoListService)
	api.Post("/autolists", autoList.CreateAutoList)
	api.Get("/autolists", autoList.ListAutoLists)
	api.Get("/autolists/:id", autoList.GetAutoList)
	api.Put("/autolists/:id", autoList.UpdateAutoList)
	api.Delete("/autolists/:id", autoList.RemoveAutoList)
	api.Post("/autolistentries", autoList.CreateEntry)
	api.Put("/autolistentries/:id", autoList.UpdateEntry)
	api.Delete("/autolistentries/:id", autoList.RemoveEntry)

	publication := handlers.NewPublicationHandler(publicationService)
	api.Post("/publications/publish", publication.PublishNow)
	api.Get("/publications/:id", publication.GetPublication)

	// cron jobs
	autoListJob := job.NewAutoListJob(scanner, orchestrator)
	refreshTokenJob := job.NewTokenRefreshJob(connectService)

	//queue
	queueW := queue.NewQueue(publicationService)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", autoListJob.Tick)
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishRecord, queueW.HandlePublishTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
