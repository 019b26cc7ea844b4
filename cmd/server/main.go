package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forgefit/gym-api/internal/api"
	"forgefit/gym-api/internal/config"
	"forgefit/gym-api/internal/repository/mongo"
	"forgefit/gym-api/internal/service"
	"forgefit/gym-api/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting gym API server...")

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureGymIndexes(ctx, appDB.Collection("gyms"))
		mongo.EnsureMembershipIndexes(ctx, appDB.Collection("gym_memberships"))
		mongo.EnsureLocationIndexes(ctx, appDB.Collection("locations"))
		mongo.EnsureClientIndexes(ctx, appDB.Collection("clients"))
		mongo.EnsureProgramIndexes(ctx, appDB.Collection("programs"))
		mongo.EnsureBenchmarkTemplateIndexes(ctx, appDB.Collection("benchmark_templates"))
		mongo.EnsureScheduleIndexes(ctx, appDB.Collection("weekly_schedules"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("workout_sessions"))
		mongo.EnsurePhotoIndexes(ctx, appDB.Collection("progress_photos"))
		log.Println("Index creation process completed.")
	}()

	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	userRepo := mongo.NewMongoUserRepository(appDB)
	gymRepo := mongo.NewMongoGymRepository(appDB)
	membershipRepo := mongo.NewMongoMembershipRepository(appDB)
	locationRepo := mongo.NewMongoLocationRepository(appDB)
	clientRepo := mongo.NewMongoClientRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)
	templateRepo := mongo.NewMongoBenchmarkTemplateRepository(appDB)
	scheduleRepo := mongo.NewMongoScheduleRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	photoRepo := mongo.NewMongoPhotoRepository(appDB)

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	gymService := service.NewGymService(gymRepo, membershipRepo, locationRepo, userRepo, scheduleRepo)
	clientService := service.NewClientService(clientRepo, templateRepo, photoRepo, fileStorage)
	programService := service.NewProgramService(programRepo, clientRepo)
	progressionService := service.NewProgressionService(clientRepo, programRepo)
	scheduleService := service.NewScheduleService(scheduleRepo, clientRepo)
	workoutService := service.NewWorkoutService(sessionRepo, clientRepo, programRepo)

	router := gin.Default()

	api.SetupRoutes(router, cfg.JWT.Secret,
		authService, gymService, clientService, programService,
		progressionService, scheduleService, workoutService)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
