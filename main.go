// main.go
package main

import (
	"log"

	"gym-booking/cmd"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/schedule"
	"gym-booking/internal/wire"
	"gym-booking/internal/worker"
	"gym-booking/pkg/database"
	"gym-booking/pkg/rabbitmq"
	"gym-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("timezone", config.Schedule.Timezone),
	)

	policy, err := schedule.NewPolicy(config.Schedule)
	if err != nil {
		logger.Fatal("Invalid schedule configuration", zap.Error(err))
	}

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Domain events are optional
	var events rabbitmq.EventPublisher = rabbitmq.Noop{}
	if config.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewPublisher(config.RabbitMQ.URL, config.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(db, repos, config, policy, events, logger)

	scheduler, err := worker.NewScheduler(config.Sweeper, app.Service.NoShow, repos.Session, logger)
	if err != nil {
		logger.Fatal("Failed to create scheduler", zap.Error(err))
	}
	scheduler.Start()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(app.Router, config.App, logger, scheduler.Stop); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}
