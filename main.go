package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"template-engine-service/config"
	"template-engine-service/server"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.LoadConfig()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Logger setup failed: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Create and start server
	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("server setup failed", zap.Error(err))
	}

	logger.Info("Template Engine Service starting")
	if err := srv.Start(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// buildLogger constructs the process logger from the logging configuration.
// Unknown levels fall back to info instead of failing startup.
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
