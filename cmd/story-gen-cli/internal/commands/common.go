package commands

import (
	"fmt"

	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence/models"
	"github.com/JayHzn/ai-story-generator/internal/pkg/config"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"gorm.io/gorm"
)

// In commands/common.go
func setupLogger() (logger.Logger, error) {
	settings := &config.LoggerSettings{
		LogLevel: "info",
		LogType:  "console",
		FilePath: "",
	}

	if err := logger.InitLogger(settings); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loggerInstance, err := logger.GetLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get logger instance: %w", err)
	}

	return loggerInstance, nil
}

// openDatabase opens the sqlite registry the CLI commands share and runs
// the schema migrations.
func openDatabase(dsn string) (*gorm.DB, error) {
	db, err := persistence.NewDBConnection(config.DatabaseSettings{
		Type: config.SqliteDbType,
		DSN:  dsn,
		Name: "story_gen",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dsn, err)
	}

	if err := db.AutoMigrate(&models.DocumentModel{}, &models.AnnotationModel{}, &models.ModelMetaModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
