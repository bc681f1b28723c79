package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sidesales/sidesales-backend/internal/database"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// GetVersionInfo reports the application version and whether the schema is behind
// the migrations embedded in the binary.
func (s *SystemService) GetVersionInfo(ctx context.Context) (model.VersionInfo, error) {
	current, latest, err := database.Versions(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("failed to read schema version: %w", err)
	}

	return model.VersionInfo{
		AppVersion:      version.Version,
		DbVersion:       current,
		LatestDbVersion: latest,
		MigrationNeeded: current < latest,
	}, nil
}
