package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/apperrors"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/database"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/repository"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/version"
)

// SystemService reports health and build information.
type SystemService struct {
	db           *sql.DB
	universeRepo *repository.UniverseRepository
	benchmark    string
	features     map[string]bool
}

// NewSystemService creates a new SystemService.
// benchmark and features are reported verbatim by CheckVersion.
func NewSystemService(
	db *sql.DB,
	universeRepo *repository.UniverseRepository,
	benchmark string,
	features map[string]bool,
) *SystemService {
	if features == nil {
		features = map[string]bool{}
	}
	return &SystemService{
		db:           db,
		universeRepo: universeRepo,
		benchmark:    benchmark,
		features:     features,
	}
}

// CheckHealth pings the database and reports whether a universe is stored.
// A missing universe is not unhealthy; a backtest never needs it.
func (s *SystemService) CheckHealth(ctx context.Context) (model.HealthStatus, error) {
	if err := database.HealthCheck(ctx, s.db); err != nil {
		return model.HealthStatus{Status: "unhealthy", Database: "disconnected", Error: err.Error()}, err
	}

	status := model.HealthStatus{Status: "healthy", Database: "connected", Universe: model.UniverseLoaded}
	_, err := s.universeRepo.LatestRefresh(ctx)
	switch {
	case errors.Is(err, apperrors.ErrUniverseNotFound):
		status.Universe = model.UniverseEmpty
	case err != nil:
		return model.HealthStatus{Status: "unhealthy", Database: "connected", Error: err.Error()}, err
	}
	return status, nil
}

// CheckVersion reports the application version, the schema version, pending migrations
// and when the universe was last refreshed.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	current, pending, err := database.Version(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetVersionInfo, err)
	}

	info := model.VersionInfo{
		AppVersion:        version.Version,
		SchemaVersion:     current,
		MigrationsPending: pending,
		Benchmark:         s.benchmark,
		Features:          s.features,
	}

	refresh, err := s.universeRepo.LatestRefresh(ctx)
	switch {
	case err == nil:
		info.UniverseUpdatedAt = refresh.FinishedAt
	case !errors.Is(err, apperrors.ErrUniverseNotFound):
		return model.VersionInfo{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetVersionInfo, err)
	}
	return info, nil
}
