package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
)

const (
	healthPingTimeout = 3 * time.Second

	statusOperational = "operational"
	statusHealthy     = "healthy"
	statusUnhealthy   = "unhealthy"
	dbConnected       = "connected"
	dbDisconnected    = "disconnected"
)

type HealthRepository interface {
	Ping(ctx context.Context, ext repository.RepoExtension) error
}

type HealthService struct {
	log         *zap.Logger
	healthRepo  HealthRepository
	serviceName string
	version     string
}

func NewHealthService(log *zap.Logger, healthRepo HealthRepository, serviceName, version string) *HealthService {
	return &HealthService{
		log:         log,
		healthRepo:  healthRepo,
		serviceName: serviceName,
		version:     version,
	}
}

func (s *HealthService) Info() model.ServiceInfo {
	return model.ServiceInfo{
		Message: s.serviceName,
		Version: s.version,
		Status:  statusOperational,
	}
}

// Check pings the database. ok is false when it is unreachable.
func (s *HealthService) Check(ctx context.Context) (status model.HealthStatus, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	if err := s.healthRepo.Ping(ctx, nil); err != nil {
		s.log.Error("health check failed", zap.Error(err))

		return model.HealthStatus{
			Status:   statusUnhealthy,
			Database: dbDisconnected,
			Version:  s.version,
			Error:    err.Error(),
		}, false
	}

	return model.HealthStatus{
		Status:   statusHealthy,
		Database: dbConnected,
		Version:  s.version,
	}, true
}
