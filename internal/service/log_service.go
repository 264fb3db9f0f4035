package service

import (
	"context"
	"fmt"

	apperrors "armory/internal/errors"
	"armory/internal/model"
	"armory/internal/repository"
)

// ErrLogEntryNotFound is returned for unknown or foreign audit entries.
var ErrLogEntryNotFound = apperrors.NotFound("Log entry not found")

// LogService reads the audit trail. Entries are written only by Scan.
type LogService interface {
	ListForUser(ctx context.Context, userID uint) ([]model.InventoryLogEntry, error)
	GetForUser(ctx context.Context, id, userID uint) (*model.InventoryLogEntry, error)
}

type logService struct {
	repo repository.InventoryLogRepository
}

// NewLogService creates a read-only audit log service.
func NewLogService(repo repository.InventoryLogRepository) LogService {
	return &logService{repo: repo}
}

// ListForUser returns the user's entries, most recent first.
func (s *logService) ListForUser(ctx context.Context, userID uint) ([]model.InventoryLogEntry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list inventory logs: %w", err)
	}
	return entries, nil
}

func (s *logService) GetForUser(ctx context.Context, id, userID uint) (*model.InventoryLogEntry, error) {
	entry, err := s.repo.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrLogEntryNotFound, "get inventory log")
	}
	return entry, nil
}
