package services

import (
	"context"
	"fmt"

	"github.com/vukatravels/site/models"
	"github.com/vukatravels/site/repositories"
)

// ActivityService reports recent request and revalidation history
type ActivityService interface {
	Recent(ctx context.Context, limit int) (*models.Activity, error)
}

type activityService struct {
	audit         repositories.AuditRepository
	revalidations repositories.RevalidationRepository
}

// NewActivityService creates a new activity service
func NewActivityService(audit repositories.AuditRepository, revalidations repositories.RevalidationRepository) ActivityService {
	return &activityService{audit: audit, revalidations: revalidations}
}

func (s *activityService) Recent(ctx context.Context, limit int) (*models.Activity, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	entries, err := s.audit.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit log: %w", err)
	}
	records, err := s.revalidations.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load revalidation history: %w", err)
	}

	if entries == nil {
		entries = []models.AuditLogEntry{}
	}
	if records == nil {
		records = []models.RevalidationRecord{}
	}
	return &models.Activity{Audit: entries, Revalidations: records}, nil
}
