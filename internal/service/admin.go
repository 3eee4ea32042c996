package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bakchoddost/bakchoddost/internal/audit"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/queue"
	"github.com/bakchoddost/bakchoddost/internal/rbac"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminService contains operator-only operations.
type AdminService struct {
	db    *gorm.DB
	queue queue.Queue
}

// NewAdminService creates a new AdminService.
func NewAdminService(db *gorm.DB, q queue.Queue) *AdminService {
	return &AdminService{db: db, queue: q}
}

// UserWithRole is a user plus whether they hold the admin role.
type UserWithRole struct {
	models.User
	IsAdmin bool `json:"is_admin"`
}

// ListUsers returns every user, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]UserWithRole, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	admins, err := rbac.GetAllAdminUserIDs()
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}

	out := make([]UserWithRole, 0, len(users))
	for _, u := range users {
		out = append(out, UserWithRole{User: u, IsAdmin: admins[u.ID]})
	}
	return out, nil
}

// ListAuditLogs returns the most recent audit entries, optionally for one user.
func (s *AdminService) ListAuditLogs(ctx context.Context, userID *uuid.UUID, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}

// StartBackfill records and queues a max_friend_required backfill job.
func (s *AdminService) StartBackfill(ctx context.Context, req BackfillRequest, userID uuid.UUID) (*models.Job, error) {
	if req.BatchSize < 0 {
		return nil, &ValidationError{Message: "batch_size must not be negative"}
	}

	metadata := map[string]interface{}{"recompute_all": req.RecomputeAll}
	if req.BatchSize > 0 {
		metadata["batch_size"] = req.BatchSize
	}
	job := &models.Job{
		Type:        models.JobTypeBackfillFit,
		Status:      models.JobStatusPending,
		RequestedBy: &userID,
		Metadata:    metadata,
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	audit.LogAction(s.db, userID, audit.ActionStartBackfill, fmt.Sprintf("job:%s", job.ID), metadata)
	return job, nil
}

// GetJob returns a job by id.
func (s *AdminService) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}
