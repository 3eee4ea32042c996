package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bakchoddost/bakchoddost/internal/audit"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/poem"
	"github.com/bakchoddost/bakchoddost/internal/rbac"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateService contains the business logic for poem templates.
type TemplateService struct {
	db        *gorm.DB
	templates *store.TemplateStore
	selector  *poem.Selector
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(db *gorm.DB, templates *store.TemplateStore, selector *poem.Selector) *TemplateService {
	return &TemplateService{db: db, templates: templates, selector: selector}
}

// Generate picks a fitting template and renders it with the given names.
func (s *TemplateService) Generate(ctx context.Context, userName string, friendNames []string) (*poem.Result, error) {
	return s.selector.Generate(ctx, userName, friendNames)
}

// Validate checks template text without storing it.
func (s *TemplateService) Validate(text string) (poem.Analysis, error) {
	return poem.ValidateAndAnalyze(text)
}

// Trending renders a few random templates with demo names.
func (s *TemplateService) Trending(ctx context.Context) ([]TrendingPoem, error) {
	items, err := s.templates.Sample(ctx, TrendingCount)
	if err != nil {
		return nil, err
	}
	out := make([]TrendingPoem, 0, len(items))
	for _, t := range items {
		out = append(out, TrendingPoem{
			TemplateID: t.ID.String(),
			Text:       poem.Render(t.Text, TrendingUserName, TrendingFriendNames),
		})
	}
	return out, nil
}

// Browse lists every template, newest first, optionally searched.
func (s *TemplateService) Browse(ctx context.Context, query string, page, limit int) (*store.Page, error) {
	return s.templates.Browse(ctx, query, page, limit)
}

// ListMine lists the caller's own templates.
func (s *TemplateService) ListMine(ctx context.Context, userID uuid.UUID, page, limit int) (*store.Page, error) {
	return s.templates.ListByOwner(ctx, userID, page, limit)
}

// Get returns a template the user may see: their own, or any for admins.
func (s *TemplateService) Get(ctx context.Context, id, userID uuid.UUID) (*models.Template, error) {
	t, _, err := s.load(ctx, id, userID)
	return t, err
}

// load fetches a template and the owner scope the user may write it with.
func (s *TemplateService) load(ctx context.Context, id, userID uuid.UUID) (*models.Template, *uuid.UUID, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	scope, err := s.ownerScope(t, userID)
	if err != nil {
		return nil, nil, err
	}
	return t, scope, nil
}

// Create validates and stores a new template owned by userID.
func (s *TemplateService) Create(ctx context.Context, req TemplateRequest, userID uuid.UUID) (*models.Template, error) {
	t, err := s.templates.Create(ctx, &userID, req.Text, req.Instructions)
	if err != nil {
		return nil, err
	}

	audit.LogAction(s.db, userID, audit.ActionCreateTemplate, audit.TemplateResource(t.ID), map[string]interface{}{
		"max_friend_required": *t.MaxFriendRequired,
	})
	return t, nil
}

// Update replaces text and instructions. Owners may edit their templates,
// admins any template.
func (s *TemplateService) Update(ctx context.Context, id uuid.UUID, req TemplateRequest, userID uuid.UUID) (*models.Template, error) {
	_, scope, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	ok, err := s.templates.Update(ctx, id, scope, req.Text, req.Instructions)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	updated, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload template: %w", err)
	}
	audit.LogAction(s.db, userID, audit.ActionUpdateTemplate, audit.TemplateResource(id), map[string]interface{}{
		"max_friend_required": *updated.MaxFriendRequired,
	})
	return updated, nil
}

// Delete removes a template the user owns (admins: any template).
func (s *TemplateService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	_, scope, err := s.load(ctx, id, userID)
	if err != nil {
		return err
	}

	ok, err := s.templates.Delete(ctx, id, scope)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	audit.LogAction(s.db, userID, audit.ActionDeleteTemplate, audit.TemplateResource(id), nil)
	return nil
}

// ownerScope returns the owner filter for writes: nil for admins, the user's
// id for owners, ErrForbidden for everyone else.
func (s *TemplateService) ownerScope(t *models.Template, userID uuid.UUID) (*uuid.UUID, error) {
	isAdmin, err := rbac.IsAdmin(userID)
	if err != nil {
		return nil, fmt.Errorf("check admin: %w", err)
	}
	if isAdmin {
		return nil, nil
	}
	if t.OwnerID != nil && *t.OwnerID == userID {
		return &userID, nil
	}
	return nil, ErrForbidden
}
