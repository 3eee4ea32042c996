// Package store persists poem templates and implements poem.Store on top of gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/poem"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no template matches the id (and owner scope).
var ErrNotFound = errors.New("template not found")

// MaxPageSize caps List and Browse page sizes.
const MaxPageSize = 50

// DefaultPageSize is used when a caller passes a non-positive limit.
const DefaultPageSize = 10

// TemplateStore reads and writes poem templates.
type TemplateStore struct {
	db *gorm.DB
}

var _ poem.Store = (*TemplateStore)(nil)

// NewTemplateStore creates a TemplateStore on db.
func NewTemplateStore(db *gorm.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// DB returns the underlying GORM DB.
func (s *TemplateStore) DB() *gorm.DB {
	return s.db
}

// Create validates text and inserts a new template owned by ownerID (nil for
// system templates). max_friend_required is written in the same insert.
func (s *TemplateStore) Create(ctx context.Context, ownerID *uuid.UUID, text, instructions string) (*models.Template, error) {
	analysis, err := poem.ValidateAndAnalyze(text)
	if err != nil {
		return nil, err
	}

	n := analysis.MaxFriendIndexRequired
	t := models.Template{
		Text:              text,
		Instructions:      instructions,
		OwnerID:           ownerID,
		MaxFriendRequired: &n,
	}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return &t, nil
}

// Update validates text and rewrites text, instructions and
// max_friend_required in a single UPDATE. When ownerID is non-nil only a
// template owned by that user matches. Returns false when nothing matched.
func (s *TemplateStore) Update(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID, text, instructions string) (bool, error) {
	analysis, err := poem.ValidateAndAnalyze(text)
	if err != nil {
		return false, err
	}

	q := s.db.WithContext(ctx).Model(&models.Template{}).Where("id = ?", id)
	if ownerID != nil {
		q = q.Where("owner_id = ?", *ownerID)
	}
	res := q.Updates(map[string]interface{}{
		"text":                text,
		"instructions":        instructions,
		"max_friend_required": analysis.MaxFriendIndexRequired,
	})
	if res.Error != nil {
		return false, fmt.Errorf("update template %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a template. When ownerID is non-nil only a template owned by
// that user matches. Returns false when nothing matched.
func (s *TemplateStore) Delete(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (bool, error) {
	q := s.db.WithContext(ctx).Where("id = ?", id)
	if ownerID != nil {
		q = q.Where("owner_id = ?", *ownerID)
	}
	res := q.Delete(&models.Template{})
	if res.Error != nil {
		return false, fmt.Errorf("delete template %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Get returns a template by id.
func (s *TemplateStore) Get(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var t models.Template
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return &t, nil
}

// ListOptions filters and pages List.
type ListOptions struct {
	OwnerID *uuid.UUID
	Query   string // case-insensitive substring of the text
	Page    int    // 1-based
	Limit   int
}

// Page is one page of templates, newest first.
type Page struct {
	Items []models.Template `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// List returns a page of templates matching opts, newest first.
func (s *TemplateStore) List(ctx context.Context, opts ListOptions) (*Page, error) {
	page, limit := normalizePaging(opts.Page, opts.Limit)

	q := s.db.WithContext(ctx).Model(&models.Template{})
	if opts.OwnerID != nil {
		q = q.Where("owner_id = ?", *opts.OwnerID)
	}
	if term := strings.TrimSpace(opts.Query); term != "" {
		q = q.Where(`LOWER(text) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(term))+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count templates: %w", err)
	}

	items := make([]models.Template, 0, limit)
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return &Page{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Browse is the public listing: every template, optionally searched.
func (s *TemplateStore) Browse(ctx context.Context, query string, page, limit int) (*Page, error) {
	return s.List(ctx, ListOptions{Query: query, Page: page, Limit: limit})
}

// ListByOwner returns a page of the owner's templates.
func (s *TemplateStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) (*Page, error) {
	return s.List(ctx, ListOptions{OwnerID: &ownerID, Page: page, Limit: limit})
}

// Sample returns up to n templates in random order.
func (s *TemplateStore) Sample(ctx context.Context, n int) ([]models.Template, error) {
	if n <= 0 {
		return []models.Template{}, nil
	}
	items := make([]models.Template, 0, n)
	if err := s.db.WithContext(ctx).Order("RANDOM()").Limit(n).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("sample templates: %w", err)
	}
	return items, nil
}

// Count returns the number of stored templates.
func (s *TemplateStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Template{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return n, nil
}

// RandomMatching returns a uniformly random template whose
// max_friend_required equals n, or nil when there is none.
func (s *TemplateStore) RandomMatching(ctx context.Context, n int) (*poem.Candidate, error) {
	return s.random(s.db.WithContext(ctx).Where("max_friend_required = ?", n))
}

// RandomAny returns a uniformly random template, or nil when the store is empty.
func (s *TemplateStore) RandomAny(ctx context.Context) (*poem.Candidate, error) {
	return s.random(s.db.WithContext(ctx))
}

func (s *TemplateStore) random(q *gorm.DB) (*poem.Candidate, error) {
	var rows []models.Template
	if err := q.Select("id", "text").Order("RANDOM()").Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select random template: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].Candidate(), nil
}

// IncrementUsage atomically adds one to usage_count.
func (s *TemplateStore) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Template{}).Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment usage for %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
