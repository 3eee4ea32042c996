package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/poem"
	"github.com/bakchoddost/bakchoddost/internal/queue"
	"github.com/bakchoddost/bakchoddost/internal/rbac"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db        *gorm.DB
	templates *TemplateService
	admin     *AdminService
	queue     *queue.MemoryQueue
}

// testSetup creates a temp DB, migrates models, initializes RBAC,
// and returns services ready for testing.
func testSetup(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Template{}, &models.Job{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// RBAC enforcer is global; initialize per test
	if err := rbac.InitEnforcer(db, slog.Default()); err != nil {
		t.Fatalf("init rbac: %v", err)
	}

	q := queue.NewMemoryQueue(10)
	t.Cleanup(func() { q.Close() })

	st := store.NewTemplateStore(db)
	sel := poem.NewSelector(st, slog.Default(), nil)
	return &testEnv{
		db:        db,
		templates: NewTemplateService(db, st, sel),
		admin:     NewAdminService(db, q),
		queue:     q,
	}
}

// createTestUser inserts a user and returns its ID.
func createTestUser(t *testing.T, db *gorm.DB, email string) uuid.UUID {
	t.Helper()
	user := models.User{Email: &email}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

func TestCreateTemplate_ValidatesAndAudits(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	user := createTestUser(t, env.db, "a@test.com")

	tpl, err := env.templates.Create(ctx, TemplateRequest{Text: "{{userName}} & {{friendName2}}"}, user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if *tpl.OwnerID != user || *tpl.MaxFriendRequired != 2 {
		t.Errorf("owner=%v max=%d", tpl.OwnerID, *tpl.MaxFriendRequired)
	}

	var logs []models.AuditLog
	env.db.Find(&logs)
	if len(logs) != 1 || logs[0].Action != "create_template" {
		t.Errorf("audit logs = %+v", logs)
	}

	_, err = env.templates.Create(ctx, TemplateRequest{Text: "{{foo}} {{bar}}"}, user)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "unknown placeholders: foo, bar" {
		t.Errorf("err = %v, want unknown placeholders", err)
	}
}

func TestUpdateDelete_Ownership(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	owner := createTestUser(t, env.db, "owner@test.com")
	other := createTestUser(t, env.db, "other@test.com")
	admin := createTestUser(t, env.db, "admin@test.com")
	if err := rbac.MakeAdmin(admin); err != nil {
		t.Fatalf("MakeAdmin: %v", err)
	}

	tpl, err := env.templates.Create(ctx, TemplateRequest{Text: "{{friendName1}}"}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := env.templates.Update(ctx, tpl.ID, TemplateRequest{Text: "x"}, other); !errors.Is(err, ErrForbidden) {
		t.Errorf("other update err = %v, want ErrForbidden", err)
	}
	if _, err := env.templates.Get(ctx, tpl.ID, other); !errors.Is(err, ErrForbidden) {
		t.Errorf("other get err = %v, want ErrForbidden", err)
	}

	updated, err := env.templates.Update(ctx, tpl.ID, TemplateRequest{Text: "{{friendName3}}"}, owner)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if *updated.MaxFriendRequired != 3 {
		t.Errorf("max after update = %d, want 3", *updated.MaxFriendRequired)
	}

	if _, err := env.templates.Update(ctx, tpl.ID, TemplateRequest{Text: "{{friendName1}} again"}, admin); err != nil {
		t.Errorf("admin update: %v", err)
	}

	if err := env.templates.Delete(ctx, tpl.ID, other); !errors.Is(err, ErrForbidden) {
		t.Errorf("other delete err = %v", err)
	}
	if err := env.templates.Delete(ctx, tpl.ID, admin); err != nil {
		t.Errorf("admin delete: %v", err)
	}
	if err := env.templates.Delete(ctx, tpl.ID, owner); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete of deleted template err = %v, want ErrNotFound", err)
	}
}

func TestGenerate_EndToEnd(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	user := createTestUser(t, env.db, "a@test.com")

	if _, err := env.templates.Generate(ctx, "Raj", nil); !errors.Is(err, poem.ErrNoTemplates) {
		t.Fatalf("empty store err = %v, want ErrNoTemplates", err)
	}

	tpl, _ := env.templates.Create(ctx, TemplateRequest{Text: "{{userName}} ke dost {{friendName1}} aur {{friendName2}}"}, user)

	res, err := env.templates.Generate(ctx, "Raj", []string{"Amit", " Sumit "})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Text != "Raj ke dost Amit aur Sumit" || res.TemplateID != tpl.ID {
		t.Errorf("result = %+v", res)
	}

	// Only one name for a two-name template.
	_, err = env.templates.Generate(ctx, "Raj", []string{"Amit"})
	var verr *ValidationError
	if !errors.As(err, &verr) || !strings.Contains(verr.Message, "at least 2") {
		t.Errorf("err = %v, want needs at least 2", err)
	}

	var got models.Template
	env.db.First(&got, "id = ?", tpl.ID)
	if got.UsageCount != 1 {
		t.Errorf("usage_count = %d, want 1", got.UsageCount)
	}
}

func TestTrending_RendersDemoNames(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	user := createTestUser(t, env.db, "a@test.com")
	for i := 0; i < 6; i++ {
		env.templates.Create(ctx, TemplateRequest{Text: "{{userName}}: {{friendName1}}, {{friendName3}}"}, user)
	}

	items, err := env.templates.Trending(ctx)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(items) != TrendingCount {
		t.Fatalf("got %d items, want %d", len(items), TrendingCount)
	}
	if items[0].Text != "आप: मोनू, बबलू" {
		t.Errorf("text = %q", items[0].Text)
	}
}

func TestStartBackfill_QueuesJob(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	admin := createTestUser(t, env.db, "admin@test.com")

	job, err := env.admin.StartBackfill(ctx, BackfillRequest{BatchSize: 50, RecomputeAll: true}, admin)
	if err != nil {
		t.Fatalf("StartBackfill: %v", err)
	}
	if env.queue.Len() != 1 {
		t.Errorf("queue length = %d, want 1", env.queue.Len())
	}

	got, err := env.admin.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Type != models.JobTypeBackfillFit || got.IntMetadata("batch_size", 0) != 50 || !got.BoolMetadata("recompute_all") {
		t.Errorf("job = %+v", got)
	}

	if _, err := env.admin.GetJob(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing job err = %v", err)
	}
	if _, err := env.admin.StartBackfill(ctx, BackfillRequest{BatchSize: -1}, admin); err == nil {
		t.Error("negative batch size accepted")
	}
}

func TestListUsers_MarksAdmins(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()
	a := createTestUser(t, env.db, "a@test.com")
	createTestUser(t, env.db, "b@test.com")
	rbac.MakeAdmin(a)

	users, err := env.admin.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users", len(users))
	}
	for _, u := range users {
		if u.IsAdmin != (u.ID == a) {
			t.Errorf("user %s is_admin = %v", u.ID, u.IsAdmin)
		}
	}
}
