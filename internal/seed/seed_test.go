package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testStore(t *testing.T) *store.TemplateStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seed.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Template{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store.NewTemplateStore(db)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefault(t *testing.T) {
	set, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(set.Templates) != 3 {
		t.Fatalf("got %d default templates, want 3", len(set.Templates))
	}
	if !strings.Contains(set.Templates[0].Text, "{{userName}} aur {{friendName1}}") {
		t.Errorf("first template = %q", set.Templates[0].Text)
	}
}

func TestLoadGlob_YAMLAndTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "templates:\n  - text: \"{{userName}} yaml\"\n")
	writeFile(t, filepath.Join(dir, "nested", "b.toml"), "[[templates]]\ntext = \"{{friendName1}} toml\"\ninstructions = \"one friend\"\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	set, err := LoadGlob(filepath.Join(dir, "**", "*.{yaml,toml}"))
	if err != nil {
		t.Fatalf("LoadGlob: %v", err)
	}
	if len(set.Templates) != 2 {
		t.Fatalf("got %d templates, want 2", len(set.Templates))
	}
	if set.Templates[1].Instructions != "one friend" {
		t.Errorf("toml entry = %+v", set.Templates[1])
	}

	if _, err := LoadGlob(filepath.Join(dir, "*.json")); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestApply_OnlyWhenEmpty(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	set, _ := Default()

	n, err := Apply(ctx, s, set, ApplyOptions{})
	if err != nil || n != 3 {
		t.Fatalf("first Apply = %d, %v", n, err)
	}
	n, err = Apply(ctx, s, set, ApplyOptions{})
	if err != nil || n != 0 {
		t.Errorf("second Apply = %d, %v; want 0", n, err)
	}
	n, _ = Apply(ctx, s, set, ApplyOptions{Force: true})
	if n != 3 {
		t.Errorf("forced Apply inserted %d, want 3", n)
	}
	if total, _ := s.Count(ctx); total != 6 {
		t.Errorf("count = %d, want 6", total)
	}
}

func TestApply_RejectsInvalidBeforeWriting(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	set := &Set{Templates: []Entry{{Text: "{{userName}}"}, {Text: "{{friendName11}}"}}}

	if _, err := Apply(ctx, s, set, ApplyOptions{}); err == nil || !strings.Contains(err.Error(), "template 2") {
		t.Fatalf("err = %v, want template 2 error", err)
	}
	if total, _ := s.Count(ctx); total != 0 {
		t.Errorf("count = %d, want nothing written", total)
	}
}
