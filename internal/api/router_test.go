package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bakchoddost/bakchoddost/internal/config"
	"github.com/bakchoddost/bakchoddost/internal/db"
	"github.com/bakchoddost/bakchoddost/internal/logstream"
	"github.com/bakchoddost/bakchoddost/internal/metrics"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/queue"
	"github.com/bakchoddost/bakchoddost/internal/rbac"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	queue  *queue.MemoryQueue
	logs   *logstream.Broker
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Mode: "development", CORSOrigins: []string{"http://localhost:3000"}},
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "api.db"), LogLevel: "silent"},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTLHours: 1,
			CookieName:    "token",
			OTPTTLSeconds: 60,
		},
		RateLimit: config.RateLimitConfig{
			Backend:  "memory",
			API:      config.LimitRule{Limit: 1000, WindowSeconds: 60},
			Auth:     config.LimitRule{Limit: 1000, WindowSeconds: 60},
			Generate: config.LimitRule{Limit: 1000, WindowSeconds: 60},
		},
		SMS:      config.SMSConfig{Provider: "log"},
		Backfill: config.BackfillConfig{BatchSize: 100},
	}
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	return newTestServerWithLogs(t, nil, mutate...)
}

// newTestServerWithLogs routes job progress through logs when it is non-nil.
func newTestServerWithLogs(t *testing.T, logs logstream.Stream, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	for _, m := range mutate {
		m(cfg)
	}

	gdb, err := db.New(cfg.Database)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := db.GetOrCreateServerID(gdb); err != nil {
		t.Fatalf("server id: %v", err)
	}
	if err := rbac.InitEnforcer(gdb, slog.Default()); err != nil {
		t.Fatalf("InitEnforcer: %v", err)
	}

	q := queue.NewMemoryQueue(10)
	t.Cleanup(func() { q.Close() })

	broker := logstream.NewBroker()
	if logs == nil {
		logs = broker
	}
	router, err := NewRouter(cfg, Deps{DB: gdb, Queue: q, Metrics: metrics.New(), Logs: logs})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return &testServer{router: router, db: gdb, queue: q, logs: broker}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type session struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

func (s *testServer) register(t *testing.T, email string) session {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": email, "password": "secret123"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}
	return decode[session](t, w)
}

func TestHealthVersionInfo(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/v1/health", "/api/v1/version", "/api/v1/info"} {
		if w := s.do(t, http.MethodGet, path, "", nil); w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}
	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Errorf("metrics endpoint = %d", w.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "a@example.com", "password": "secret123"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", w.Code, w.Body.String())
	}
	if cookie := w.Header().Get("Set-Cookie"); !strings.Contains(cookie, "token=") || !strings.Contains(cookie, "HttpOnly") {
		t.Errorf("session cookie = %q", cookie)
	}

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "a@example.com", "password": "secret123"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "b@example.com", "password": "123"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("short password register = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@example.com", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login = %d, want 401", w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@example.com", "password": "secret123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d", w.Code)
	}
	sess := decode[session](t, w)

	if w := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("me without token = %d, want 401", w.Code)
	}
	w = s.do(t, http.MethodGet, "/api/v1/auth/me", sess.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me = %d", w.Code)
	}
	me := decode[map[string]interface{}](t, w)
	if me["email"] != "a@example.com" {
		t.Errorf("me = %v", me)
	}

	w = s.do(t, http.MethodPost, "/api/v1/auth/register-profile", sess.Token, map[string]string{"firstName": "Raju", "lastName": "Rastogi"})
	if w.Code != http.StatusOK {
		t.Fatalf("register-profile = %d: %s", w.Code, w.Body.String())
	}
	prof := decode[map[string]interface{}](t, w)
	if prof["username"] != "rajurastogi" || prof["name"] != "Raju Rastogi" {
		t.Errorf("profile = %v", prof)
	}

	w = s.do(t, http.MethodGet, "/api/v1/auth/username-available?username=RajuRastogi", "", nil)
	if avail := decode[map[string]bool](t, w); avail["available"] {
		t.Error("claimed username reported available")
	}
	if w := s.do(t, http.MethodGet, "/api/v1/auth/username-available?username=%20", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("blank username check = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Errorf("logout = %d cookie %q", w.Code, w.Header().Get("Set-Cookie"))
	}
}

func TestOTPFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/otp/start", "", map[string]string{"phone": "+919999999999"})
	if w.Code != http.StatusOK {
		t.Fatalf("otp start = %d: %s", w.Code, w.Body.String())
	}
	start := decode[struct {
		OK   bool   `json:"ok"`
		Code string `json:"code"`
	}](t, w)
	if !start.OK || len(start.Code) != 6 {
		t.Fatalf("otp start = %+v, want code revealed in development", start)
	}

	w = s.do(t, http.MethodPost, "/api/v1/auth/otp/confirm", "", map[string]string{"phone": "+919999999999", "code": "000000"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong code = %d, want 401", w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/v1/auth/otp/confirm", "", map[string]string{"phone": "+919999999999", "code": start.Code})
	if w.Code != http.StatusOK {
		t.Fatalf("confirm = %d: %s", w.Code, w.Body.String())
	}
	if sess := decode[session](t, w); sess.Token == "" {
		t.Error("no token after confirm")
	}
}

func TestPoemLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner@example.com")
	other := s.register(t, "other@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/poems/generate", "", map[string]interface{}{"userName": "Raj"})
	if w.Code != http.StatusNotFound {
		t.Errorf("generate on empty store = %d, want 404", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/poems", "", map[string]string{"text": "{{userName}}"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create = %d, want 401", w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/v1/poems", owner.Token, map[string]string{"text": "{{nope}}"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid create = %d, want 400", w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/v1/poems", owner.Token, map[string]string{"text": "{{userName}} aur {{friendName1}}"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", w.Code, w.Body.String())
	}
	tpl := decode[models.Template](t, w)

	w = s.do(t, http.MethodPost, "/api/v1/poems/generate", "", map[string]interface{}{
		"userName":    "  Raj ",
		"friendNames": []string{"Simran"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("generate = %d: %s", w.Code, w.Body.String())
	}
	res := decode[struct {
		Text       string `json:"text"`
		TemplateID string `json:"templateId"`
	}](t, w)
	if res.Text != "Raj aur Simran" || res.TemplateID != tpl.ID.String() {
		t.Errorf("generate = %+v", res)
	}

	eleven := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
	w = s.do(t, http.MethodPost, "/api/v1/poems/generate", "", map[string]interface{}{
		"userName":    "Raj",
		"friendNames": eleven,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("eleven friend names = %d, want 400", w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/v1/poems/generate", "", map[string]interface{}{
		"userName":    "Raj",
		"friendNames": append(eleven[:10:10], " ", ""),
	})
	if w.Code != http.StatusOK {
		t.Errorf("ten friend names plus blanks = %d, want 200: %s", w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodPost, "/api/v1/poems/generate", "", map[string]interface{}{"userName": strings.Repeat("क", 61)})
	if w.Code != http.StatusBadRequest {
		t.Errorf("long userName = %d, want 400", w.Code)
	}

	path := "/api/v1/poems/" + tpl.ID.String()
	if w := s.do(t, http.MethodPut, path, other.Token, map[string]string{"text": "{{userName}}"}); w.Code != http.StatusForbidden {
		t.Errorf("other update = %d, want 403", w.Code)
	}
	if w := s.do(t, http.MethodPut, path, owner.Token, map[string]string{"text": "{{friendName2}}"}); w.Code != http.StatusOK {
		t.Errorf("owner update = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/poems/not-a-uuid", owner.Token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/poems", owner.Token, nil)
	if page := decode[map[string]interface{}](t, w); page["total"] != float64(1) {
		t.Errorf("my poems = %v", page)
	}
	w = s.do(t, http.MethodGet, "/api/v1/poems/browse?q=FRIEND&limit=500", "", nil)
	if page := decode[map[string]interface{}](t, w); page["total"] != float64(1) || page["limit"] != float64(50) {
		t.Errorf("browse = %v", page)
	}
	w = s.do(t, http.MethodGet, "/api/v1/poems/trending", "", nil)
	if items := decode[[]map[string]string](t, w); len(items) != 1 || items[0]["text"] != "टिंकू" {
		t.Errorf("trending = %v", items)
	}

	if w := s.do(t, http.MethodDelete, path, owner.Token, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, path, owner.Token, nil); w.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d, want 404", w.Code)
	}
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/poems/validate", "", map[string]string{"text": "{{ userName }} {{friendName3}}"})
	if w.Code != http.StatusOK {
		t.Fatalf("validate = %d: %s", w.Code, w.Body.String())
	}
	if a := decode[map[string]interface{}](t, w); a["maxFriendIndexRequired"] != float64(3) {
		t.Errorf("analysis = %v", a)
	}

	w = s.do(t, http.MethodPost, "/api/v1/poems/validate", "", map[string]string{"text": "{{friendName0}}"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid text = %d, want 400", w.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	user := s.register(t, "user@example.com")
	admin := s.register(t, "admin@example.com")
	if err := rbac.MakeAdmin(uuid.MustParse(admin.ID)); err != nil {
		t.Fatalf("MakeAdmin: %v", err)
	}

	if w := s.do(t, http.MethodGet, "/api/v1/admin/users", user.Token, nil); w.Code != http.StatusForbidden {
		t.Errorf("non-admin = %d, want 403", w.Code)
	}
	w := s.do(t, http.MethodGet, "/api/v1/admin/users", admin.Token, nil)
	if users := decode[[]map[string]interface{}](t, w); len(users) != 2 {
		t.Errorf("users = %v", users)
	}

	w = s.do(t, http.MethodPost, "/api/v1/admin/backfill", admin.Token, map[string]interface{}{"batch_size": 10})
	if w.Code != http.StatusAccepted {
		t.Fatalf("backfill = %d: %s", w.Code, w.Body.String())
	}
	job := decode[models.Job](t, w)
	if s.queue.Len() != 1 {
		t.Errorf("queue length = %d, want 1", s.queue.Len())
	}

	if w := s.do(t, http.MethodGet, "/api/v1/admin/jobs/"+job.ID.String(), admin.Token, nil); w.Code != http.StatusOK {
		t.Errorf("get job = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/admin/jobs/"+uuid.NewString(), admin.Token, nil); w.Code != http.StatusNotFound {
		t.Errorf("missing job = %d, want 404", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/admin/audit-logs?user_id="+admin.ID, admin.Token, nil)
	logs := decode[[]models.AuditLog](t, w)
	if len(logs) == 0 {
		t.Error("no audit logs for admin")
	}
	if w := s.do(t, http.MethodGet, "/api/v1/admin/audit-logs?user_id=bad", admin.Token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad user_id = %d, want 400", w.Code)
	}
}

func TestStreamJobLogs(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "admin@example.com")
	if err := rbac.MakeAdmin(uuid.MustParse(admin.ID)); err != nil {
		t.Fatalf("MakeAdmin: %v", err)
	}

	finished := &models.Job{Type: models.JobTypeBackfillFit, Status: models.JobStatusCompleted, Logs: "batch 1: scanned=2 updated=2\nbackfill: done"}
	s.db.Create(finished)
	w := s.do(t, http.MethodGet, "/api/v1/admin/jobs/"+finished.ID.String()+"/logs", admin.Token, nil)
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "data: batch 1: scanned=2 updated=2\ndata: backfill: done\n\n") {
		t.Errorf("stored logs missing from %q", body)
	}
	if !strings.Contains(body, "event: done\ndata: completed") {
		t.Errorf("done event missing from %q", body)
	}

	running := &models.Job{Type: models.JobTypeBackfillFit, Status: models.JobStatusRunning}
	s.db.Create(running)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/jobs/"+running.ID.String()+"/logs", nil)
	req.Header.Set("Authorization", "Bearer "+admin.Token)
	live := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		s.router.ServeHTTP(live, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !s.logs.HasSubscribers(running.ID) {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	s.logs.Publish(running.ID, "batch 1: scanned=5 updated=5")
	s.logs.Close(running.ID)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after Close")
	}
	body = live.Body.String()
	if !strings.Contains(body, "data: batch 1: scanned=5 updated=5") || !strings.Contains(body, "event: done") {
		t.Errorf("live stream = %q", body)
	}
}

// finishOnSubscribe completes the job just before each subscription, as a
// worker that wins the race against the SSE handler would.
type finishOnSubscribe struct {
	*logstream.Broker
	db *gorm.DB
}

func (f *finishOnSubscribe) Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan string, func()) {
	f.db.Model(&models.Job{}).Where("id = ?", jobID).Updates(map[string]interface{}{
		"status": models.JobStatusCompleted,
		"logs":   "backfill: scanned=1 updated=1",
	})
	f.Broker.Close(jobID)
	return f.Broker.Subscribe(ctx, jobID)
}

func TestStreamJobLogs_JobFinishesBeforeSubscribe(t *testing.T) {
	stream := &finishOnSubscribe{Broker: logstream.NewBroker()}
	s := newTestServerWithLogs(t, stream)
	stream.db = s.db

	admin := s.register(t, "admin@example.com")
	if err := rbac.MakeAdmin(uuid.MustParse(admin.ID)); err != nil {
		t.Fatalf("MakeAdmin: %v", err)
	}
	job := &models.Job{Type: models.JobTypeBackfillFit, Status: models.JobStatusRunning}
	s.db.Create(job)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/jobs/"+job.ID.String()+"/logs", nil)
	req.Header.Set("Authorization", "Bearer "+admin.Token)
	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		s.router.ServeHTTP(w, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream blocked on a job that finished before subscribing")
	}
	body := w.Body.String()
	if !strings.Contains(body, "data: backfill: scanned=1 updated=1") {
		t.Errorf("stored logs missing from %q", body)
	}
	if !strings.Contains(body, "event: done\ndata: completed") {
		t.Errorf("done event missing from %q", body)
	}
}

func TestGenerateRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.RateLimit.Generate = config.LimitRule{Limit: 1, WindowSeconds: 3600}
	})
	body := map[string]interface{}{"userName": "Raj"}
	s.do(t, http.MethodPost, "/api/v1/poems/generate", "", body)
	if w := s.do(t, http.MethodPost, "/api/v1/poems/generate", "", body); w.Code != http.StatusTooManyRequests {
		t.Errorf("second generate = %d, want 429", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/v1/poems/validate", "", map[string]string{"text": "x"}); w.Code != http.StatusOK {
		t.Errorf("validate after generate limit = %d, want 200", w.Code)
	}
}
