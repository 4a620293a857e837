package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angleinstitute/backend/internal/notify"
	"github.com/angleinstitute/backend/internal/repository"
	"github.com/angleinstitute/backend/internal/service"
	"github.com/angleinstitute/backend/internal/sessionstore"
	"github.com/angleinstitute/backend/internal/storage"
	"github.com/angleinstitute/backend/pkg/auth"
)

// switchMailer fails while down is set.
type switchMailer struct {
	down  atomic.Bool
	sends atomic.Int32
}

func (m *switchMailer) Send(ctx context.Context, msg notify.Message) error {
	m.sends.Add(1)
	if m.down.Load() {
		return errors.New("mail backend unreachable")
	}
	return nil
}

type testApp struct {
	server     *httptest.Server
	stores     *repository.Stores
	mailer     *switchMailer
	dispatcher *notify.Dispatcher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	stores := repository.NewMemoryStores()
	tokens := auth.NewTokenIssuer("routes-test-secret", time.Hour)
	submissions := service.NewSubmissionService(stores.Submissions, sessionstore.NewMemoryCache(0))
	courses := service.NewCourseService(stores.Courses)

	mailer := &switchMailer{}
	notifier := notify.NewNotifier(mailer)
	notifier.BaseDelay = time.Millisecond
	dispatcher := notify.NewDispatcher(notifier, submissions, notify.Recipients{Admin: "admin@example.com", Franchise: "franchise@example.com"})

	uploads := t.TempDir()
	rt := &Routes{
		Base:          New(stores.DB, "http://localhost:5173"),
		Submissions:   NewSubmissionHandler(submissions, dispatcher),
		Admin:         NewAdminHandler(submissions, courses),
		Courses:       NewCourseHandler(courses),
		Auth:          NewAuthHandler(service.NewAuthService(stores.Users, tokens)),
		Images:        NewImageHandler(storage.NewLocalStorage(uploads, "/uploads")),
		RequireAdmin:  auth.RequireBearer(tokens),
		FormLimiter:   NewRateLimiter(100),
		UploadsPrefix: "/uploads/",
		UploadsDir:    uploads,
		Metrics:       http.NotFoundHandler(),
	}
	srv := httptest.NewServer(rt.Handler())
	t.Cleanup(srv.Close)
	return &testApp{server: srv, stores: stores, mailer: mailer, dispatcher: dispatcher}
}

func (a *testApp) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (a *testApp) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.dispatcher.Wait(ctx); err != nil {
		t.Fatalf("dispatcher did not drain: %v", err)
	}
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	code, body := a.do(t, "POST", "/api/auth/signup", "",
		`{"username":"admin","password":"secret1","firstName":"Asha","lastName":"Lalani","mobileNo":"99999"}`)
	if code != http.StatusCreated {
		t.Fatalf("signup: %d %v", code, body)
	}
	code, body = a.do(t, "POST", "/api/auth/login", "", `{"username":"admin","password":"secret1"}`)
	if code != http.StatusOK {
		t.Fatalf("login: %d %v", code, body)
	}
	return body["token"].(string)
}

const contactBody = `{"name":"A","email":"a@b.com","phone":"123","message":"hi"}`

func TestRoutes_ContactThenSent(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, "POST", "/api/submissions/contact", "", contactBody)
	if code != http.StatusOK {
		t.Fatalf("contact: %d %v", code, body)
	}
	id, _ := body["submissionId"].(string)
	if id == "" {
		t.Fatalf("missing submissionId: %v", body)
	}

	app.drain(t)
	code, body = app.do(t, "GET", "/api/submissions/"+id+"/status", "", "")
	if code != http.StatusOK || body["status"] != "sent" || body["emailSent"] != true {
		t.Errorf("status after delivery: %d %v", code, body)
	}

	sub, err := app.stores.Submissions.FindByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if !sub.EmailSent || sub.SentAt == nil || sub.RetryCount != 0 {
		t.Errorf("durable record not marked sent: %+v", sub)
	}
}

func TestRoutes_MailDown_RecordPersistsAndStaysPending(t *testing.T) {
	app := newTestApp(t)
	app.mailer.down.Store(true)

	code, body := app.do(t, "POST", "/api/submissions/contact", "", contactBody)
	if code != http.StatusOK {
		t.Fatalf("contact: %d %v", code, body)
	}
	id := body["submissionId"].(string)
	app.drain(t)

	if got := app.mailer.sends.Load(); got != 3 {
		t.Errorf("expected 3 send attempts, got %d", got)
	}
	code, body = app.do(t, "GET", "/api/submissions/"+id+"/status", "", "")
	if code != http.StatusOK || body["status"] != "pending" {
		t.Errorf("status while backend down: %d %v", code, body)
	}

	sub, err := app.stores.Submissions.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("durable record missing: %v", err)
	}
	if sub.EmailSent || sub.RetryCount != 3 || sub.EmailError != notify.FailureReason {
		t.Errorf("unexpected durable record %+v", sub)
	}

	token := app.adminToken(t)
	code, body = app.do(t, "GET", "/api/admin/submissions/failed", token, "")
	if code != http.StatusOK || body["total"] != float64(1) {
		t.Errorf("failed listing: %d %v", code, body)
	}
}

func TestRoutes_AdminRequiresToken(t *testing.T) {
	app := newTestApp(t)

	if code, _ := app.do(t, "GET", "/api/admin/submissions", "", ""); code != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", code)
	}
	if code, _ := app.do(t, "GET", "/api/admin/submissions", "garbage", ""); code != http.StatusForbidden {
		t.Errorf("bad token: expected 403, got %d", code)
	}
}

func TestRoutes_DeleteSubmissionClearsStatus(t *testing.T) {
	app := newTestApp(t)
	app.mailer.down.Store(true)
	token := app.adminToken(t)

	_, body := app.do(t, "POST", "/api/submissions/franchise", "", `{"name":"B","email":"b@example.com","phone":"9"}`)
	id := body["submissionId"].(string)
	app.drain(t)

	code, body := app.do(t, "GET", "/api/admin/submissions?type=franchise", token, "")
	if code != http.StatusOK || body["total"] != float64(1) {
		t.Fatalf("list: %d %v", code, body)
	}

	if code, _ := app.do(t, "DELETE", "/api/admin/submissions/"+id, token, ""); code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", code)
	}
	if code, _ := app.do(t, "GET", "/api/submissions/"+id+"/status", "", ""); code != http.StatusNotFound {
		t.Errorf("status after delete: expected 404, got %d", code)
	}
	if _, err := app.stores.Submissions.FindByID(context.Background(), id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("durable record should be gone, got %v", err)
	}
	if code, _ := app.do(t, "DELETE", "/api/admin/submissions/"+id, token, ""); code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", code)
	}
}

func TestRoutes_CourseCatalog(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)

	course := `{"title":"Abacus Level 1!","description":"Intro","image":"/uploads/courses/a.png","duration":"3 months","level":"Beginner"}`
	code, body := app.do(t, "POST", "/api/admin/courses", token, course)
	if code != http.StatusOK {
		t.Fatalf("create: %d %v", code, body)
	}
	created := body["course"].(map[string]any)
	if created["slug"] != "abacus-level-1" || created["price"] != float64(0) {
		t.Errorf("unexpected course %v", created)
	}

	if code, _ := app.do(t, "POST", "/api/admin/courses", token, course); code != http.StatusBadRequest {
		t.Errorf("duplicate: expected 400, got %d", code)
	}

	code, body = app.do(t, "GET", "/api/courses/abacus-level-1", "", "")
	if code != http.StatusOK {
		t.Errorf("public get: %d %v", code, body)
	}
	code, body = app.do(t, "GET", "/api/courses", "", "")
	if code != http.StatusOK || body["total"] != float64(1) {
		t.Errorf("public list: %d %v", code, body)
	}

	id := created["_id"].(string)
	if code, _ := app.do(t, "DELETE", "/api/admin/courses/"+id, token, ""); code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", code)
	}
	if code, _ := app.do(t, "GET", "/api/courses/abacus-level-1", "", ""); code != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", code)
	}
}

func TestRoutes_HealthAndUnknown(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, "GET", "/api/health", "", "")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health: %d %v", code, body)
	}
	if code, _ := app.do(t, "GET", "/api/nope", "", ""); code != http.StatusNotFound {
		t.Errorf("unknown api path: expected 404, got %d", code)
	}
	if code, _ := app.do(t, "POST", "/api/auth/signup", "", `{"username":"x"}`); code != http.StatusBadRequest {
		t.Errorf("incomplete signup: expected 400, got %d", code)
	}
}
