package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angleinstitute/backend/internal/model"
	"github.com/angleinstitute/backend/internal/repository"
	"github.com/angleinstitute/backend/internal/service"
)

func serveAdmin(h *AdminHandler, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/submissions", h.ListSubmissions)
	mux.HandleFunc("GET /api/admin/submissions/failed", h.ListFailedSubmissions)
	mux.HandleFunc("DELETE /api/admin/submissions/{id}", h.DeleteSubmission)
	mux.HandleFunc("GET /api/admin/courses", h.ListCourses)
	mux.HandleFunc("POST /api/admin/courses", h.CreateCourse)
	mux.HandleFunc("DELETE /api/admin/courses/{id}", h.DeleteCourse)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAdminHandler_ListSubmissions_TypeFilter(t *testing.T) {
	var gotType model.SubmissionType
	h := NewAdminHandler(&mockSubmissionService{
		listFunc: func(ctx context.Context, typ model.SubmissionType) ([]*model.Submission, error) {
			gotType = typ
			return []*model.Submission{{ID: "a", Type: typ}, {ID: "b", Type: typ}}, nil
		},
	}, &mockCourseService{})

	rec := serveAdmin(h, http.MethodGet, "/api/admin/submissions?type=franchise", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotType != model.SubmissionFranchise {
		t.Errorf("type = %q", gotType)
	}
	var resp submissionListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Total != 2 || len(resp.Submissions) != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAdminHandler_ListSubmissions_InvalidType(t *testing.T) {
	h := NewAdminHandler(&mockSubmissionService{}, &mockCourseService{})
	rec := serveAdmin(h, http.MethodGet, "/api/admin/submissions?type=spam", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAdminHandler_ListFailed_EmptyIsArray(t *testing.T) {
	h := NewAdminHandler(&mockSubmissionService{}, &mockCourseService{})
	rec := serveAdmin(h, http.MethodGet, "/api/admin/submissions/failed", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"submissions":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestAdminHandler_DeleteSubmission(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"deleted", nil, http.StatusOK},
		{"missing", fmt.Errorf("delete: %w", repository.ErrNotFound), http.StatusNotFound},
		{"store error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			h := NewAdminHandler(&mockSubmissionService{
				deleteFunc: func(ctx context.Context, id string) error {
					gotID = id
					return tt.err
				},
			}, &mockCourseService{})

			rec := serveAdmin(h, http.MethodDelete, "/api/admin/submissions/sub-9", "")
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if gotID != "sub-9" {
				t.Errorf("id = %q", gotID)
			}
		})
	}
}

func TestAdminHandler_CreateCourse(t *testing.T) {
	var captured *model.Course
	h := NewAdminHandler(&mockSubmissionService{}, &mockCourseService{
		createFunc: func(ctx context.Context, c *model.Course) error {
			c.ID = "c1"
			c.Slug = "abacus-level-1"
			captured = c
			return nil
		},
	})

	body := `{"title":"Abacus Level 1","description":"Intro","image":"/uploads/courses/a.png","duration":"3 months","level":"Beginner"}`
	rec := serveAdmin(h, http.MethodPost, "/api/admin/courses", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured == nil || captured.Price != 0 || captured.Level != model.LevelBeginner {
		t.Errorf("unexpected course %+v", captured)
	}
	var resp courseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Course == nil || resp.Course.Slug != "abacus-level-1" || resp.Message != "Course created successfully" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAdminHandler_CreateCourse_Validation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing image", `{"title":"T","description":"D","duration":"1m","level":"Beginner"}`, "image"},
		{"bad level", `{"title":"T","description":"D","image":"i","duration":"1m","level":"Expert"}`, "level"},
		{"negative price", `{"title":"T","description":"D","image":"i","duration":"1m","level":"Advanced","price":-5}`, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAdminHandler(&mockSubmissionService{}, &mockCourseService{
				createFunc: func(ctx context.Context, c *model.Course) error {
					t.Error("Create should not be called")
					return nil
				},
			})
			rec := serveAdmin(h, http.MethodPost, "/api/admin/courses", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"field":"`+tt.wantField+`"`) {
				t.Errorf("expected %s field error, got %s", tt.wantField, rec.Body.String())
			}
		})
	}
}

func TestAdminHandler_CreateCourse_Duplicate(t *testing.T) {
	h := NewAdminHandler(&mockSubmissionService{}, &mockCourseService{
		createFunc: func(ctx context.Context, c *model.Course) error {
			return service.ErrCourseExists
		},
	})
	body := `{"title":"T","description":"D","image":"i","duration":"1m","level":"Beginner"}`
	rec := serveAdmin(h, http.MethodPost, "/api/admin/courses", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "course_exists") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestAdminHandler_DeleteCourse_NotFound(t *testing.T) {
	h := NewAdminHandler(&mockSubmissionService{}, &mockCourseService{
		deleteFunc: func(ctx context.Context, id string) error {
			return repository.ErrNotFound
		},
	})
	rec := serveAdmin(h, http.MethodDelete, "/api/admin/courses/c1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCourseHandler_ListAndGet(t *testing.T) {
	courses := &mockCourseService{
		listFunc: func(ctx context.Context) ([]*model.Course, error) {
			return []*model.Course{{ID: "1", Slug: "abacus"}}, nil
		},
		getBySlugFunc: func(ctx context.Context, slug string) (*model.Course, error) {
			if slug != "abacus" {
				return nil, repository.ErrNotFound
			}
			return &model.Course{ID: "1", Slug: "abacus"}, nil
		},
	}
	h := NewCourseHandler(courses)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/courses", h.List)
	mux.HandleFunc("GET /api/courses/{slug}", h.Get)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("list: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses/abacus", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"slug":"abacus"`) {
		t.Errorf("get: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing: expected 404, got %d", rec.Code)
	}
}
