package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angleinstitute/backend/internal/model"
	"github.com/angleinstitute/backend/internal/repository"
	"github.com/angleinstitute/backend/internal/service"
)

// AdminHandler serves the JWT-protected /api/admin routes.
type AdminHandler struct {
	submissions service.SubmissionService
	courses     service.CourseService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(submissions service.SubmissionService, courses service.CourseService) *AdminHandler {
	return &AdminHandler{submissions: submissions, courses: courses}
}

type submissionListResponse struct {
	Success     bool                `json:"success"`
	Total       int                 `json:"total"`
	Submissions []*model.Submission `json:"submissions"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListSubmissions handles GET /api/admin/submissions?type=.
func (h *AdminHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	typ := model.SubmissionType(r.URL.Query().Get("type"))
	if typ != "" && !typ.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_type")
		return
	}

	subs, err := h.submissions.List(r.Context(), typ)
	if err != nil {
		writeServerError(w, r, "list submissions failed", err)
		return
	}
	writeSubmissions(w, subs)
}

// ListFailedSubmissions handles GET /api/admin/submissions/failed.
func (h *AdminHandler) ListFailedSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissions.ListFailed(r.Context())
	if err != nil {
		writeServerError(w, r, "list failed submissions failed", err)
		return
	}
	writeSubmissions(w, subs)
}

func writeSubmissions(w http.ResponseWriter, subs []*model.Submission) {
	// Return [] not null for empty lists
	if subs == nil {
		subs = []*model.Submission{}
	}
	writeJSON(w, http.StatusOK, submissionListResponse{Success: true, Total: len(subs), Submissions: subs})
}

// DeleteSubmission handles DELETE /api/admin/submissions/{id}.
func (h *AdminHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.submissions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeServerError(w, r, "delete submission failed", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Submission deleted successfully"})
}

type courseListResponse struct {
	Success bool            `json:"success"`
	Total   int             `json:"total"`
	Courses []*model.Course `json:"courses"`
}

type courseResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Course  *model.Course `json:"course"`
}

// ListCourses handles GET /api/admin/courses.
func (h *AdminHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	writeCourseList(w, r, h.courses)
}

func writeCourseList(w http.ResponseWriter, r *http.Request, courses service.CourseService) {
	list, err := courses.List(r.Context())
	if err != nil {
		writeServerError(w, r, "list courses failed", err)
		return
	}
	if list == nil {
		list = []*model.Course{}
	}
	writeJSON(w, http.StatusOK, courseListResponse{Success: true, Total: len(list), Courses: list})
}

type createCourseRequest struct {
	Title       string  `json:"title" validate:"notblank,max=200"`
	Description string  `json:"description" validate:"notblank"`
	Image       string  `json:"image" validate:"notblank"`
	Duration    string  `json:"duration" validate:"notblank"`
	Level       string  `json:"level" validate:"notblank,oneof=Beginner Intermediate Advanced"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// CreateCourse handles POST /api/admin/courses.
func (h *AdminHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, &req) {
		return
	}

	c := &model.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Image:       strings.TrimSpace(req.Image),
		Duration:    strings.TrimSpace(req.Duration),
		Level:       req.Level,
		Price:       req.Price,
	}
	if err := h.courses.Create(r.Context(), c); err != nil {
		if errors.Is(err, service.ErrCourseExists) {
			writeError(w, http.StatusBadRequest, "course_exists")
			return
		}
		writeServerError(w, r, "create course failed", err)
		return
	}
	writeJSON(w, http.StatusOK, courseResponse{Success: true, Message: "Course created successfully", Course: c})
}

// DeleteCourse handles DELETE /api/admin/courses/{id}.
func (h *AdminHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.courses.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeServerError(w, r, "delete course failed", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Course deleted successfully"})
}
