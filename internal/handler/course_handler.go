package handler

import (
	"errors"
	"net/http"

	"github.com/angleinstitute/backend/internal/repository"
	"github.com/angleinstitute/backend/internal/service"
)

// CourseHandler serves the public course catalog.
type CourseHandler struct {
	courses service.CourseService
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(courses service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List handles GET /api/courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	writeCourseList(w, r, h.courses)
}

// Get handles GET /api/courses/{slug}.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.courses.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeServerError(w, r, "get course failed", err)
		return
	}
	writeJSON(w, http.StatusOK, courseResponse{Success: true, Course: c})
}
