package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes groups every handler and middleware mounted on the API mux.
type Routes struct {
	Base        *Handler
	Submissions *SubmissionHandler
	Admin       *AdminHandler
	Courses     *CourseHandler
	Auth        *AuthHandler
	Images      *ImageHandler

	// RequireAdmin wraps the /api/admin routes (JWT bearer check).
	RequireAdmin func(http.Handler) http.Handler
	// FormLimiter throttles the public form and login endpoints.
	FormLimiter *RateLimiter

	UploadsPrefix string
	UploadsDir    string
	// StaticDir enables the SPA fallback when non-empty.
	StaticDir string
	// Metrics serves /metrics; defaults to the Prometheus default registry.
	Metrics http.Handler
}

// Handler builds the full middleware chain around the route table.
func (rt *Routes) Handler() http.Handler {
	mux := http.NewServeMux()
	limited := func(h http.HandlerFunc) http.Handler {
		if rt.FormLimiter == nil {
			return h
		}
		return rt.FormLimiter.Middleware(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return rt.RequireAdmin(h)
	}

	metricsHandler := rt.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	mux.HandleFunc("GET /api/health", rt.Base.Health)
	mux.Handle("GET /metrics", metricsHandler)

	// 公開フォーム（レート制限あり）
	mux.Handle("POST /api/submissions/contact", limited(rt.Submissions.Contact))
	mux.Handle("POST /api/submissions/franchise", limited(rt.Submissions.Franchise))
	mux.Handle("POST /api/submissions/enquiry", limited(rt.Submissions.Enquiry))
	mux.HandleFunc("GET /api/submissions/{id}/status", rt.Submissions.Status)

	mux.HandleFunc("GET /api/courses", rt.Courses.List)
	mux.HandleFunc("GET /api/courses/{slug}", rt.Courses.Get)

	mux.HandleFunc("POST /api/auth/signup", rt.Auth.Signup)
	mux.Handle("POST /api/auth/login", limited(rt.Auth.Login))

	// Admin routes (JWT required)
	mux.Handle("GET /api/admin/submissions", admin(rt.Admin.ListSubmissions))
	mux.Handle("GET /api/admin/submissions/failed", admin(rt.Admin.ListFailedSubmissions))
	mux.Handle("DELETE /api/admin/submissions/{id}", admin(rt.Admin.DeleteSubmission))
	mux.Handle("GET /api/admin/courses", admin(rt.Admin.ListCourses))
	mux.Handle("POST /api/admin/courses", admin(rt.Admin.CreateCourse))
	mux.Handle("POST /api/admin/courses/images", admin(rt.Images.Upload))
	mux.Handle("DELETE /api/admin/courses/{id}", admin(rt.Admin.DeleteCourse))

	if rt.UploadsDir != "" {
		prefix := rt.UploadsPrefix
		if prefix == "" {
			prefix = "/uploads/"
		}
		mux.Handle("GET "+prefix, Uploads(prefix, rt.UploadsDir))
	}

	if rt.StaticDir != "" {
		mux.Handle("/", SPA(rt.StaticDir))
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not_found")
		})
	}

	return RequestLogger(SecurityHeaders(rt.Base.CORS(mux)))
}
