package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angleinstitute/backend/internal/model"
	"github.com/angleinstitute/backend/internal/notify"
	"github.com/angleinstitute/backend/internal/repository"
	"github.com/angleinstitute/backend/internal/service"
)

// Dispatcher starts the email notification for a stored submission.
type Dispatcher interface {
	Dispatch(sub model.Submission) *notify.Job
}

const (
	contactThanks   = "Thank you! Our team will review your request and get back to you shortly."
	franchiseThanks = "Thank you for your interest! Our franchise team will contact you shortly."
	enquiryThanks   = "Thank you for your enquiry! We will get back to you shortly."
)

// SubmissionHandler handles the public form endpoints and status polling.
type SubmissionHandler struct {
	submissions service.SubmissionService
	dispatcher  Dispatcher
}

// NewSubmissionHandler creates a SubmissionHandler.
func NewSubmissionHandler(s service.SubmissionService, d Dispatcher) *SubmissionHandler {
	return &SubmissionHandler{submissions: s, dispatcher: d}
}

type contactRequest struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"notblank,email"`
	Phone   string `json:"phone" validate:"notblank"`
	Message string `json:"message" validate:"notblank,max=5000"`
}

type franchiseRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"notblank,email"`
	Phone    string `json:"phone" validate:"notblank"`
	Address  string `json:"address" validate:"max=500"`
	Location string `json:"location" validate:"max=200"`
}

type enquiryRequest struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"notblank,email"`
	Phone   string `json:"phone" validate:"notblank"`
	Subject string `json:"subject" validate:"notblank,max=200"`
	Message string `json:"message" validate:"notblank,max=5000"`
}

type submitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId"`
}

// Contact handles POST /api/submissions/contact.
func (h *SubmissionHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, &req) {
		return
	}
	h.submit(w, r, &model.Submission{
		Type:    model.SubmissionContact,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Message: req.Message,
	}, contactThanks)
}

// Franchise handles POST /api/submissions/franchise.
// address and location are optional and stored as "".
func (h *SubmissionHandler) Franchise(w http.ResponseWriter, r *http.Request) {
	var req franchiseRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, &req) {
		return
	}
	h.submit(w, r, &model.Submission{
		Type:     model.SubmissionFranchise,
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
		Location: strings.TrimSpace(req.Location),
	}, franchiseThanks)
}

// Enquiry handles POST /api/submissions/enquiry.
func (h *SubmissionHandler) Enquiry(w http.ResponseWriter, r *http.Request) {
	var req enquiryRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, &req) {
		return
	}
	h.submit(w, r, &model.Submission{
		Type:    model.SubmissionEnquiry,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: req.Message,
	}, enquiryThanks)
}

// submit stores sub, answers the client and only then starts the notification.
func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request, sub *model.Submission, thanks string) {
	if err := h.submissions.Submit(r.Context(), sub); err != nil {
		writeServerError(w, r, "submission store failed", err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		Success:      true,
		Message:      thanks,
		SubmissionID: sub.ID,
	})

	h.dispatcher.Dispatch(*sub)
}

type statusResponse struct {
	ID        string               `json:"id"`
	Type      model.SubmissionType `json:"type"`
	EmailSent bool                 `json:"emailSent"`
	Status    string               `json:"status"`
}

// Status handles GET /api/submissions/{id}/status.
func (h *SubmissionHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return
	}

	sess, err := h.submissions.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeServerError(w, r, "submission status failed", err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ID:        sess.ID,
		Type:      sess.Type,
		EmailSent: sess.EmailSent,
		Status:    sess.Status(),
	})
}
