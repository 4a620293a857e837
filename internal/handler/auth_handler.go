package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angleinstitute/backend/internal/model"
	"github.com/angleinstitute/backend/internal/service"
)

// AuthHandler は管理者のサインアップ・ログインを処理する
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler は AuthHandler を生成する
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signupRequest struct {
	Username  string `json:"username" validate:"notblank,max=64"`
	Password  string `json:"password" validate:"notblank,min=6,bcryptlen"`
	FirstName string `json:"firstName" validate:"notblank"`
	LastName  string `json:"lastName" validate:"notblank"`
	MobileNo  string `json:"mobileNo" validate:"notblank"`
}

type loginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

type userView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type authResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    userView `json:"user"`
}

func toUserView(u *model.User) userView {
	return userView{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

// Signup は POST /api/auth/signup を処理する
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, &req) {
		return
	}

	u, token, err := h.authService.Signup(r.Context(), service.SignupInput{
		Username:  strings.TrimSpace(req.Username),
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		MobileNo:  strings.TrimSpace(req.MobileNo),
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username_taken")
			return
		}
		writeServerError(w, r, "signup failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Success: true,
		Message: "User created successfully",
		Token:   token,
		User:    toUserView(u),
	})
}

// Login は POST /api/auth/login を処理する
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, &req) {
		return
	}

	u, token, err := h.authService.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeServerError(w, r, "login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    toUserView(u),
	})
}
