package handler

import (
	"net/http"

	"github.com/go-otp-verify/internal/application/auth"
	"github.com/go-otp-verify/internal/domain"
)

type sendEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type sendPhoneRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

type verifyEmailRequest struct {
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
	Email string `json:"email" validate:"required,email"`
}

type verifyPhoneRequest struct {
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
	Phone string `json:"phone" validate:"required,e164"`
}

// AuthHandler serves registration, login and every one-time-code endpoint.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.svc.Register(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Envelope{
		Success:              true,
		Message:              "account created, check your email for a verification code",
		RequiresVerification: true,
		VerificationMethod:   string(domain.ChannelEmail),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeAuthResult(w, res)
}

func (h *AuthHandler) VerifyLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyLoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyLoginOTP(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeAuthResult(w, res)
}

func (h *AuthHandler) SendEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if !decode(w, r, &req) {
		return
	}
	h.send(w, r, domain.ChannelEmail, req.Email)
}

func (h *AuthHandler) SendPhoneOTP(w http.ResponseWriter, r *http.Request) {
	var req sendPhoneRequest
	if !decode(w, r, &req) {
		return
	}
	h.send(w, r, domain.ChannelPhone, req.Phone)
}

func (h *AuthHandler) VerifyEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !decode(w, r, &req) {
		return
	}
	h.verify(w, r, domain.ChannelEmail, req.Email, req.OTP)
}

func (h *AuthHandler) VerifyPhoneOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyPhoneRequest
	if !decode(w, r, &req) {
		return
	}
	h.verify(w, r, domain.ChannelPhone, req.Phone, req.OTP)
}

func (h *AuthHandler) send(w http.ResponseWriter, r *http.Request, ch domain.Channel, target string) {
	if err := h.svc.SendOTP(r.Context(), ch, target); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "verification code sent"})
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request, ch domain.Channel, target, code string) {
	if err := h.svc.VerifyOTP(r.Context(), ch, target, code); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: string(ch) + " verified"})
}

func writeAuthResult(w http.ResponseWriter, res *auth.LoginResult) {
	if res.RequiresVerification {
		writeJSON(w, http.StatusOK, Envelope{
			Success:              true,
			Message:              "verification code sent",
			RequiresVerification: true,
			VerificationMethod:   string(res.Method),
		})
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Token: res.Token, User: res.User})
}
