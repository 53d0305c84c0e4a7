// ABOUTME: Login, registration and logout pages
// ABOUTME: Validates forms, delegates to the auth gateway and sets flash notifications

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MohamedIjlal27/LMS/models"
	"github.com/MohamedIjlal27/LMS/services"
)

type loginData struct {
	Form   models.LoginForm
	Errors models.ValidationErrors
	Error  string
}

type registerData struct {
	Form   models.RegisterForm
	Errors models.ValidationErrors
	Error  string
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", "Log in", loginData{})
}

// Login authenticates with the backend and lands the user on their role's
// dashboard. Failures never set a cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	form := models.ParseLoginForm(r.PostForm)
	if errs := models.Validate(form); errs != nil {
		h.render(w, r, http.StatusUnprocessableEntity, "login", "Log in", loginData{Form: form, Errors: errs})
		return
	}

	result := h.gateway.Login(r.Context(), w, form.Email, form.Password, form.RememberMe)
	if !result.Success {
		status := http.StatusUnauthorized
		outcome := "invalid"
		if result.Error != services.MsgInvalidCredentials {
			status = http.StatusBadGateway
			outcome = "error"
		}
		h.metrics.ObserveLogin(outcome)
		slog.Warn("Login failed", "outcome", outcome)
		form.Password = ""
		h.render(w, r, status, "login", "Log in", loginData{Form: form, Error: result.Error})
		return
	}

	h.metrics.ObserveLogin("success")
	h.notifier.Success(w, r, fmt.Sprintf("Welcome back, %s!", result.User.Name))
	http.Redirect(w, r, result.User.Role.LandingPath(), http.StatusSeeOther)
}

func (h *Handler) loginLimited(w http.ResponseWriter, r *http.Request, retrySeconds int) {
	h.metrics.ObserveLogin("limited")
	msg := fmt.Sprintf("Too many login attempts. Please try again in %d seconds.", retrySeconds)
	h.render(w, r, http.StatusTooManyRequests, "login", "Log in", loginData{Error: msg})
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", "Register", registerData{})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	form := models.ParseRegisterForm(r.PostForm)
	if errs := models.Validate(form); errs != nil {
		h.render(w, r, http.StatusUnprocessableEntity, "register", "Register", registerData{Form: form, Errors: errs})
		return
	}

	if err := h.api.Register(r.Context(), form.Input()); err != nil {
		logFailure(r.Context(), "Registration", err)
		form.Password, form.ConfirmPassword = "", ""
		h.render(w, r, statusFor(err), "register", "Register", registerData{Form: form, Error: services.UserMessage(err)})
		return
	}

	h.notifier.Success(w, r, "Account created. Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout clears the session even when the backend call fails.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.gateway.Logout(r.Context(), w, r)
	h.notifier.Add(w, r, services.NotifyInfo, "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
