package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/diewo77/go-blog/auth"
	"github.com/diewo77/go-blog/httpx"
	"github.com/diewo77/go-blog/internal/services"
	"github.com/diewo77/go-blog/validation"
)

// ResetHandler serves the password-reset flow: requesting the emailed
// link and consuming it. Token failures are collapsed into one message so
// the page reveals nothing about why a link stopped working.
type ResetHandler struct {
	Users *services.Users
}

func NewResetHandler(users *services.Users) *ResetHandler {
	return &ResetHandler{Users: users}
}

// Request handles GET/POST /reset_password.
func (h *ResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/home", statusSeeOther)
		return
	}
	if r.Method == http.MethodGet {
		render(w, r, "reset_request.html", nil)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	if !v.Empty() {
		render(w, r, "reset_request.html", map[string]any{"Errors": v, "Email": email})
		return
	}

	if err := h.Users.RequestReset(r.Context(), email); err != nil {
		// A reset request that cannot send mail must not pretend it did.
		log.Printf("reset request: %v", err)
		errorPage(w, r, http.StatusInternalServerError)
		return
	}
	httpx.Flash(w, httpx.FlashInfo, "An email has been sent with instructions to reset the password.")
	http.Redirect(w, r, "/login", statusSeeOther)
}

// Token handles GET/POST /reset_password/{token}.
func (h *ResetHandler) Token(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/home", statusSeeOther)
		return
	}
	tok := r.PathValue("token")

	// Resolve the token up front so a dead link never shows the form.
	if _, err := h.Users.VerifyResetToken(r.Context(), tok); err != nil {
		httpx.Flash(w, httpx.FlashWarning, "That is an invalid or expired token")
		http.Redirect(w, r, "/reset_password", statusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		render(w, r, "reset_password.html", map[string]any{"Token": tok})
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	v := validation.Violations{}
	validation.Required("password", password, v)
	validation.EqualTo("confirm_password", confirm, password, "password", v)
	if !v.Empty() {
		render(w, r, "reset_password.html", map[string]any{"Errors": v, "Token": tok})
		return
	}

	if err := h.Users.ResetPassword(r.Context(), tok, password); err != nil {
		// The token was valid moments ago; it may have expired in between.
		httpx.Flash(w, httpx.FlashWarning, "That is an invalid or expired token")
		http.Redirect(w, r, "/reset_password", statusSeeOther)
		return
	}
	httpx.Flash(w, httpx.FlashSuccess, "Your password has been updated! You are now able to log in")
	http.Redirect(w, r, "/login", statusSeeOther)
}
