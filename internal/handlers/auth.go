package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/diewo77/go-blog/auth"
	"github.com/diewo77/go-blog/httpx"
	"github.com/diewo77/go-blog/internal/services"
	"github.com/diewo77/go-blog/validation"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	Users    *services.Users
	Sessions *auth.Sessions
}

func NewAuthHandler(users *services.Users, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{Users: users, Sessions: sessions}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/register", h.register)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/home", statusSeeOther)
		return
	}
	if r.Method == http.MethodGet {
		render(w, r, "register.html", nil)
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
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	v := validation.Violations{}
	validation.Required("username", username, v)
	validation.Length("username", username, 2, 20, v)
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.Required("password", password, v)
	validation.EqualTo("confirm_password", confirm, password, "password", v)
	if !v.Empty() {
		render(w, r, "register.html", map[string]any{"Errors": v, "Username": username, "Email": email})
		return
	}

	_, err := h.Users.Register(r.Context(), username, email, password)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		v["username"] = "That username is taken. Please choose a different one."
	case errors.Is(err, services.ErrEmailTaken):
		v["email"] = "That email is taken. Please choose a different one."
	case err != nil:
		log.Printf("register: %v", err)
		errorPage(w, r, http.StatusInternalServerError)
		return
	}
	if !v.Empty() {
		render(w, r, "register.html", map[string]any{"Errors": v, "Username": username, "Email": email})
		return
	}
	httpx.Flash(w, httpx.FlashSuccess, "Your account has been created! You are now able to log in")
	http.Redirect(w, r, "/login", statusSeeOther)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/home", statusSeeOther)
		return
	}
	if r.Method == http.MethodGet {
		render(w, r, "login.html", map[string]any{"Next": r.URL.Query().Get("next")})
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
	password := r.FormValue("password")
	remember := r.FormValue("remember") != ""
	next := r.FormValue("next")

	user, err := h.Users.Authenticate(r.Context(), email, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		render(w, r, "login.html", map[string]any{
			"Error": "Login Unsuccessful. Please check email and password",
			"Email": email,
			"Next":  next,
		})
		return
	}
	if err != nil {
		log.Printf("login: %v", err)
		errorPage(w, r, http.StatusInternalServerError)
		return
	}
	h.Sessions.CreateSession(w, user.ID, remember)
	if target, ok := auth.SafeNext(next); ok {
		http.Redirect(w, r, target, statusSeeOther)
		return
	}
	http.Redirect(w, r, "/home", statusSeeOther)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearSession(w)
	http.Redirect(w, r, "/login", statusSeeOther)
}
