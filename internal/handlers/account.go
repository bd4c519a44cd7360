package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/diewo77/go-blog/auth"
	"github.com/diewo77/go-blog/httpx"
	"github.com/diewo77/go-blog/internal/services"
	"github.com/diewo77/go-blog/internal/storage"
	"github.com/diewo77/go-blog/validation"
)

// maxPictureUpload bounds the multipart memory for profile pictures.
const maxPictureUpload = 5 << 20

// AccountHandler serves the authenticated account page: username/email
// changes and profile picture upload.
type AccountHandler struct {
	Users    *services.Users
	Pictures storage.PictureStore
}

func NewAccountHandler(users *services.Users, pictures storage.PictureStore) *AccountHandler {
	return &AccountHandler{Users: users, Pictures: pictures}
}

func (h *AccountHandler) Handle(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginURL(r), statusSeeOther)
		return
	}
	user, err := h.Users.GetByID(r.Context(), uid)
	if err != nil {
		errorPage(w, r, http.StatusNotFound)
		return
	}

	if r.Method == http.MethodGet {
		render(w, r, "account.html", map[string]any{
			"Username":  user.Username,
			"Email":     user.Email,
			"ImageFile": user.ImageFile,
		})
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseMultipartForm(maxPictureUpload); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))

	v := validation.Violations{}
	validation.Required("username", username, v)
	validation.Length("username", username, 2, 20, v)
	validation.Required("email", email, v)
	validation.Email("email", email, v)

	imageFile := ""
	if file, header, ferr := r.FormFile("picture"); ferr == nil {
		defer file.Close()
		imageFile, err = h.Pictures.Save(file, header.Filename)
		if err != nil {
			v["picture"] = "Could not save picture. Only jpg and png files are allowed."
		}
	}

	if v.Empty() {
		err = h.Users.UpdateAccount(r.Context(), uid, username, email, imageFile)
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			v["username"] = "That username is taken. Please choose a different one."
		case errors.Is(err, services.ErrEmailTaken):
			v["email"] = "That email is taken. Please choose a different one."
		case err != nil:
			log.Printf("account update: %v", err)
			errorPage(w, r, http.StatusInternalServerError)
			return
		}
	}
	if !v.Empty() {
		render(w, r, "account.html", map[string]any{
			"Errors":    v,
			"Username":  username,
			"Email":     email,
			"ImageFile": user.ImageFile,
		})
		return
	}
	httpx.Flash(w, httpx.FlashSuccess, "Your account has been updated!")
	http.Redirect(w, r, "/account", statusSeeOther)
}
