package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-blog/auth"
	"github.com/diewo77/go-blog/gate"
	"github.com/diewo77/go-blog/httpx"
	"github.com/diewo77/go-blog/internal/services"
	"github.com/diewo77/go-blog/validation"
)

// PostHandler serves post CRUD. Creation and mutation run behind the
// authentication gate; mutation additionally passes the ownership gate
// inside the posts service.
type PostHandler struct {
	Posts *services.Posts
}

func NewPostHandler(posts *services.Posts) *PostHandler {
	return &PostHandler{Posts: posts}
}

func postID(r *http.Request) (uint, bool) {
	id64, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// New handles GET/POST /post/new.
func (h *PostHandler) New(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginURL(r), statusSeeOther)
		return
	}
	if r.Method == http.MethodGet {
		render(w, r, "create_post.html", map[string]any{"Legend": "New Post"})
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
	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))

	v := validation.Violations{}
	validation.Required("title", title, v)
	validation.Length("title", title, 1, 100, v)
	validation.Required("content", content, v)
	if !v.Empty() {
		render(w, r, "create_post.html", map[string]any{"Legend": "New Post", "Errors": v, "Title": title, "Content": content})
		return
	}
	if _, err := h.Posts.Create(r.Context(), uid, title, content); err != nil {
		log.Printf("create post: %v", err)
		errorPage(w, r, http.StatusInternalServerError)
		return
	}
	httpx.Flash(w, httpx.FlashSuccess, "Your post has been created!")
	http.Redirect(w, r, "/home", statusSeeOther)
}

// Show handles GET /post/{id}.
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		errorPage(w, r, http.StatusNotFound)
		return
	}
	post, err := h.Posts.Get(r.Context(), id)
	if err != nil {
		errorPage(w, r, http.StatusNotFound)
		return
	}
	render(w, r, "post.html", map[string]any{"Post": post})
}

// Update handles GET/POST /post/{id}/update. Existence is checked before
// ownership so a missing post is a 404 for everyone.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginURL(r), statusSeeOther)
		return
	}
	id, ok := postID(r)
	if !ok {
		errorPage(w, r, http.StatusNotFound)
		return
	}
	post, err := h.Posts.Get(r.Context(), id)
	if err != nil {
		errorPage(w, r, http.StatusNotFound)
		return
	}

	if r.Method == http.MethodGet {
		if err := h.Posts.Authorize(r.Context(), uid, gate.ActionUpdate, post); err != nil {
			errorPage(w, r, http.StatusForbidden)
			return
		}
		render(w, r, "create_post.html", map[string]any{"Legend": "Update Post", "Title": post.Title, "Content": post.Content})
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
	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))

	v := validation.Violations{}
	validation.Required("title", title, v)
	validation.Length("title", title, 1, 100, v)
	validation.Required("content", content, v)
	if !v.Empty() {
		render(w, r, "create_post.html", map[string]any{"Legend": "Update Post", "Errors": v, "Title": title, "Content": content})
		return
	}

	updated, err := h.Posts.Update(r.Context(), uid, id, title, content)
	if err != nil {
		h.mutationError(w, r, err)
		return
	}
	httpx.Flash(w, httpx.FlashSuccess, "Your post has been updated!")
	http.Redirect(w, r, "/post/"+strconv.FormatUint(uint64(updated.ID), 10), statusSeeOther)
}

// Delete handles POST /post/{id}/delete. POST-only so links cannot
// delete by accident.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginURL(r), statusSeeOther)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := postID(r)
	if !ok {
		errorPage(w, r, http.StatusNotFound)
		return
	}
	if err := h.Posts.Delete(r.Context(), uid, id); err != nil {
		h.mutationError(w, r, err)
		return
	}
	httpx.Flash(w, httpx.FlashSuccess, "Your post has been deleted!")
	http.Redirect(w, r, "/home", statusSeeOther)
}

func (h *PostHandler) mutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		errorPage(w, r, http.StatusNotFound)
	case errors.Is(err, gate.ErrForbidden), errors.Is(err, gate.ErrUnauthenticated):
		errorPage(w, r, http.StatusForbidden)
	default:
		log.Printf("post mutation: %v", err)
		errorPage(w, r, http.StatusInternalServerError)
	}
}
