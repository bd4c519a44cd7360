package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/diewo77/go-blog/internal/services"
)

// PagesHandler serves the public pages: the paginated home feed, a
// per-user post listing and the about page.
type PagesHandler struct {
	Users *services.Users
	Posts *services.Posts
}

func NewPagesHandler(users *services.Users, posts *services.Posts) *PagesHandler {
	return &PagesHandler{Users: users, Posts: posts}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func totalPages(total int64) int {
	pages := int((total + services.PostsPerPage - 1) / services.PostsPerPage)
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Home handles GET / and /home.
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	// The root pattern matches everything; anything else is a 404.
	if r.URL.Path != "/" && r.URL.Path != "/home" {
		errorPage(w, r, http.StatusNotFound)
		return
	}
	page := pageParam(r)
	posts, total, err := h.Posts.List(r.Context(), page)
	if err != nil {
		log.Printf("home: %v", err)
		errorPage(w, r, http.StatusInternalServerError)
		return
	}
	render(w, r, "home.html", map[string]any{
		"Posts":      posts,
		"Page":       page,
		"TotalPages": totalPages(total),
	})
}

// About handles GET /about.
func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	render(w, r, "about.html", nil)
}

// UserPosts handles GET /user/{username}.
func (h *PagesHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.GetByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		errorPage(w, r, http.StatusNotFound)
		return
	}
	page := pageParam(r)
	posts, total, err := h.Posts.ListByAuthor(r.Context(), user.ID, page)
	if err != nil {
		log.Printf("user posts: %v", err)
		errorPage(w, r, http.StatusInternalServerError)
		return
	}
	render(w, r, "user_posts.html", map[string]any{
		"User":       user,
		"Posts":      posts,
		"Total":      total,
		"Page":       page,
		"TotalPages": totalPages(total),
	})
}
