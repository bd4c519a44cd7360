package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-blog/auth"
	"github.com/diewo77/go-blog/httpx"
	"github.com/diewo77/go-blog/internal/handlers"
	"github.com/diewo77/go-blog/internal/models"
	"github.com/diewo77/go-blog/internal/services"
	"github.com/diewo77/go-blog/internal/storage"
)

// Deps bundles the dependency objects constructed once at startup. No
// package-level singletons: tests build as many independent instances as
// they need.
type Deps struct {
	DB       *gorm.DB
	Sessions *auth.Sessions
	Users    *services.Users
	Posts    *services.Posts
	Pictures storage.PictureStore
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth verifies the session's user still exists on each request.
	d.Sessions.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		if err := d.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := d.DB.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public pages
	pages := handlers.NewPagesHandler(d.Users, d.Posts)
	mux.HandleFunc("/", pages.Home)
	mux.HandleFunc("/home", pages.Home)
	mux.HandleFunc("/about", pages.About)
	mux.HandleFunc("/user/{username}", pages.UserPosts)

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(d.Users, d.Sessions)
	authHandler.Register(mux)

	// Account page (fully requires auth)
	accountHandler := handlers.NewAccountHandler(d.Users, d.Pictures)
	mux.Handle("/account", d.Sessions.RequireAuth(http.HandlerFunc(accountHandler.Handle)))

	// Post endpoints; reads are public, mutations behind the auth gate
	ph := handlers.NewPostHandler(d.Posts)
	mux.Handle("/post/new", d.Sessions.RequireAuth(http.HandlerFunc(ph.New)))
	mux.HandleFunc("/post/{id}", ph.Show)
	mux.Handle("/post/{id}/update", d.Sessions.RequireAuth(http.HandlerFunc(ph.Update)))
	mux.Handle("/post/{id}/delete", d.Sessions.RequireAuth(http.HandlerFunc(ph.Delete)))

	// Password reset
	resetHandler := handlers.NewResetHandler(d.Users)
	mux.HandleFunc("/reset_password", resetHandler.Request)
	mux.HandleFunc("/reset_password/{token}", resetHandler.Token)

	// Static assets (CSS, profile pictures)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	return d.Sessions.Middleware(withRecover(withLogging(mux)))
}

// Simple middleware logging & recovery kept private to this package.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
