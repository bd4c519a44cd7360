package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-blog/auth"
	appdb "github.com/diewo77/go-blog/internal/db"
	"github.com/diewo77/go-blog/internal/mail"
	"github.com/diewo77/go-blog/internal/models"
	"github.com/diewo77/go-blog/internal/services"
	"github.com/diewo77/go-blog/internal/storage"
	"github.com/diewo77/go-blog/internal/token"
	"github.com/diewo77/go-blog/view"
)

type testApp struct {
	handler  http.Handler
	db       *gorm.DB
	sessions *auth.Sessions
	users    *services.Users
	posts    *services.Posts
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	view.SetBaseDir("../../templates")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := appdb.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sessions := auth.New("testsecret")
	tokens := token.NewService("testsecret")
	mailer := mail.NewSMTPMailer("", "", "", "", "")
	users := services.NewUsers(conn, tokens, mailer, "http://example.com")
	posts := services.NewPosts(conn)
	pictures := storage.NewDiskStore(t.TempDir())
	handler := New(Deps{DB: conn, Sessions: sessions, Users: users, Posts: posts, Pictures: pictures})
	return &testApp{handler: handler, db: conn, sessions: sessions, users: users, posts: posts}
}

// loginCookie mints a valid session cookie for the given user.
func (a *testApp) loginCookie(userID uint) *http.Cookie {
	rec := httptest.NewRecorder()
	a.sessions.CreateSession(rec, userID, false)
	return rec.Result().Cookies()[0]
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)
	if w := app.get(t, "/health"); w.Code != http.StatusOK {
		t.Fatalf("health: expected 200 got %d", w.Code)
	}
	if w := app.get(t, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200 got %d", w.Code)
	}
}

func TestRegisterThenLoginFlow(t *testing.T) {
	app := newTestApp(t)

	w := app.postForm(t, "/register", url.Values{
		"username":         {"corey"},
		"email":            {"corey@demo.com"},
		"password":         {"testing"},
		"confirm_password": {"testing"},
	})
	if w.Code != 303 || w.Header().Get("Location") != "/login" {
		t.Fatalf("register: expected 303 to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	// Bad password re-renders the login page with the failure message.
	w = app.postForm(t, "/login", url.Values{"email": {"corey@demo.com"}, "password": {"wrong"}})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Login Unsuccessful") {
		t.Fatalf("bad login: expected rendered failure, got %d", w.Code)
	}

	w = app.postForm(t, "/login", url.Values{"email": {"corey@demo.com"}, "password": {"testing"}})
	if w.Code != 303 || w.Header().Get("Location") != "/home" {
		t.Fatalf("login: expected 303 to /home, got %d %q", w.Code, w.Header().Get("Location"))
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login: no session cookie set")
	}

	w = app.get(t, "/account", cookies[0])
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "corey") {
		t.Fatalf("account: expected 200 with username, got %d", w.Code)
	}
}

func TestAccountRedirectsAnonymousWithNext(t *testing.T) {
	app := newTestApp(t)
	w := app.get(t, "/account")
	if w.Code != 303 {
		t.Fatalf("expected 303 got %d", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login?next=") || !strings.Contains(loc, "%2Faccount") {
		t.Fatalf("expected redirect to /login with next param, got %q", loc)
	}
}

func TestLoginHonorsNextParam(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.users.Register(context.Background(), "corey", "corey@demo.com", "testing"); err != nil {
		t.Fatalf("register: %v", err)
	}
	w := app.postForm(t, "/login?next=%2Faccount", url.Values{"email": {"corey@demo.com"}, "password": {"testing"}})
	if w.Code != 303 || w.Header().Get("Location") != "/account" {
		t.Fatalf("expected 303 to /account, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestPostMutationsEnforceOwnership(t *testing.T) {
	app := newTestApp(t)
	owner, err := app.users.Register(context.Background(), "owner", "owner@demo.com", "testing")
	if err != nil {
		t.Fatalf("register owner: %v", err)
	}
	other, err := app.users.Register(context.Background(), "other", "other@demo.com", "testing")
	if err != nil {
		t.Fatalf("register other: %v", err)
	}
	post, err := app.posts.Create(context.Background(), owner.ID, "First Post", "original content")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	path := fmt.Sprintf("/post/%d/update", post.ID)
	w := app.postForm(t, path, url.Values{"title": {"Hacked"}, "content": {"pwned"}}, app.loginCookie(other.ID))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: expected 403 got %d", w.Code)
	}
	var check models.Post
	if err := app.db.First(&check, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if check.Title != "First Post" || check.Content != "original content" {
		t.Fatalf("post mutated by non-owner: %+v", check)
	}

	w = app.postForm(t, fmt.Sprintf("/post/%d/delete", post.ID), url.Values{}, app.loginCookie(other.ID))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: expected 403 got %d", w.Code)
	}

	w = app.postForm(t, path, url.Values{"title": {"Updated"}, "content": {"new content"}}, app.loginCookie(owner.ID))
	if w.Code != 303 {
		t.Fatalf("owner update: expected 303 got %d", w.Code)
	}
	if err := app.db.First(&check, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if check.Title != "Updated" {
		t.Fatalf("owner update not persisted: %+v", check)
	}

	w = app.postForm(t, fmt.Sprintf("/post/%d/delete", post.ID), url.Values{}, app.loginCookie(owner.ID))
	if w.Code != 303 || w.Header().Get("Location") != "/home" {
		t.Fatalf("owner delete: expected 303 to /home, got %d %q", w.Code, w.Header().Get("Location"))
	}
	var count int64
	app.db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
	if count != 0 {
		t.Fatal("post still present after delete")
	}
}

func TestMissingPostIs404ForEveryone(t *testing.T) {
	app := newTestApp(t)
	user, err := app.users.Register(context.Background(), "corey", "corey@demo.com", "testing")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if w := app.get(t, "/post/999"); w.Code != http.StatusNotFound {
		t.Fatalf("anonymous show: expected 404 got %d", w.Code)
	}
	w := app.postForm(t, "/post/999/update", url.Values{"title": {"x"}, "content": {"y"}}, app.loginCookie(user.ID))
	if w.Code != http.StatusNotFound {
		t.Fatalf("update missing: expected 404 got %d", w.Code)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	app := newTestApp(t)
	if w := app.get(t, "/no-such-page"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestUserPostsPage(t *testing.T) {
	app := newTestApp(t)
	user, err := app.users.Register(context.Background(), "corey", "corey@demo.com", "testing")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := app.posts.Create(context.Background(), user.ID, "Visible Title", "body"); err != nil {
		t.Fatalf("create post: %v", err)
	}
	w := app.get(t, "/user/corey")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Visible Title") {
		t.Fatalf("expected 200 with post title, got %d", w.Code)
	}
	if w := app.get(t, "/user/nobody"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown user: expected 404 got %d", w.Code)
	}
}

func TestResetWithBadTokenRedirects(t *testing.T) {
	app := newTestApp(t)
	w := app.get(t, "/reset_password/not-a-real-token")
	if w.Code != 303 || w.Header().Get("Location") != "/reset_password" {
		t.Fatalf("expected 303 to /reset_password, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestStaleSessionRejected(t *testing.T) {
	app := newTestApp(t)
	user, err := app.users.Register(context.Background(), "corey", "corey@demo.com", "testing")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	cookie := app.loginCookie(user.ID)
	if err := app.db.Delete(&models.User{}, user.ID).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}
	w := app.get(t, "/account", cookie)
	if w.Code != 303 || !strings.HasPrefix(w.Header().Get("Location"), "/login") {
		t.Fatalf("stale session: expected redirect to login, got %d %q", w.Code, w.Header().Get("Location"))
	}
}
