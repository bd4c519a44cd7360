// Package view renders page templates inside the shared layout. The core
// never consults it to make decisions; handlers call Render only after a
// request has already succeeded or failed.
package view

import (
	"crypto/sha1"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

func detectBase() {
	// Running from repo root or a subdir (e.g., cmd/server) both work.
	candidates := []string{"templates", "../templates", "../../templates", "../../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// SetBaseDir overrides template directory detection (useful in tests).
func SetBaseDir(dir string) {
	once.Do(func() {})
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	baseDir = dir
}

// Funcs returns the standard func map shared by all templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year":  func() int { return time.Now().Year() },
		"asset": func(path string) string { return versionedAsset(path) },
		"inc":   func(n int) int { return n + 1 },
		"dec":   func(n int) int { return n - 1 },
	}
}

// versionedAsset returns /static/<name>?v=<hash> for cache busting.
func versionedAsset(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	b, err := os.ReadFile(filepath.Join("static", rel))
	if err != nil {
		return "/static/" + rel
	}
	h := sha1.Sum(b)
	return "/static/" + rel + "?v=" + fmt.Sprintf("%x", h[:8])
}

// Render parses and executes a page template wrapped in layout.html.
// name is the page filename (e.g., "login.html"). Parsed templates are
// cached outside DEV mode.
func Render(w http.ResponseWriter, name string, data map[string]any) error {
	once.Do(detectBase)
	if data == nil {
		data = map[string]any{}
	}

	devMode := os.Getenv("DEV") == "1"
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok && t != nil {
			return execute(w, t, data)
		}
	}

	layoutPath := filepath.Join(baseDir, "layout.html")
	pagePath := filepath.Join(baseDir, name)
	t, err := template.New("layout.html").Funcs(Funcs()).ParseFiles(layoutPath, pagePath)
	if err != nil {
		return err
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return execute(w, t, data)
}

func execute(w http.ResponseWriter, t *template.Template, data map[string]any) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.ExecuteTemplate(w, "layout.html", data)
}
