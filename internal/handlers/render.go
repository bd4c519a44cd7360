package handlers

import (
	"fmt"
	"net/http"

	"github.com/diewo77/go-blog/auth"
	"github.com/diewo77/go-blog/httpx"
	"github.com/diewo77/go-blog/validation"
	"github.com/diewo77/go-blog/view"
)

// Explicit constant for 303 See Other (Post/Redirect/Get)
const statusSeeOther = 303

// render wraps view.Render, injecting the pending flash message and the
// current identity so the layout can show login/logout links.
func render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = validation.Violations{}
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		data["CurrentUserID"] = uid
	}
	if cat, msg := httpx.PopFlash(w, r); msg != "" {
		data["FlashCategory"] = cat
		data["Flash"] = msg
	}
	if err := view.Render(w, name, data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error")); werr != nil {
			_ = werr
		}
	}
}

// errorPage renders the dedicated page for 403/404/500.
func errorPage(w http.ResponseWriter, r *http.Request, status int) {
	w.WriteHeader(status)
	name := fmt.Sprintf("errors/%d.html", status)
	if err := view.Render(w, name, map[string]any{"Status": status}); err != nil {
		fmt.Fprintf(w, "%d %s", status, http.StatusText(status))
	}
}
