package httpx

import (
	"encoding/json"
	"net/http"
	"net/url"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Flash categories, matching the alert classes templates render.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

const flashCookie = "flash"

// Flash stores a one-shot message for the next rendered page.
func Flash(w http.ResponseWriter, category, msg string) {
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: url.QueryEscape(category + "|" + msg), Path: "/"})
}

// PopFlash reads and clears the pending flash message. Returns empty
// strings when none is set.
func PopFlash(w http.ResponseWriter, r *http.Request) (category, msg string) {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return "", ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	decoded, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", ""
	}
	for i := 0; i < len(decoded); i++ {
		if decoded[i] == '|' {
			return decoded[:i], decoded[i+1:]
		}
	}
	return FlashInfo, decoded
}
