package utils

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "carnival_flash"

// Flash is a one-shot status message surfaced on the next page view.
// Categories follow the original UI: success, danger, info.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// SetFlash stores the message in a short-lived cookie, read and cleared by
// the next PopFlash.
func SetFlash(w http.ResponseWriter, message, category string) {
	data, err := json.Marshal(Flash{Message: message, Category: category})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending flash, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	data, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}
