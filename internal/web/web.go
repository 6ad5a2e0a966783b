// Package web holds the static pages served by the API.
package web

import (
	"embed"
	"net/http"
)

//go:embed verified.html
var pages embed.FS

// VerifiedPage serves the email verification confirmation page. The page
// reads the error and message query parameters client-side, so failures
// redirected from the verify endpoint render without server templating.
func VerifiedPage(w http.ResponseWriter, r *http.Request) {
	page, err := pages.ReadFile("verified.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}
