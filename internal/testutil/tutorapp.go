package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// TutorCookie names the cookie the fake tutor uses to tell students apart.
const TutorCookie = "tutor_session"

// TutorApp is a minimal tutoring application: a page with a text area and a
// submit button, answered by a page that shows a "Concept" heading.
type TutorApp struct {
	// Delay is slept before answering a submission.
	Delay time.Duration
	// Silent, when set, suppresses the marker for matching responses.
	Silent func(response string) bool

	Server *httptest.Server

	mu          sync.Mutex
	submissions map[string][]string
}

// NewTutorApp starts the app and stops it when the test ends.
func NewTutorApp(t *testing.T) *TutorApp {
	t.Helper()
	app := &TutorApp{submissions: map[string][]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", app.index)
	mux.HandleFunc("POST /submit", app.submit)
	app.Server = httptest.NewServer(mux)
	t.Cleanup(app.Server.Close)
	return app
}

// URL is the app's base URL.
func (a *TutorApp) URL() string { return a.Server.URL + "/" }

// Submissions returns every response received, keyed by session cookie.
func (a *TutorApp) Submissions() map[string][]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string][]string, len(a.submissions))
	for k, v := range a.submissions {
		out[k] = append([]string(nil), v...)
	}
	return out
}

const indexPage = `<!doctype html>
<html><body>
<h1>Tutor</h1>
<form method="post" action="/submit">
  <textarea name="response"></textarea>
  <input type="hidden" name="lesson" value="data-structures">
  <button type="submit">Submit response</button>
</form>
<div style="display:none">Concept</div>
</body></html>`

func (a *TutorApp) index(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(TutorCookie); err != nil {
		http.SetCookie(w, &http.Cookie{Name: TutorCookie, Value: newSessionID(), Path: "/"})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

func (a *TutorApp) submit(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(TutorCookie)
	if err != nil {
		http.Error(w, "no tutoring session", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	response := r.PostForm.Get("response")
	if response == "" || r.PostForm.Get("lesson") == "" {
		http.Error(w, "incomplete form", http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	a.submissions[c.Value] = append(a.submissions[c.Value], response)
	a.mu.Unlock()

	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-r.Context().Done():
			return
		}
	}

	heading := "<h2>Concept</h2>"
	if a.Silent != nil && a.Silent(response) {
		heading = "<h2>Thinking...</h2>"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!doctype html><html><body>%s<p>You said: %s</p></body></html>", heading, html.EscapeString(response))
}

func newSessionID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
