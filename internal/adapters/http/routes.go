package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"badgecreator/internal/adapters/http/middleware"
	"badgecreator/internal/application/projections"
	"badgecreator/internal/domain/photo"
	"badgecreator/internal/domain/session"
	"badgecreator/internal/domain/submission"
)

// registerRoutes adds every route to mux. The debug endpoints are mounted only when debug is set.
func registerRoutes(mux *http.ServeMux, debug bool) {
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /single", handleSingleForm)
	mux.HandleFunc("POST /single", handleSinglePost)
	mux.HandleFunc("GET /single/photo", handleSinglePhoto)
	mux.HandleFunc("GET /bulk", handleBulkForm)
	mux.HandleFunc("POST /bulk", handleBulkPost)
	mux.HandleFunc("POST /reset", handleReset)
	if debug {
		mux.HandleFunc("GET /debug/perf", handlePerf)
		mux.HandleFunc("GET /debug/submissions", handleSubmissions)
	}
}

// currentSession returns the request's form session.
// PRE: the Sessions middleware wraps the mux
func currentSession(r *http.Request) *session.State {
	s, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		panic("web: request without form session")
	}
	return s
}

// redirect answers a form post with 303 See Other.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// handleIndex picks the controller: ?page= wins, otherwise the session's page.
func handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if p, ok := session.ParsePage(r.URL.Query().Get("page")); ok {
		sess.Page = p
	}
	if sess.Page == session.PageBulk {
		handleBulkForm(w, r)
		return
	}
	handleSingleForm(w, r)
}

// handleReset discards both drafts and returns to the current page.
// maxFormBody bounds every post other than the single-entry form.
const maxFormBody = 4 << 20

// handleTooLarge answers a post whose declared body exceeds its cap.
// The body is left unread; the user is sent back to the form with a notice.
func handleTooLarge(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	target := "/" + string(sess.Page)
	if r.URL.Path == "/single" {
		sess.AddFlash(session.FlashError, photo.ErrTooLarge.Error())
		target = "/single"
	} else {
		sess.AddFlash(session.FlashError, "The form was too large to submit.")
	}
	w.Header().Set("Connection", "close")
	redirect(w, r, target)
}

func handleReset(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	sess.Reset()
	redirect(w, r, "/"+string(sess.Page))
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// handlePerf returns the last hour of timing data as JSON.
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if deps.Collector == nil {
		http.Error(w, "perf collector disabled", http.StatusNotFound)
		return
	}
	snap := deps.Collector.Snapshot(timeNow().Add(-time.Hour), 10)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// handleSubmissions renders the recent submission log (GET /debug/submissions).
// Query: kind=badge|bulk filters, limit caps the rows read.
func handleSubmissions(w http.ResponseWriter, r *http.Request) {
	if deps.Submissions == nil {
		http.Error(w, "submission log disabled", http.StatusNotFound)
		return
	}
	query := projections.GetSubmissionLogQuery{}
	switch k := submission.Kind(r.URL.Query().Get("kind")); k {
	case submission.KindBadge, submission.KindBulk:
		query.Kind = k
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		query.Limit = l
	}

	view, err := projections.QueryGetSubmissionLog(r.Context(), query, projections.GetSubmissionLogDeps{Reader: deps.Submissions})
	if err != nil {
		slog.Error("submission_log_read_failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	render(w, r, "submissions.html", view)
}
