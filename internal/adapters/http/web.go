package web

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"badgecreator/internal/adapters/email"
	"badgecreator/internal/adapters/http/middleware"
	"badgecreator/internal/adapters/http/perf"
	"badgecreator/internal/adapters/qrcode"
	"badgecreator/internal/application/orchestrators"
	"badgecreator/internal/application/projections"
	"badgecreator/internal/domain/session"
)

// Deps holds the collaborators the handlers call.
type Deps struct {
	Affiliations projections.AffiliationLister
	Badges       orchestrators.BadgeCreator
	Bulk         orchestrators.BulkSubmitter
	Persons      orchestrators.PersonFetcher
	Log          orchestrators.SubmissionLog     // optional
	Submissions  projections.SubmissionLogReader // optional; backs /debug/submissions
	Mailer       email.Sender                    // optional
	Collector    *perf.Collector                 // optional
}

// Options holds presentation and security settings.
type Options struct {
	Title          string
	LogoURL        string
	Intro          string // markdown
	PublicURL      string
	DefaultPage    session.Page
	CSRFKey        []byte // random per start when nil
	Production     bool
	TrustedOrigins []string
	SlowRequestMs  float64
}

// site is the per-process page chrome.
type site struct {
	Title   string
	LogoURL string
	Intro   template.HTML
	QR      template.URL
	Debug   bool
}

// Global dependencies (set by NewMux)
var deps *Deps

var chrome site

var sessions *middleware.SessionStore

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// mdRenderer renders the intro text. Raw HTML in the input is escaped.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func logDeps() orchestrators.LogDeps {
	return orchestrators.LogDeps{Log: deps.Log, GenerateID: generateID, Now: timeNow}
}

// csrfKeyOrRandom returns key, or a fresh random key when none is configured.
func csrfKeyOrRandom(key []byte) ([]byte, error) {
	if key != nil {
		return key, nil
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	slog.Warn("csrf_key_random", "hint", "set BADGE_CSRF_KEY so form tokens survive a restart")
	return key, nil
}

// setup stores dependencies and page chrome for the handlers.
func setup(d *Deps, opts Options) {
	deps = d
	sessions = middleware.NewSessionStore(middleware.DefaultSessionTTL, opts.DefaultPage)
	chrome = site{
		Title:   opts.Title,
		LogoURL: opts.LogoURL,
		Debug:   !opts.Production,
	}
	if opts.Intro != "" {
		chrome.Intro = renderMarkdown(opts.Intro)
	}
	if opts.PublicURL != "" {
		qr, err := qrcode.DataURI(opts.PublicURL, qrcode.DefaultSize)
		if err != nil {
			slog.Warn("qr_failed", "url", opts.PublicURL, "error", err)
		}
		chrome.QR = qr
	}
}

// NewMux wires HTTP handlers for the app.
// PRE: d carries non-nil Affiliations, Badges, Bulk and Persons
func NewMux(d *Deps, opts Options) (http.Handler, error) {
	setup(d, opts)

	csrfKey, err := csrfKeyOrRandom(opts.CSRFKey)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, !opts.Production)

	// Apply middleware: Timing -> SecurityHeaders -> Sessions -> MaxBody -> CSRF -> Mux
	return middleware.Chain(mux,
		middleware.CSRF(csrfKey, opts.Production, opts.TrustedOrigins),
		middleware.MaxBody(maxFormBody, map[string]int64{"/single": maxSingleBody}, http.HandlerFunc(handleTooLarge)),
		middleware.Sessions(sessions, opts.Production),
		middleware.SecurityHeaders,
		middleware.Timing(d.Collector, opts.SlowRequestMs),
	), nil
}

// RunSessionJanitor expires idle form sessions until ctx is done.
func RunSessionJanitor(ctx context.Context) {
	sessions.RunJanitor(ctx, 10*time.Minute)
}
