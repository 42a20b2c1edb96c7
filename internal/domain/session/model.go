package session

import (
	"time"

	"badgecreator/internal/domain/bulk"
	"badgecreator/internal/domain/entry"
)

// Page names a form controller.
type Page string

const (
	PageSingle Page = "single"
	PageBulk   Page = "bulk"
)

// ParsePage maps a route or query flag to a Page.
func ParsePage(s string) (Page, bool) {
	switch Page(s) {
	case PageSingle, PageBulk:
		return Page(s), true
	}
	return "", false
}

// FlashKind selects how a notification is styled.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot message shown on the next render.
type Flash struct {
	Kind    FlashKind
	Message string
}

// State is everything one browser session owns. It is never shared between sessions.
type State struct {
	ID         string
	Page       Page
	Single     *entry.Draft
	Bulk       *bulk.Draft
	PrefillFor string // person_id whose prefill was already attempted
	Flashes    []Flash
	LastSeen   time.Time
}

// New returns a fresh session on the given page.
func New(id string, page Page, now time.Time) *State {
	return &State{
		ID:       id,
		Page:     page,
		Single:   entry.NewDraft(),
		Bulk:     bulk.NewDraft(),
		LastSeen: now,
	}
}

// Reset discards both drafts and pending messages, keeping the session and its page.
func (s *State) Reset() {
	s.Single = entry.NewDraft()
	s.Bulk = bulk.NewDraft()
	s.PrefillFor = ""
	s.Flashes = nil
}

// AddFlash queues a message for the next render.
func (s *State) AddFlash(kind FlashKind, msg string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: msg})
}

// TakeFlashes returns and clears the queued messages.
func (s *State) TakeFlashes() []Flash {
	out := s.Flashes
	s.Flashes = nil
	return out
}
