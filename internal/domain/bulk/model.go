package bulk

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Row is one attendee line of the bulk table.
type Row struct {
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Email     string `form:"email"`
}

// Complete reports whether all three fields are filled in.
func (r Row) Complete() bool {
	return r.FirstName != "" && r.LastName != "" && r.Email != ""
}

// Entry is a complete row augmented with the shared affiliation, as sent to the bulk endpoint.
type Entry struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Affiliation string `json:"affiliation"`
}

// Sheet is the growable attendee table.
// INVARIANT: rows are only appended; len(rows) >= 1.
type Sheet struct {
	rows []Row
}

// NewSheet returns a sheet seeded with one empty row.
func NewSheet() *Sheet {
	return &Sheet{rows: []Row{{}}}
}

// AddRow appends one empty row.
func (s *Sheet) AddRow() {
	s.rows = append(s.rows, Row{})
}

// Len returns the number of rows, filled or not.
func (s *Sheet) Len() int {
	return len(s.rows)
}

// Rows returns a copy of the table.
func (s *Sheet) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Fill overwrites row values from posted input. Values past the current length are ignored,
// so posting never grows or shrinks the table.
func (s *Sheet) Fill(posted []Row) {
	for i := 0; i < len(posted) && i < len(s.rows); i++ {
		s.rows[i] = Row{
			FirstName: strings.TrimSpace(posted[i].FirstName),
			LastName:  strings.TrimSpace(posted[i].LastName),
			Email:     strings.TrimSpace(posted[i].Email),
		}
	}
}

// Entries returns the complete rows, in table order, each tagged with affiliation.
func (s *Sheet) Entries(affiliation string) []Entry {
	var out []Entry
	for _, r := range s.rows {
		if !r.Complete() {
			continue
		}
		out = append(out, Entry{
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			Email:       r.Email,
			Affiliation: affiliation,
		})
	}
	return out
}

var validate = validator.New()

// ValidEmail reports whether addr is syntactically an email address.
func ValidEmail(addr string) bool {
	return validate.Var(addr, "email") == nil
}

// InvalidEmails returns the 1-based numbers of complete rows whose email looks malformed.
// It is advisory; malformed rows still count as complete.
func (s *Sheet) InvalidEmails() []int {
	var bad []int
	for i, r := range s.rows {
		if r.Complete() && !ValidEmail(r.Email) {
			bad = append(bad, i+1)
		}
	}
	return bad
}

// Draft is the bulk form state for one session.
type Draft struct {
	Sheet       *Sheet
	Affiliation string // free text
	Selected    string // list selection; overrides Affiliation unless Other
}

// NewDraft returns an empty bulk draft.
func NewDraft() *Draft {
	return &Draft{Sheet: NewSheet()}
}
