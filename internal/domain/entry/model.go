package entry

import (
	"image"
	"strings"

	"github.com/go-playground/validator/v10"

	"badgecreator/internal/domain/photo"
	"badgecreator/internal/domain/submission"
)

// EventID tags every submission with the event instance this form issues badges for.
const EventID = "BRF25"

// NoPersonID is sent as person_id when the draft was not prefilled from an existing record.
const NoPersonID = "None"

// Role is the category of badge holder.
type Role string

const (
	RoleStaff         Role = "Staff"
	RoleVendor        Role = "Vendor"
	RoleEntertainment Role = "Entertainment"
	RoleRoyalFamily   Role = "Royal Family"
	RoleSeasonPass    Role = "Season Pass"
)

// Roles lists every role in the order the form presents them.
var Roles = []Role{RoleStaff, RoleVendor, RoleEntertainment, RoleRoyalFamily, RoleSeasonPass}

// ParseRole maps a posted value to a Role.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// ShowsAffiliation reports whether the affiliation list and free-text field are shown.
// Royal Family and Season Pass carry their affiliation over from existing state instead.
func (r Role) ShowsAffiliation() bool {
	return r != RoleRoyalFamily && r != RoleSeasonPass
}

// Draft is the single-entry form state for one session.
// INVARIANT: Cropped is nil or derived from the current Photo.
type Draft struct {
	FirstName    string
	LastName     string
	Role         Role
	Affiliation  string
	PreviousRole Role
	PersonID     string // set only when an existing record was loaded
	Photo        *photo.Upload
	Cropped      image.Image
}

// NewDraft returns an empty draft with the default role.
func NewDraft() *Draft {
	return &Draft{Role: RoleStaff, PreviousRole: RoleStaff}
}

// SelectRole records the chosen role. When it differs from the previously recorded role the
// affiliation is cleared and true is returned: the form must be rendered again before any
// further action runs. Selecting the same role again is a no-op.
// POST: PreviousRole == Role == r
func (d *Draft) SelectRole(r Role) bool {
	d.Role = r
	if d.PreviousRole == r {
		return false
	}
	d.Affiliation = ""
	d.PreviousRole = r
	return true
}

// SetPhoto replaces the uploaded photo and discards any earlier crop.
func (d *Draft) SetPhoto(u *photo.Upload) {
	d.Photo = u
	d.Cropped = nil
}

// SetCrop stores the finalized crop of the current photo.
func (d *Draft) SetCrop(img image.Image) {
	d.Cropped = img
}

// SubmissionPersonID returns the person_id field for the badge request.
func (d *Draft) SubmissionPersonID() string {
	if d.PersonID == "" {
		return NoPersonID
	}
	return d.PersonID
}

// Normalize trims whitespace from typed fields.
func (d *Draft) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Affiliation = strings.TrimSpace(d.Affiliation)
}

var validate = validator.New()

// requiredFields mirrors what a badge needs, for every role.
type requiredFields struct {
	FirstName   string `validate:"required"`
	LastName    string `validate:"required"`
	Affiliation string `validate:"required"`
	Cropped     bool   `validate:"required"`
}

var fieldLabels = map[string]string{
	"FirstName":   "first name",
	"LastName":    "last name",
	"Affiliation": "affiliation",
	"Cropped":     "cropped photo",
}

// Validate checks the fields required before a badge can be submitted.
// PRE: none
// POST: returns a single *submission.ValidationError naming every missing field, or nil
func (d *Draft) Validate() error {
	d.Normalize()
	err := validate.Struct(requiredFields{
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Affiliation: d.Affiliation,
		Cropped:     d.Cropped != nil,
	})
	if err == nil {
		return nil
	}
	verr := &submission.ValidationError{Message: "Please fill in all fields and upload a cropped photo."}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			verr.Missing = append(verr.Missing, fieldLabels[fe.Field()])
		}
	}
	return verr
}
