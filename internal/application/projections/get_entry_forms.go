package projections

import (
	"context"

	"badgecreator/internal/domain/affiliation"
	"badgecreator/internal/domain/bulk"
	"badgecreator/internal/domain/entry"
	"badgecreator/internal/domain/photo"
)

// AffiliationLister fetches the affiliation names offered for a role.
type AffiliationLister interface {
	Fetch(ctx context.Context, role entry.Role) ([]string, error)
}

// LookupErrorPrefix precedes the lookup failure text shown above the form.
const LookupErrorPrefix = "An error occurred while fetching affiliations: "

// AffiliationChoice is the affiliation picker state for one render.
type AffiliationChoice struct {
	Options     []string // always starts with affiliation.Other
	Selected    string   // option to preselect
	OtherText   string   // free-text value
	LookupError string   // user-facing lookup failure, empty on success
}

// affiliationChoice fetches the list for role and positions current within it.
// A lookup error leaves only the Other option, so the free-text field stays usable.
func affiliationChoice(ctx context.Context, lister AffiliationLister, role entry.Role, current string) AffiliationChoice {
	names, err := lister.Fetch(ctx, role)
	c := AffiliationChoice{}
	if err != nil {
		c.LookupError = LookupErrorPrefix + err.Error()
		names = nil
	}
	c.Options = affiliation.Options(names)
	if current != "" && affiliation.Contains(names, current) {
		c.Selected = current
	} else {
		c.Selected = affiliation.Other
		c.OtherText = current
	}
	return c
}

// --- Single entry ---

// GetSingleEntryFormQuery carries query parameters.
type GetSingleEntryFormQuery struct {
	Draft *entry.Draft
}

// GetSingleEntryFormDeps holds dependencies for GetSingleEntryForm.
type GetSingleEntryFormDeps struct {
	Affiliations AffiliationLister
}

// SingleEntryForm is everything the single-entry page renders.
type SingleEntryForm struct {
	FirstName       string
	LastName        string
	Role            entry.Role
	Roles           []entry.Role
	PersonID        string
	ShowAffiliation bool
	Affiliation     string // carried value when the picker is hidden
	Choice          AffiliationChoice
	HasPhoto        bool
	PhotoWidth      int
	PhotoHeight     int
	Box             photo.Box
	HasCrop         bool
}

// QueryGetSingleEntryForm builds the single-entry view from the session draft.
// PRE: query.Draft is non-nil
// POST: the lookup runs only when the role shows the picker; it is never cached
func QueryGetSingleEntryForm(ctx context.Context, query GetSingleEntryFormQuery, deps GetSingleEntryFormDeps) SingleEntryForm {
	d := query.Draft
	f := SingleEntryForm{
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Role:            d.Role,
		Roles:           entry.Roles,
		PersonID:        d.PersonID,
		ShowAffiliation: d.Role.ShowsAffiliation(),
		Affiliation:     d.Affiliation,
		HasCrop:         d.Cropped != nil,
	}
	if f.ShowAffiliation {
		f.Choice = affiliationChoice(ctx, deps.Affiliations, d.Role, d.Affiliation)
	}
	if d.Photo != nil {
		b := d.Photo.Bounds()
		f.HasPhoto = true
		f.PhotoWidth, f.PhotoHeight = b.Dx(), b.Dy()
		f.Box = photo.DefaultBox(b)
	}
	return f
}

// --- Bulk entry ---

// GetBulkEntryFormQuery carries query parameters.
type GetBulkEntryFormQuery struct {
	Draft *bulk.Draft
}

// GetBulkEntryFormDeps holds dependencies for GetBulkEntryForm.
type GetBulkEntryFormDeps struct {
	Affiliations AffiliationLister
}

// BulkEntryForm is everything the bulk page renders.
type BulkEntryForm struct {
	Rows   []bulk.Row
	Choice AffiliationChoice
}

// QueryGetBulkEntryForm builds the bulk view. The shared affiliation list is the Staff list;
// the free-text field always keeps what was typed.
// PRE: query.Draft is non-nil
func QueryGetBulkEntryForm(ctx context.Context, query GetBulkEntryFormQuery, deps GetBulkEntryFormDeps) BulkEntryForm {
	d := query.Draft
	choice := affiliationChoice(ctx, deps.Affiliations, entry.RoleStaff, affiliation.Resolve(d.Selected, d.Affiliation))
	choice.OtherText = d.Affiliation
	return BulkEntryForm{
		Rows:   d.Sheet.Rows(),
		Choice: choice,
	}
}
