package projections

import (
	"context"
	"errors"
	"image"
	"testing"

	"badgecreator/internal/domain/affiliation"
	"badgecreator/internal/domain/bulk"
	"badgecreator/internal/domain/entry"
	"badgecreator/internal/domain/photo"
)

type mockLister struct {
	names map[entry.Role][]string
	err   error
	calls []entry.Role
}

func (m *mockLister) Fetch(_ context.Context, role entry.Role) ([]string, error) {
	m.calls = append(m.calls, role)
	if m.err != nil {
		return nil, m.err
	}
	return m.names[role], nil
}

func newLister() *mockLister {
	return &mockLister{names: map[entry.Role][]string{
		entry.RoleStaff:  affiliation.Fallback(),
		entry.RoleVendor: {"Acme Swords", "Mead Hall"},
	}}
}

func TestQueryGetSingleEntryForm_Visibility(t *testing.T) {
	tests := []struct {
		role      entry.Role
		wantShown bool
	}{
		{entry.RoleStaff, true},
		{entry.RoleVendor, true},
		{entry.RoleEntertainment, true},
		{entry.RoleRoyalFamily, false},
		{entry.RoleSeasonPass, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			d := entry.NewDraft()
			d.SelectRole(tt.role)
			lister := newLister()
			f := QueryGetSingleEntryForm(context.Background(), GetSingleEntryFormQuery{Draft: d}, GetSingleEntryFormDeps{Affiliations: lister})
			if f.ShowAffiliation != tt.wantShown {
				t.Errorf("ShowAffiliation = %v, want %v", f.ShowAffiliation, tt.wantShown)
			}
			if wantCalls := map[bool]int{true: 1, false: 0}[tt.wantShown]; len(lister.calls) != wantCalls {
				t.Errorf("lookups = %d, want %d", len(lister.calls), wantCalls)
			}
		})
	}
}

func TestQueryGetSingleEntryForm_Choice(t *testing.T) {
	d := entry.NewDraft()
	d.SelectRole(entry.RoleVendor)
	d.Affiliation = "Mead Hall"
	f := QueryGetSingleEntryForm(context.Background(), GetSingleEntryFormQuery{Draft: d}, GetSingleEntryFormDeps{Affiliations: newLister()})
	if f.Choice.Options[0] != affiliation.Other || len(f.Choice.Options) != 3 {
		t.Errorf("Options = %v", f.Choice.Options)
	}
	if f.Choice.Selected != "Mead Hall" || f.Choice.OtherText != "" {
		t.Errorf("Choice = %+v", f.Choice)
	}

	d.Affiliation = "Pirate Cove"
	f = QueryGetSingleEntryForm(context.Background(), GetSingleEntryFormQuery{Draft: d}, GetSingleEntryFormDeps{Affiliations: newLister()})
	if f.Choice.Selected != affiliation.Other || f.Choice.OtherText != "Pirate Cove" {
		t.Errorf("free text choice = %+v", f.Choice)
	}
}

func TestQueryGetSingleEntryForm_LookupError(t *testing.T) {
	d := entry.NewDraft()
	d.SelectRole(entry.RoleEntertainment)
	lister := &mockLister{err: errors.New("connection refused")}
	f := QueryGetSingleEntryForm(context.Background(), GetSingleEntryFormQuery{Draft: d}, GetSingleEntryFormDeps{Affiliations: lister})
	if f.Choice.LookupError != LookupErrorPrefix+"connection refused" {
		t.Errorf("LookupError = %q", f.Choice.LookupError)
	}
	if len(f.Choice.Options) != 1 || f.Choice.Selected != affiliation.Other {
		t.Errorf("Choice = %+v, want only Other", f.Choice)
	}
}

func TestQueryGetSingleEntryForm_Photo(t *testing.T) {
	d := entry.NewDraft()
	d.SetPhoto(&photo.Upload{Image: image.NewRGBA(image.Rect(0, 0, 80, 40))})
	f := QueryGetSingleEntryForm(context.Background(), GetSingleEntryFormQuery{Draft: d}, GetSingleEntryFormDeps{Affiliations: newLister()})
	if !f.HasPhoto || f.HasCrop || f.PhotoWidth != 80 || f.PhotoHeight != 40 {
		t.Errorf("form = %+v", f)
	}
	if f.Box != (photo.Box{X: 20, Y: 0, Size: 40}) {
		t.Errorf("Box = %+v", f.Box)
	}
}

func TestQueryGetBulkEntryForm(t *testing.T) {
	d := bulk.NewDraft()
	d.Sheet.AddRow()
	d.Selected = "Security"
	d.Affiliation = "typed"
	lister := newLister()
	f := QueryGetBulkEntryForm(context.Background(), GetBulkEntryFormQuery{Draft: d}, GetBulkEntryFormDeps{Affiliations: lister})
	if len(f.Rows) != 2 {
		t.Errorf("Rows = %d, want 2", len(f.Rows))
	}
	if len(lister.calls) != 1 || lister.calls[0] != entry.RoleStaff {
		t.Errorf("lookups = %v, want [Staff]", lister.calls)
	}
	if f.Choice.Selected != "Security" || f.Choice.OtherText != "typed" {
		t.Errorf("Choice = %+v", f.Choice)
	}
}
