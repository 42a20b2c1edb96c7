package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"badgecreator/internal/adapters/badgeapi"
	"badgecreator/internal/adapters/email"
	"badgecreator/internal/domain/bulk"
	"badgecreator/internal/domain/entry"
	"badgecreator/internal/domain/photo"
	"badgecreator/internal/domain/submission"
)

// --- mocks ---

type mockBadges struct {
	calls []badgeapi.BadgeRequest
	err   error
}

func (m *mockBadges) CreateBadge(_ context.Context, br badgeapi.BadgeRequest) error {
	m.calls = append(m.calls, br)
	return m.err
}

type mockBulk struct {
	calls [][]bulk.Entry
	err   error
}

func (m *mockBulk) SubmitBulk(_ context.Context, entries []bulk.Entry) error {
	m.calls = append(m.calls, entries)
	return m.err
}

type mockPersons struct {
	person entry.Person
	err    error
}

func (m *mockPersons) GetPerson(_ context.Context, id string) (entry.Person, error) {
	if m.err != nil {
		return entry.Person{}, m.err
	}
	p := m.person
	p.PersonID = id
	return p, nil
}

type mockLog struct {
	records []submission.Record
}

func (m *mockLog) Save(_ context.Context, r submission.Record) error {
	m.records = append(m.records, r)
	return nil
}

type mockMailer struct {
	reqs []email.SendRequest
}

func (m *mockMailer) SendBatch(_ context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	m.reqs = append(m.reqs, reqs...)
	return make([]email.SendResult, len(reqs)), nil
}

var fixedTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newLogDeps(l *mockLog) LogDeps {
	return LogDeps{
		Log:        l,
		GenerateID: func() string { return "rec-001" },
		Now:        func() time.Time { return fixedTime },
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func readyDraft(t *testing.T) *entry.Draft {
	t.Helper()
	d := entry.NewDraft()
	d.FirstName, d.LastName, d.Affiliation = "Ada", "Lovelace", "Admin"
	if err := ExecuteUploadPhoto(UploadPhotoInput{Draft: d, Raw: pngBytes(t, 40, 30)}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := ExecuteCropPhoto(CropPhotoInput{Draft: d, Box: photo.Box{Size: 30}}); err != nil {
		t.Fatalf("crop: %v", err)
	}
	return d
}

// --- ExecutePrefill ---

func TestExecutePrefill_Loaded(t *testing.T) {
	d := entry.NewDraft()
	persons := &mockPersons{person: entry.Person{
		FirstName: "Grace",
		LastName:  "Hopper",
		Badges: []entry.Badge{
			{EventID: "OLD24", Affiliation: "Old Guild", Role: "Vendor"},
			{EventID: entry.EventID, Affiliation: "Jesters", Role: "Entertainment"},
		},
	}}
	if err := ExecutePrefill(context.Background(), PrefillInput{PersonID: "p-42", Draft: d}, PrefillDeps{Persons: persons}); err != nil {
		t.Fatalf("ExecutePrefill: %v", err)
	}
	if d.FirstName != "Grace" || d.Role != entry.RoleEntertainment || d.Affiliation != "Jesters" {
		t.Errorf("draft = %+v", d)
	}
	if d.SubmissionPersonID() != "p-42" {
		t.Errorf("person id = %q, want p-42", d.SubmissionPersonID())
	}
}

func TestExecutePrefill_Failure(t *testing.T) {
	d := entry.NewDraft()
	err := ExecutePrefill(context.Background(), PrefillInput{PersonID: "p-1", Draft: d},
		PrefillDeps{Persons: &mockPersons{err: &submission.HTTPError{StatusCode: 404, Body: "nope"}}})
	if err == nil {
		t.Fatal("expected error")
	}
	if d.FirstName != "" || d.Role != entry.RoleStaff || d.SubmissionPersonID() != entry.NoPersonID {
		t.Errorf("draft changed on failure: %+v", d)
	}
	if got := PrefillMessage(err); got != "Failed to fetch existing badge data" {
		t.Errorf("PrefillMessage = %q", got)
	}
	if got := PrefillMessage(&submission.NetworkError{Err: errors.New("dial tcp")}); got != "Error fetching badge data: dial tcp" {
		t.Errorf("PrefillMessage = %q", got)
	}
}

// --- photo ---

func TestExecuteUploadPhoto_ReplacesCrop(t *testing.T) {
	d := readyDraft(t)
	if d.Cropped == nil {
		t.Fatal("expected crop")
	}
	if err := ExecuteUploadPhoto(UploadPhotoInput{Draft: d, Raw: pngBytes(t, 10, 10)}); err != nil {
		t.Fatalf("re-upload: %v", err)
	}
	if d.Cropped != nil {
		t.Error("re-upload kept the old crop")
	}
}

func TestExecuteUploadPhoto_Rejected(t *testing.T) {
	d := readyDraft(t)
	err := ExecuteUploadPhoto(UploadPhotoInput{Draft: d, Raw: []byte("GIF89a not really")})
	if !errors.Is(err, photo.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if d.Cropped == nil || d.Photo == nil {
		t.Error("rejected upload changed the draft")
	}
}

func TestExecuteCropPhoto(t *testing.T) {
	d := entry.NewDraft()
	if err := ExecuteCropPhoto(CropPhotoInput{Draft: d}); !errors.Is(err, photo.ErrNoUpload) {
		t.Fatalf("err = %v, want ErrNoUpload", err)
	}
	if err := ExecuteUploadPhoto(UploadPhotoInput{Draft: d, Raw: pngBytes(t, 50, 20)}); err != nil {
		t.Fatal(err)
	}
	if err := ExecuteCropPhoto(CropPhotoInput{Draft: d, Box: photo.Box{X: 45, Y: 0, Size: 20}}); err != nil {
		t.Fatalf("crop: %v", err)
	}
	b := d.Cropped.Bounds()
	if b.Dx() != photo.OutputSize || b.Dy() != photo.OutputSize {
		t.Errorf("crop = %v, want %dx%d", b, photo.OutputSize, photo.OutputSize)
	}
}

// --- ExecuteSubmitBadge ---

func TestExecuteSubmitBadge_Success(t *testing.T) {
	d := readyDraft(t)
	badges, log := &mockBadges{}, &mockLog{}
	err := ExecuteSubmitBadge(context.Background(), SubmitBadgeInput{Draft: d}, SubmitBadgeDeps{Badges: badges, LogDeps: newLogDeps(log)})
	if err != nil {
		t.Fatalf("ExecuteSubmitBadge: %v", err)
	}
	if len(badges.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(badges.calls))
	}
	br := badges.calls[0]
	if br.PersonID != entry.NoPersonID || br.EventID != entry.EventID || br.Role != "Staff" || br.Affiliation != "Admin" {
		t.Errorf("request = %+v", br)
	}
	if _, err := png.Decode(bytes.NewReader(br.PhotoPNG)); err != nil {
		t.Errorf("photo is not PNG: %v", err)
	}
	if d.FirstName != "Ada" || d.Cropped == nil {
		t.Error("draft was cleared after success")
	}
	if len(log.records) != 1 || log.records[0].Outcome != submission.OutcomeSuccess || log.records[0].Message != "Badge created successfully!" {
		t.Errorf("log = %+v", log.records)
	}
}

func TestExecuteSubmitBadge_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(d *entry.Draft)
		field string
	}{
		{"no crop", func(d *entry.Draft) { d.Cropped = nil }, "cropped photo"},
		{"no first name", func(d *entry.Draft) { d.FirstName = "  " }, "first name"},
		{"no affiliation", func(d *entry.Draft) { d.Affiliation = "" }, "affiliation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := readyDraft(t)
			tt.edit(d)
			badges, log := &mockBadges{}, &mockLog{}
			err := ExecuteSubmitBadge(context.Background(), SubmitBadgeInput{Draft: d}, SubmitBadgeDeps{Badges: badges, LogDeps: newLogDeps(log)})
			var verr *submission.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if len(verr.Missing) != 1 || verr.Missing[0] != tt.field {
				t.Errorf("Missing = %v, want [%s]", verr.Missing, tt.field)
			}
			if len(badges.calls) != 0 {
				t.Errorf("made %d HTTP calls on invalid draft", len(badges.calls))
			}
			if len(log.records) != 1 || log.records[0].Outcome != submission.OutcomeValidation {
				t.Errorf("log = %+v", log.records)
			}
		})
	}
}

func TestExecuteSubmitBadge_HTTPFailureKeepsDraft(t *testing.T) {
	d := readyDraft(t)
	badges := &mockBadges{err: &submission.HTTPError{StatusCode: 500, Body: "printer on fire"}}
	log := &mockLog{}
	err := ExecuteSubmitBadge(context.Background(), SubmitBadgeInput{Draft: d}, SubmitBadgeDeps{Badges: badges, LogDeps: newLogDeps(log)})
	if got := submission.BadgeMessages.UserMessage(err); got != "Failed to submit entry: printer on fire" {
		t.Errorf("message = %q", got)
	}
	if d.FirstName != "Ada" || d.Affiliation != "Admin" || d.Cropped == nil {
		t.Error("draft changed after failure")
	}
	if log.records[0].StatusCode != 500 || log.records[0].Outcome != submission.OutcomeHTTP {
		t.Errorf("log = %+v", log.records[0])
	}
}

func TestExecuteSubmitBadge_PhotoEncodeFailureLogged(t *testing.T) {
	d := readyDraft(t)
	d.Cropped = image.NewRGBA(image.Rect(0, 0, 0, 0))
	badges, log := &mockBadges{}, &mockLog{}
	err := ExecuteSubmitBadge(context.Background(), SubmitBadgeInput{Draft: d}, SubmitBadgeDeps{Badges: badges, LogDeps: newLogDeps(log)})
	if err == nil {
		t.Fatal("want encode error")
	}
	if len(badges.calls) != 0 {
		t.Error("badge posted without a photo")
	}
	if len(log.records) != 1 || log.records[0].Outcome == submission.OutcomeSuccess {
		t.Errorf("log = %+v, want one failed record", log.records)
	}
}

func TestExecuteSubmitBadge_NilLog(t *testing.T) {
	d := readyDraft(t)
	err := ExecuteSubmitBadge(context.Background(), SubmitBadgeInput{Draft: d}, SubmitBadgeDeps{Badges: &mockBadges{}})
	if err != nil {
		t.Fatalf("ExecuteSubmitBadge: %v", err)
	}
}

// --- ExecuteSubmitBulk ---

func bulkDraft(rows ...bulk.Row) *bulk.Draft {
	d := bulk.NewDraft()
	for len(rows) > d.Sheet.Len() {
		d.Sheet.AddRow()
	}
	d.Sheet.Fill(rows)
	return d
}

func TestExecuteSubmitBulk_Success(t *testing.T) {
	d := bulkDraft(
		bulk.Row{FirstName: "A", LastName: "One", Email: "a@example.com"},
		bulk.Row{FirstName: "B", LastName: "", Email: "b@example.com"},
		bulk.Row{FirstName: "C", LastName: "Three", Email: "c@example.com"},
	)
	d.Selected, d.Affiliation = "Security", "ignored free text"
	bulkAPI, log, mailer := &mockBulk{}, &mockLog{}, &mockMailer{}

	res, err := ExecuteSubmitBulk(context.Background(), SubmitBulkInput{Draft: d}, SubmitBulkDeps{
		Bulk: bulkAPI, Mailer: mailer, EventName: "Faire", LogDeps: newLogDeps(log),
	})
	if err != nil {
		t.Fatalf("ExecuteSubmitBulk: %v", err)
	}
	n := res.Submitted
	if res.SuspectEmailWarning() != "" {
		t.Errorf("unexpected warning %q", res.SuspectEmailWarning())
	}
	if n != 2 || len(bulkAPI.calls) != 1 || len(bulkAPI.calls[0]) != 2 {
		t.Fatalf("n=%d calls=%+v", n, bulkAPI.calls)
	}
	for _, e := range bulkAPI.calls[0] {
		if e.Affiliation != "Security" {
			t.Errorf("entry affiliation = %q, want Security", e.Affiliation)
		}
	}
	if bulkAPI.calls[0][1].FirstName != "C" {
		t.Errorf("order not preserved: %+v", bulkAPI.calls[0])
	}
	if len(mailer.reqs) != 2 {
		t.Errorf("confirmations = %d, want 2", len(mailer.reqs))
	}
	if log.records[0].Entries != 2 || log.records[0].Kind != submission.KindBulk {
		t.Errorf("log = %+v", log.records[0])
	}
	if d.Sheet.Len() != 3 {
		t.Error("sheet was resized after submit")
	}
}

func TestExecuteSubmitBulk_Validation(t *testing.T) {
	full := bulk.Row{FirstName: "A", LastName: "One", Email: "a@example.com"}
	tests := []struct {
		name     string
		draft    *bulk.Draft
		selected string
		free     string
		want     string
	}{
		{"no affiliation", bulkDraft(full), "", "  ", "Please provide an affiliation."},
		{"other without text", bulkDraft(full), "(Other)", "", "Please provide an affiliation."},
		{"no complete rows", bulkDraft(bulk.Row{FirstName: "A"}), "", "Guild", "Please provide at least one valid entry."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.draft.Selected, tt.draft.Affiliation = tt.selected, tt.free
			bulkAPI, mailer := &mockBulk{}, &mockMailer{}
			_, err := ExecuteSubmitBulk(context.Background(), SubmitBulkInput{Draft: tt.draft}, SubmitBulkDeps{Bulk: bulkAPI, Mailer: mailer})
			var verr *submission.ValidationError
			if !errors.As(err, &verr) || verr.Message != tt.want {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
			if len(bulkAPI.calls) != 0 || len(mailer.reqs) != 0 {
				t.Error("side effects on invalid bulk submit")
			}
		})
	}
}

// TestExecuteSubmitBulk_MalformedEmailStillPosted posts every complete row and only warns.
func TestExecuteSubmitBulk_MalformedEmailStillPosted(t *testing.T) {
	d := bulkDraft(
		bulk.Row{FirstName: "A", LastName: "B", Email: "front desk"},
		bulk.Row{FirstName: "C", LastName: "D", Email: "c@example.com"},
	)
	d.Affiliation = "Merchants"
	bulkAPI, mailer := &mockBulk{}, &mockMailer{}

	res, err := ExecuteSubmitBulk(context.Background(), SubmitBulkInput{Draft: d}, SubmitBulkDeps{
		Bulk: bulkAPI, Mailer: mailer, LogDeps: newLogDeps(&mockLog{}),
	})
	if err != nil {
		t.Fatalf("ExecuteSubmitBulk: %v", err)
	}
	if len(bulkAPI.calls) != 1 || len(bulkAPI.calls[0]) != 2 || res.Submitted != 2 {
		t.Fatalf("submitted=%d calls=%+v, want one POST with 2 entries", res.Submitted, bulkAPI.calls)
	}
	if bulkAPI.calls[0][0].Email != "front desk" {
		t.Errorf("entry email rewritten: %+v", bulkAPI.calls[0][0])
	}
	want := "The email address in row 1 may be malformed; please double-check it."
	if got := res.SuspectEmailWarning(); got != want {
		t.Errorf("warning = %q, want %q", got, want)
	}
	if len(mailer.reqs) != 1 || mailer.reqs[0].To[0] != "c@example.com" {
		t.Errorf("confirmations = %+v, want only c@example.com", mailer.reqs)
	}
}

func TestExecuteSubmitBulk_HTTPFailure(t *testing.T) {
	d := bulkDraft(bulk.Row{FirstName: "A", LastName: "One", Email: "a@example.com"})
	d.Affiliation = "Guild"
	mailer := &mockMailer{}
	_, err := ExecuteSubmitBulk(context.Background(), SubmitBulkInput{Draft: d}, SubmitBulkDeps{
		Bulk:   &mockBulk{err: &submission.HTTPError{StatusCode: 400, Body: "bad batch"}},
		Mailer: mailer,
	})
	if got := submission.BulkMessages.UserMessage(err); got != "Failed to submit bulk data: bad batch" {
		t.Errorf("message = %q", got)
	}
	if len(mailer.reqs) != 0 {
		t.Error("confirmations sent for a failed batch")
	}
}
