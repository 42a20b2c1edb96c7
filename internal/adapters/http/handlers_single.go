package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"badgecreator/internal/application/orchestrators"
	"badgecreator/internal/application/projections"
	"badgecreator/internal/domain/affiliation"
	"badgecreator/internal/domain/entry"
	"badgecreator/internal/domain/photo"
	"badgecreator/internal/domain/session"
	"badgecreator/internal/domain/submission"
)

// maxSingleBody bounds a single-entry post: one photo plus the text fields.
const maxSingleBody = photo.MaxUploadBytes + 1<<20

// handleSingleForm renders the single-entry form, prefilling once per person_id.
func handleSingleForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := currentSession(r)
	sess.Page = session.PageSingle

	if pid := r.URL.Query().Get("person_id"); pid != "" && pid != sess.PrefillFor {
		sess.PrefillFor = pid
		err := orchestrators.ExecutePrefill(ctx, orchestrators.PrefillInput{PersonID: pid, Draft: sess.Single},
			orchestrators.PrefillDeps{Persons: deps.Persons})
		if err != nil {
			sess.AddFlash(session.FlashError, orchestrators.PrefillMessage(err))
		}
	}

	view := projections.QueryGetSingleEntryForm(ctx, projections.GetSingleEntryFormQuery{Draft: sess.Single},
		projections.GetSingleEntryFormDeps{Affiliations: deps.Affiliations})
	if view.Choice.LookupError != "" {
		sess.AddFlash(session.FlashError, view.Choice.LookupError)
	}
	render(w, r, "single.html", view)
}

// handleSinglePost applies the posted fields, then runs the requested action.
// A role change answers with a redirect straight away and drops the action.
func handleSinglePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := currentSession(r)
	sess.Page = session.PageSingle
	d := sess.Single

	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sess.AddFlash(session.FlashError, photo.ErrTooLarge.Error())
		} else {
			slog.Warn("single_form_parse_failed", "error", err)
			sess.AddFlash(session.FlashError, "The form could not be read. Please try again.")
		}
		redirect(w, r, "/single")
		return
	}

	d.FirstName = r.FormValue("first_name")
	d.LastName = r.FormValue("last_name")
	if role, ok := entry.ParseRole(r.FormValue("role")); ok && d.SelectRole(role) {
		slog.Info("single_event", "event", "role_changed", "role", role)
		redirect(w, r, "/single")
		return
	}
	if d.Role.ShowsAffiliation() {
		d.Affiliation = affiliation.Resolve(r.FormValue("affiliation_select"), r.FormValue("affiliation_other"))
	}

	switch r.FormValue("action") {
	case "upload":
		uploadPhoto(r, sess)
	case "crop":
		box := photo.Box{
			X:    formInt(r, "crop_x"),
			Y:    formInt(r, "crop_y"),
			Size: formInt(r, "crop_size"),
		}
		if err := orchestrators.ExecuteCropPhoto(orchestrators.CropPhotoInput{Draft: d, Box: box}); err != nil {
			sess.AddFlash(session.FlashError, err.Error())
		}
	case "submit":
		err := orchestrators.ExecuteSubmitBadge(ctx, orchestrators.SubmitBadgeInput{Draft: d},
			orchestrators.SubmitBadgeDeps{Badges: deps.Badges, LogDeps: logDeps()})
		if err != nil {
			sess.AddFlash(session.FlashError, submission.BadgeMessages.UserMessage(err))
		} else {
			sess.AddFlash(session.FlashSuccess, submission.BadgeMessages.Success)
		}
	}
	redirect(w, r, "/single")
}

func uploadPhoto(r *http.Request, sess *session.State) {
	file, _, err := r.FormFile("photo")
	if err != nil {
		sess.AddFlash(session.FlashError, "Choose a photo to upload.")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, photo.MaxUploadBytes+1))
	if err != nil {
		slog.Warn("photo_read_failed", "error", err)
		sess.AddFlash(session.FlashError, "The photo could not be read. Please try again.")
		return
	}
	err = orchestrators.ExecuteUploadPhoto(orchestrators.UploadPhotoInput{Draft: sess.Single, Raw: raw})
	if err != nil {
		msg := err.Error()
		if !errors.Is(err, photo.ErrEmpty) && !errors.Is(err, photo.ErrTooLarge) &&
			!errors.Is(err, photo.ErrTooManyPixels) && !errors.Is(err, photo.ErrUnsupportedFormat) {
			msg = photo.ErrUnsupportedFormat.Error()
		}
		sess.AddFlash(session.FlashError, msg)
	}
}

func formInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.FormValue(key))
	if err != nil {
		return 0
	}
	return n
}

// handleSinglePhoto serves the session's uploaded photo or its finalized crop.
func handleSinglePhoto(w http.ResponseWriter, r *http.Request) {
	d := currentSession(r).Single
	w.Header().Set("Cache-Control", "no-store")
	switch r.URL.Query().Get("kind") {
	case "cropped":
		if d.Cropped == nil {
			http.NotFound(w, r)
			return
		}
		png, err := photo.EncodePNG(d.Cropped)
		if err != nil {
			slog.Error("internal_error", "error", err.Error())
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	default:
		if d.Photo == nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", d.Photo.MIME)
		w.Write(d.Photo.Raw)
	}
}
