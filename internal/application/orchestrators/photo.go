package orchestrators

import (
	"log/slog"

	"badgecreator/internal/domain/entry"
	"badgecreator/internal/domain/photo"
)

// --- Upload Photo ---

// UploadPhotoInput carries input for the upload photo orchestrator.
type UploadPhotoInput struct {
	Draft *entry.Draft
	Raw   []byte
}

// ExecuteUploadPhoto decodes the upload and makes it the draft's current photo.
// PRE: input.Draft is non-nil
// POST: on success Draft.Photo is replaced and Draft.Cropped is nil; on error the draft is untouched
func ExecuteUploadPhoto(input UploadPhotoInput) error {
	u, err := photo.Decode(input.Raw)
	if err != nil {
		slog.Info("photo_event", "event", "upload_rejected", "bytes", len(input.Raw), "error", err)
		return err
	}
	input.Draft.SetPhoto(u)
	b := u.Bounds()
	slog.Info("photo_event", "event", "upload_accepted", "mime", u.MIME, "width", b.Dx(), "height", b.Dy())
	return nil
}

// --- Crop Photo ---

// CropPhotoInput carries input for the crop photo orchestrator.
type CropPhotoInput struct {
	Draft *entry.Draft
	Box   photo.Box
}

// ExecuteCropPhoto finalizes the crop of the current upload.
// PRE: input.Draft is non-nil
// POST: Draft.Cropped is a square OutputSize image; a previous crop is replaced
func ExecuteCropPhoto(input CropPhotoInput) error {
	if input.Draft.Photo == nil {
		return photo.ErrNoUpload
	}
	box := input.Box.Clamp(input.Draft.Photo.Bounds())
	input.Draft.SetCrop(photo.CropSquare(input.Draft.Photo.Image, box))
	slog.Info("photo_event", "event", "crop_finalized", "x", box.X, "y", box.Y, "size", box.Size)
	return nil
}
