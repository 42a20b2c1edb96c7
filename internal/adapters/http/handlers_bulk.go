package web

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/form"

	"badgecreator/internal/application/orchestrators"
	"badgecreator/internal/application/projections"
	"badgecreator/internal/domain/bulk"
	"badgecreator/internal/domain/session"
	"badgecreator/internal/domain/submission"
)

var formDecoder = form.NewDecoder()

// bulkPost is the decoded bulk form. Rows arrive as rows[i].first_name and so on.
type bulkPost struct {
	Rows        []bulk.Row `form:"rows"`
	Affiliation string     `form:"affiliation"`
	Selected    string     `form:"affiliation_select"`
	Action      string     `form:"action"`
}

// handleBulkForm renders the bulk table.
func handleBulkForm(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	sess.Page = session.PageBulk

	view := projections.QueryGetBulkEntryForm(r.Context(), projections.GetBulkEntryFormQuery{Draft: sess.Bulk},
		projections.GetBulkEntryFormDeps{Affiliations: deps.Affiliations})
	if view.Choice.LookupError != "" {
		sess.AddFlash(session.FlashError, view.Choice.LookupError)
	}
	render(w, r, "bulk.html", view)
}

// handleBulkPost saves the edited table, then adds a row or submits.
func handleBulkPost(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	sess.Page = session.PageBulk
	d := sess.Bulk

	var post bulkPost
	if err := r.ParseForm(); err == nil {
		err = formDecoder.Decode(&post, r.PostForm)
		if err != nil {
			slog.Warn("bulk_form_decode_failed", "error", err)
		}
	}
	d.Sheet.Fill(post.Rows)
	d.Affiliation = post.Affiliation
	d.Selected = post.Selected

	switch post.Action {
	case "add_row":
		d.Sheet.AddRow()
	case "submit":
		res, err := orchestrators.ExecuteSubmitBulk(r.Context(), orchestrators.SubmitBulkInput{Draft: d},
			orchestrators.SubmitBulkDeps{
				Bulk:      deps.Bulk,
				Mailer:    deps.Mailer,
				EventName: chrome.Title,
				LogDeps:   logDeps(),
			})
		if err != nil {
			sess.AddFlash(session.FlashError, submission.BulkMessages.UserMessage(err))
		} else {
			sess.AddFlash(session.FlashSuccess, submission.BulkMessages.Success)
			if msg := res.SuspectEmailWarning(); msg != "" {
				sess.AddFlash(session.FlashWarning, msg)
			}
		}
	}
	redirect(w, r, "/bulk")
}
