package email

import (
	"bytes"
	"fmt"
	"html/template"

	"badgecreator/internal/domain/bulk"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(
	`<p>Hello {{.FirstName}} {{.LastName}},</p>` +
		`<p>You have been registered for {{.Event}} with {{.Affiliation}}. ` +
		`Your badge will be ready at check-in.</p>`))

// BulkConfirmations builds one message per entry that carries an email address.
// PRE: entries came from a successful bulk submission
// POST: entries without an email are skipped
func BulkConfirmations(event string, entries []bulk.Entry) ([]SendRequest, error) {
	var reqs []SendRequest
	for _, e := range entries {
		if e.Email == "" {
			continue
		}
		var body bytes.Buffer
		err := confirmationTmpl.Execute(&body, struct {
			bulk.Entry
			Event string
		}{e, event})
		if err != nil {
			return nil, fmt.Errorf("render confirmation: %w", err)
		}
		reqs = append(reqs, SendRequest{
			To:      []string{e.Email},
			Subject: fmt.Sprintf("%s badge registration", event),
			HTML:    body.String(),
		})
	}
	return reqs, nil
}
