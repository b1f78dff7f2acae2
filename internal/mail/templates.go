// AngelaMos | 2026
// templates.go

package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

const passwordResetSubject = "Password reset"

type PasswordResetMessage struct {
	To        string
	FirstName string
	ResetURL  string
	ValidFor  time.Duration
}

var passwordResetHTML = htmltemplate.Must(htmltemplate.New("reset.html").Parse(`<!DOCTYPE html>
<html>
<body>
<h1>Password reset</h1>
<p>Hello{{if .FirstName}} {{.FirstName}}{{end}},</p>
<p>To choose a new password follow this link:</p>
<p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>
<p>The link is valid for {{.ValidFor}} and can be used once.</p>
<p>If you did not ask for a reset you can ignore this message.</p>
</body>
</html>
`))

var passwordResetText = texttemplate.Must(texttemplate.New("reset.txt").Parse(`Hello{{if .FirstName}} {{.FirstName}}{{end}},

To choose a new password open:
{{.ResetURL}}

The link is valid for {{.ValidFor}} and can be used once.
If you did not ask for a reset you can ignore this message.
`))

type resetView struct {
	FirstName string
	ResetURL  string
	ValidFor  string
}

// RenderPasswordReset returns the plain text and HTML bodies.
func RenderPasswordReset(msg PasswordResetMessage) (string, string, error) {
	view := resetView{
		FirstName: msg.FirstName,
		ResetURL:  msg.ResetURL,
		ValidFor:  humanDuration(msg.ValidFor),
	}

	var text, html bytes.Buffer
	if err := passwordResetText.Execute(&text, view); err != nil {
		return "", "", fmt.Errorf("render reset text: %w", err)
	}
	if err := passwordResetHTML.Execute(&html, view); err != nil {
		return "", "", fmt.Errorf("render reset html: %w", err)
	}

	return text.String(), html.String(), nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a limited time"
	case d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
