// AngelaMos | 2026
// mailer_test.go

package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/Deeazer/company-crm/internal/config"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m...)
	return nil
}

func TestSendPasswordReset(t *testing.T) {
	sender := &recordingSender{}
	mailer := NewMailerWithSender(sender, "noreply@crm.test")

	err := mailer.SendPasswordReset(context.Background(), PasswordResetMessage{
		To:        "bob@ex.com",
		FirstName: "Bob",
		ResetURL:  "http://localhost:3000/reset-password/abc123",
		ValidFor:  time.Hour,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"bob@ex.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{passwordResetSubject}, msg.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err = msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "reset-password/abc123")
}

func TestSendPasswordReset_Errors(t *testing.T) {
	msg := PasswordResetMessage{To: "bob@ex.com", ResetURL: "http://x/r/1"}

	unconfigured := NewSMTPMailer(config.MailConfig{})
	assert.ErrorIs(t,
		unconfigured.SendPasswordReset(context.Background(), msg),
		ErrNotConfigured,
	)

	boom := errors.New("connection refused")
	failing := NewMailerWithSender(&recordingSender{err: boom}, "noreply@crm.test")
	assert.ErrorIs(t, failing.SendPasswordReset(context.Background(), msg), boom)
}

func TestRenderPasswordReset(t *testing.T) {
	text, html, err := RenderPasswordReset(PasswordResetMessage{
		FirstName: "<script>",
		ResetURL:  "http://localhost:3000/reset-password/tok",
		ValidFor:  time.Hour,
	})
	require.NoError(t, err)

	assert.Contains(t, text, "http://localhost:3000/reset-password/tok")
	assert.Contains(t, text, "valid for 1 hour")
	assert.Contains(t, html, `href="http://localhost:3000/reset-password/tok"`)
	assert.NotContains(t, html, "<script>")
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "2 hours", humanDuration(2*time.Hour))
	assert.Equal(t, "30 minutes", humanDuration(30*time.Minute))
	assert.Equal(t, "a limited time", humanDuration(0))
}
