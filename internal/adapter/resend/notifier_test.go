package resend_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resendnotifier "github.com/folio-dev/folio/internal/adapter/resend"
	domaincontact "github.com/folio-dev/folio/internal/domain/contact"
)

type fakeSender struct {
	got  *resend.SendEmailRequest
	resp *resend.SendEmailResponse
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, p *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = p
	return f.resp, f.err
}

func submission() domaincontact.Submission {
	phone := "555-0100"
	return domaincontact.Submission{
		ID:             1,
		Name:           "Ada <script>",
		Email:          "ada@example.com",
		Phone:          &phone,
		Message:        "Hello & welcome",
		SubmissionDate: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotifyContact_SendsEscapedEmail(t *testing.T) {
	sender := &fakeSender{resp: &resend.SendEmailResponse{Id: "msg_1"}}
	n := resendnotifier.NewWithSender(sender, "Portfolio <hello@example.com>", []string{"owner@example.com"})

	require.NoError(t, n.NotifyContact(context.Background(), submission()))
	require.NotNil(t, sender.got)
	assert.Equal(t, "Portfolio <hello@example.com>", sender.got.From)
	assert.Equal(t, []string{"owner@example.com"}, sender.got.To)
	assert.Equal(t, "ada@example.com", sender.got.ReplyTo)
	assert.Contains(t, sender.got.Subject, "Ada <script>")
	assert.Contains(t, sender.got.Html, "Ada &lt;script&gt;")
	assert.NotContains(t, sender.got.Html, "<script>")
	assert.Contains(t, sender.got.Html, "Hello &amp; welcome")
	assert.Contains(t, sender.got.Html, "555-0100")
}

func TestNotifyContact_OmitsEmptyPhone(t *testing.T) {
	sender := &fakeSender{resp: &resend.SendEmailResponse{Id: "msg_1"}}
	n := resendnotifier.NewWithSender(sender, "from@example.com", []string{"to@example.com"})

	s := submission()
	s.Phone = nil
	require.NoError(t, n.NotifyContact(context.Background(), s))
	assert.NotContains(t, sender.got.Html, "Phone:")
}

func TestNotifyContact_Errors(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		n := resendnotifier.NewWithSender(&fakeSender{err: errors.New("401")}, "f", []string{"t"})
		require.Error(t, n.NotifyContact(context.Background(), submission()))
	})
	t.Run("empty id", func(t *testing.T) {
		n := resendnotifier.NewWithSender(&fakeSender{resp: &resend.SendEmailResponse{}}, "f", []string{"t"})
		require.Error(t, n.NotifyContact(context.Background(), submission()))
	})
}
