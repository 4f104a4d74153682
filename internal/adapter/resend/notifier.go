package resend

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	domaincontact "github.com/folio-dev/folio/internal/domain/contact"
	portnotifier "github.com/folio-dev/folio/internal/port/notifier"
)

var _ portnotifier.ContactNotifier = (*Notifier)(nil)

// Sender is the slice of the Resend email service the notifier needs.
type Sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

var bodyTemplate = template.Must(template.New("contact").Parse(`<h2>New contact form submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{- if .Phone}}
<p><strong>Phone:</strong> {{.Phone}}</p>
{{- end}}
<p><strong>Message:</strong></p>
<p style="white-space: pre-wrap">{{.Message}}</p>
<p><small>Received {{.SubmissionDate.Format "2006-01-02 15:04 MST"}}</small></p>
`))

// Notifier emails the site owner about each contact submission.
type Notifier struct {
	sender Sender
	from   string
	to     []string
}

func New(apiKey, from string, to []string) *Notifier {
	return NewWithSender(resend.NewClient(apiKey).Emails, from, to)
}

func NewWithSender(sender Sender, from string, to []string) *Notifier {
	return &Notifier{sender: sender, from: from, to: to}
}

func (n *Notifier) NotifyContact(ctx context.Context, s domaincontact.Submission) error {
	html, err := render(s)
	if err != nil {
		return err
	}
	resp, err := n.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: "New contact form submission from " + s.Name,
		Html:    html,
		ReplyTo: s.Email,
	})
	if err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	if resp != nil && resp.Id == "" {
		return fmt.Errorf("send contact email: empty message id")
	}
	return nil
}

func render(s domaincontact.Submission) (string, error) {
	data := struct {
		domaincontact.Submission
		Phone string
	}{Submission: s}
	if s.Phone != nil {
		data.Phone = *s.Phone
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render contact email: %w", err)
	}
	return buf.String(), nil
}
