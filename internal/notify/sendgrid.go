package notify

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridEndpoint = "/v3/mail/send"

// SendGridMailer sends email through the SendGrid v3 API.  The sender address
// must be a verified SendGrid sender.
type SendGridMailer struct {
	apiKey string
	from   string
	host   string
}

// NewSendGridMailer constructs a mailer.  An empty host selects the public
// SendGrid API.
func NewSendGridMailer(apiKey, from, host string) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, from: from, host: host}
}

// SendEmail implements EmailSender.
func (m *SendGridMailer) SendEmail(ctx context.Context, to, subject, html, text string) error {
	if to == "" {
		return eris.New("alamat email tujuan kosong")
	}
	message := mail.NewSingleEmail(mail.NewEmail(AppName, m.from), subject, mail.NewEmail("", to), text, html)

	request := sendgrid.GetRequest(m.apiKey, sendGridEndpoint, m.host)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return eris.Wrap(err, "sendgrid: send")
	}
	if resp.StatusCode >= 300 {
		return eris.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
