package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"dokter-remaja/internal/contact"
	"dokter-remaja/pkg"
)

// EmailSender delivers one email with both HTML and plain-text bodies.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html, text string) error
}

// SMSSender delivers one SMS and returns the provider message id.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// Dispatcher sends a Report through the configured channels.  A nil sender
// means the channel has no credentials; it is skipped and reported instead
// of attempted.  The two channels are independent.
type Dispatcher struct {
	Email EmailSender
	SMS   SMSSender
	Log   *logrus.Logger
}

// NewDispatcher constructs a Dispatcher.  Either sender may be nil.
func NewDispatcher(email EmailSender, sms SMSSender, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{Email: email, SMS: sms, Log: log}
}

// Deliver attempts both channels and returns one notice per channel.
// Delivery failures become warnings and never stop the other channel.
func (d *Dispatcher) Deliver(ctx context.Context, bio pkg.Biography, r Report) []pkg.Notice {
	return []pkg.Notice{
		d.deliverEmail(ctx, strings.TrimSpace(bio.Email), r),
		d.deliverSMS(ctx, contact.NormalizeMSISDN(bio.Phone), r),
	}
}

func (d *Dispatcher) deliverEmail(ctx context.Context, to string, r Report) pkg.Notice {
	switch {
	case to == "":
		return notice(pkg.NoticeInfo, pkg.ChannelEmail, "Email tidak diisi, jadi hasil lengkap tidak dikirim via email.")
	case d.Email == nil:
		return notice(pkg.NoticeWarning, pkg.ChannelEmail, "Email tidak terkirim: kredensial SendGrid belum disetel (SENDGRID_API_KEY/EMAIL_FROM).")
	}
	if err := d.Email.SendEmail(ctx, to, r.Subject, r.HTML, r.Text); err != nil {
		d.Log.WithError(err).WithField("channel", pkg.ChannelEmail).Warn("delivery failed")
		return notice(pkg.NoticeWarning, pkg.ChannelEmail, "Email tidak terkirim: "+err.Error())
	}
	d.Log.WithField("channel", pkg.ChannelEmail).Info("delivery succeeded")
	return notice(pkg.NoticeSuccess, pkg.ChannelEmail, "Email terkirim ke "+to)
}

func (d *Dispatcher) deliverSMS(ctx context.Context, to string, r Report) pkg.Notice {
	switch {
	case to == "":
		return notice(pkg.NoticeInfo, pkg.ChannelSMS, "Nomor HP tidak diisi, jadi tidak ada SMS notifikasi yang dikirim.")
	case d.SMS == nil:
		return notice(pkg.NoticeInfo, pkg.ChannelSMS, "Kredensial Twilio belum lengkap, SMS tidak dikirim.")
	}
	sid, err := d.SMS.SendSMS(ctx, to, r.SMS)
	if err != nil {
		d.Log.WithError(err).WithField("channel", pkg.ChannelSMS).Warn("delivery failed")
		return notice(pkg.NoticeWarning, pkg.ChannelSMS, "SMS tidak terkirim: "+err.Error())
	}
	d.Log.WithFields(logrus.Fields{"channel": pkg.ChannelSMS, "sid": sid}).Info("delivery succeeded")
	return notice(pkg.NoticeSuccess, pkg.ChannelSMS, fmt.Sprintf("SMS notifikasi terkirim ke %s. SID: %s", to, sid))
}

func notice(level pkg.NoticeLevel, channel, text string) pkg.Notice {
	return pkg.Notice{Level: level, Channel: channel, Text: text}
}
