package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"dokter-remaja/internal/care"
	"dokter-remaja/pkg"
)

type fakeEmail struct {
	calls int
	to    string
	err   error
}

func (f *fakeEmail) SendEmail(ctx context.Context, to, subject, html, text string) error {
	f.calls++
	f.to = to
	return f.err
}

type fakeSMS struct {
	calls int
	to    string
	body  string
	err   error
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, body string) (string, error) {
	f.calls++
	f.to = to
	f.body = body
	if f.err != nil {
		return "", f.err
	}
	return "SM123", nil
}

func testPlan() care.Plan {
	return care.NewEngine(nil).Suggest([]string{"Urtikaria"}, "13", "")
}

func TestNewReport(t *testing.T) {
	r := NewReport(pkg.Biography{}, "Kemungkinan Diagnosis:\n- Urtikaria", testPlan())
	if r.Subject != "Hasil AI Dokter Remaja — Siswa" {
		t.Fatalf("unexpected subject %q", r.Subject)
	}
	if !strings.HasPrefix(r.Text, "Halo Siswa,\n\n") || !strings.HasSuffix(r.Text, pkg.Disclaimer) {
		t.Fatalf("unexpected text body %q", r.Text)
	}
	if !strings.Contains(r.Text, "-----\n"+care.Title+"\n- ") {
		t.Fatalf("expected care plan in text body: %q", r.Text)
	}
	if !strings.Contains(r.HTML, "<h3") || !strings.Contains(r.HTML, "Kemungkinan Diagnosis:") {
		t.Fatalf("expected plan and sections in html body: %s", r.HTML)
	}
	if !strings.Contains(r.SMS, "'"+r.Subject+"'") {
		t.Fatalf("sms should reference the subject: %q", r.SMS)
	}
}

func TestNewReportEscapesName(t *testing.T) {
	r := NewReport(pkg.Biography{Name: "<Budi>"}, "x", testPlan())
	if strings.Contains(r.HTML, "<Budi>") || !strings.Contains(r.HTML, "&lt;Budi&gt;") {
		t.Fatalf("expected escaped name in html: %s", r.HTML)
	}
}

func TestDeliverWithoutContactFields(t *testing.T) {
	logger, _ := test.NewNullLogger()
	email, sms := &fakeEmail{}, &fakeSMS{}
	d := NewDispatcher(email, sms, logger)
	notices := d.Deliver(context.Background(), pkg.Biography{}, Report{})
	if email.calls != 0 || sms.calls != 0 {
		t.Fatalf("expected no delivery attempts, got email=%d sms=%d", email.calls, sms.calls)
	}
	if len(notices) != 2 {
		t.Fatalf("expected two notices, got %v", notices)
	}
	for _, n := range notices {
		if n.Level != pkg.NoticeInfo || !strings.Contains(n.Text, "tidak") {
			t.Fatalf("expected informational not-sent notice, got %+v", n)
		}
	}
}

func TestDeliverSkipsUnconfiguredChannels(t *testing.T) {
	logger, _ := test.NewNullLogger()
	d := NewDispatcher(nil, nil, logger)
	notices := d.Deliver(context.Background(), pkg.Biography{Email: "a@b.co", Phone: "0812"}, Report{})
	if notices[0].Level != pkg.NoticeWarning || !strings.Contains(notices[0].Text, "SENDGRID_API_KEY") {
		t.Fatalf("unexpected email notice %+v", notices[0])
	}
	if notices[1].Level != pkg.NoticeInfo || !strings.Contains(notices[1].Text, "Twilio") {
		t.Fatalf("unexpected sms notice %+v", notices[1])
	}
}

func TestDeliverChannelsAreIndependent(t *testing.T) {
	logger, _ := test.NewNullLogger()
	email := &fakeEmail{err: errors.New("quota exceeded")}
	sms := &fakeSMS{}
	d := NewDispatcher(email, sms, logger)
	notices := d.Deliver(context.Background(), pkg.Biography{Email: "a@b.co", Phone: "0812 345"}, Report{SMS: "halo"})
	if notices[0].Level != pkg.NoticeWarning || !strings.Contains(notices[0].Text, "quota exceeded") {
		t.Fatalf("unexpected email notice %+v", notices[0])
	}
	if sms.calls != 1 || sms.to != "+62812345" || sms.body != "halo" {
		t.Fatalf("expected sms to normalized number, got %+v", sms)
	}
	if notices[1].Level != pkg.NoticeSuccess || !strings.Contains(notices[1].Text, "SM123") {
		t.Fatalf("unexpected sms notice %+v", notices[1])
	}
}

func TestSendGridMailer(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != sendGridEndpoint || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sg-key" {
			t.Errorf("unexpected authorization %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewSendGridMailer("sg-key", "klinik@sekolah.sch.id", srv.URL)
	if err := m.SendEmail(context.Background(), "siswa@sekolah.sch.id", "Hasil", "<p>hi</p>", "hi"); err != nil {
		t.Fatalf("send email: %v", err)
	}
	if got["subject"] != "Hasil" {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestSendGridMailerReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"errors":[{"message":"bad key"}]}`)
	}))
	defer srv.Close()

	m := NewSendGridMailer("bad", "klinik@sekolah.sch.id", srv.URL)
	err := m.SendEmail(context.Background(), "siswa@sekolah.sch.id", "Hasil", "<p>hi</p>", "hi")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status error, got %v", err)
	}
	if err := m.SendEmail(context.Background(), "", "s", "h", "t"); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}

type fakeCreator struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM42"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSender(t *testing.T) {
	creator := &fakeCreator{}
	s := &TwilioSender{api: creator, from: "+15550001"}
	sid, err := s.SendSMS(context.Background(), "+62812345", "halo")
	if err != nil {
		t.Fatalf("send sms: %v", err)
	}
	if sid != "SM42" {
		t.Fatalf("unexpected sid %q", sid)
	}
	if *creator.params.To != "+62812345" || *creator.params.From != "+15550001" || *creator.params.Body != "halo" {
		t.Fatalf("unexpected params %+v", creator.params)
	}

	creator.err = errors.New("invalid number")
	if _, err := s.SendSMS(context.Background(), "+62812345", "halo"); err == nil || !strings.Contains(err.Error(), "invalid number") {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}
