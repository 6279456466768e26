package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/gramoorja/landedcost/internal/config"
)

// ErrNotConfigured is returned when no mail provider is set up.
var ErrNotConfigured = errors.New("email not configured")

// ErrInvalidRecipient is returned for anything but a single bare address.
var ErrInvalidRecipient = errors.New("invalid recipient")

const (
	reportSubject = "Electricity Cost to Consumer"
	reportBody    = "Please find attached the landed cost of electricity report."
)

// Attachment is a file sent along with the message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service struct {
	cfg config.EmailConfig
}

func NewService(cfg config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// Enabled reports whether SendReport can deliver anything.
func (s *Service) Enabled() bool { return s.cfg.Enabled() }

// SendReport mails the rendered report to a single recipient.
func (s *Service) SendReport(ctx context.Context, to string, att Attachment) error {
	if !s.cfg.Enabled() {
		return ErrNotConfigured
	}
	to, err := ParseRecipient(to)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	switch s.cfg.Provider {
	case "smtp", "gmail":
		return s.sendSMTP(to, reportSubject, reportBody, att)
	case "sendgrid":
		return s.sendSendgrid(to, reportSubject, reportBody, att)
	default:
		return fmt.Errorf("unknown provider: %s", s.cfg.Provider)
	}
}

// ParseRecipient accepts exactly one bare address ("name@example.org").
// Display names, lists and header line breaks are rejected.
func ParseRecipient(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidRecipient, raw, err)
	}
	if addr.Name != "" || addr.Address != raw {
		return "", fmt.Errorf("%w %q: expected a bare address", ErrInvalidRecipient, raw)
	}
	return addr.Address, nil
}

// buildMessage renders a multipart/mixed message with one text part and one
// base64 attachment.
func buildMessage(from, to, subject, body string, att Attachment) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.SetBoundary("landedcost-" + uuid.New().String()); err != nil {
		return nil, err
	}

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=\"UTF-8\""},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(body + "\r\n")); err != nil {
		return nil, err
	}

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {fmt.Sprintf("%s; name=%q", att.ContentType, att.Filename)},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(att.Data)
	for len(encoded) > 76 {
		if _, err := part.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return nil, err
		}
		encoded = encoded[76:]
	}
	if _, err := part.Write([]byte(encoded + "\r\n")); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) fromHeader() string {
	if s.cfg.FromName == "" {
		return s.cfg.FromAddress
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.cfg.FromName), s.cfg.FromAddress)
}

func (s *Service) sendSMTP(to, subject, body string, att Attachment) error {
	cfg := s.cfg
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	msg, err := buildMessage(s.fromHeader(), to, subject, body, att)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	var c *smtp.Client
	switch cfg.Encryption {
	case "ssl":
		// SSL/TLS (Implicit)
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
		if err != nil {
			return err
		}
		c, err = smtp.NewClient(conn, cfg.Host)
		if err != nil {
			conn.Close()
			return err
		}
	case "tls":
		// STARTTLS (Explicit)
		c, err = smtp.Dial(addr)
		if err != nil {
			return err
		}
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				c.Close()
				return err
			}
		}
	default:
		// None / Plain
		var auth smtp.Auth
		if cfg.Username != "" {
			auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		}
		return smtp.SendMail(addr, auth, cfg.FromAddress, []string{to}, msg)
	}
	defer c.Quit()

	if cfg.Username != "" && cfg.Password != "" {
		if err = c.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return err
		}
	}
	if err = c.Mail(cfg.FromAddress); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func (s *Service) sendSendgrid(to, subject, body string, att Attachment) error {
	from := sgmail.NewEmail(s.cfg.FromName, s.cfg.FromAddress)
	toEmail := sgmail.NewEmail("", to)
	message := sgmail.NewSingleEmail(from, subject, toEmail, body, "<p>"+body+"</p>")

	a := sgmail.NewAttachment()
	a.SetContent(base64.StdEncoding.EncodeToString(att.Data))
	a.SetType(att.ContentType)
	a.SetFilename(att.Filename)
	a.SetDisposition("attachment")
	message.AddAttachment(a)

	client := sendgrid.NewSendClient(s.cfg.APIKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}
