package report

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"flight-price-service/internal/config"
	"flight-price-service/internal/domain"
	"flight-price-service/internal/platform/obs"
)

const (
	plainFallback = "Your e-mail client does not support HTML."
	pdfFilename   = "flight_report.pdf"

	// DefaultSMTPTimeout bounds one whole SMTP exchange, dial included.
	DefaultSMTPTimeout = 30 * time.Second
)

// Mailer delivers sweep reports and failure notices over SMTP.
// It implements ports.ReportSender.
type Mailer struct {
	cfg     config.EmailConfig
	auth    smtp.Auth
	logger  *slog.Logger
	timeout time.Duration

	// Overridable for tests.
	send func(ctx context.Context, addr, from string, to []string, msg []byte) error
	pdf  func(ctx context.Context, html string) ([]byte, error)
	now  func() time.Time
}

func NewMailer(cfg config.EmailConfig, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Mailer{
		cfg:     cfg,
		auth:    smtp.PlainAuth("", cfg.Sender, cfg.Password, cfg.SMTPHost),
		logger:  logger,
		timeout: DefaultSMTPTimeout,
		now:     time.Now,
	}
	m.send = m.sendSMTP
	if cfg.PDFEnabled {
		m.pdf = func(ctx context.Context, html string) ([]byte, error) {
			return RenderPDF(ctx, html, DefaultPDFTimeout)
		}
	}
	return m
}

// ready reports whether mail should be sent at all. Disabled or incomplete
// configuration is logged and skipped, never returned as an error.
func (m *Mailer) ready() bool {
	if !m.cfg.Enabled {
		m.logger.Info("email sending disabled via SEND_EMAIL")
		return false
	}
	if !m.cfg.Complete() {
		m.logger.Error("email credentials incomplete, message not sent")
		return false
	}
	return true
}

// SendReport renders the sweep as HTML, attaches a PDF when one can be
// produced, and mails it to the configured recipient.
func (m *Mailer) SendReport(ctx context.Context, result *domain.SweepResult) (err error) {
	defer obs.Time(ctx, "report.SendReport")(&err)

	if !m.ready() {
		return nil
	}

	now := m.now()
	html, err := RenderHTML(result, now)
	if err != nil {
		return err
	}

	var pdf []byte
	if m.pdf != nil {
		pdf, err = m.pdf(ctx, html)
		if err != nil {
			m.logger.Warn("pdf generation failed, sending html only", "err", err)
			pdf = nil
		}
	}

	msg, err := m.buildMessage(Subject(now), html, pdf, now)
	if err != nil {
		return err
	}
	return m.deliver(ctx, msg)
}

// SendFailure mails a plain notice, used when a sweep cannot start.
func (m *Mailer) SendFailure(ctx context.Context, subject, message string) (err error) {
	defer obs.Time(ctx, "report.SendFailure")(&err)

	if !m.ready() {
		return nil
	}

	html := "<html><body><h2>" + template.HTMLEscapeString(subject) + "</h2><pre>" + template.HTMLEscapeString(message) + "</pre></body></html>"
	msg, err := m.buildMessage(subject, html, nil, m.now())
	if err != nil {
		return err
	}
	return m.deliver(ctx, msg)
}

func (m *Mailer) deliver(ctx context.Context, msg []byte) error {
	addr := net.JoinHostPort(m.cfg.SMTPHost, strconv.Itoa(m.cfg.SMTPPort))
	if err := m.send(ctx, addr, m.cfg.Sender, []string{m.cfg.Recipient}, msg); err != nil {
		return fmt.Errorf("send email via %s: %w", addr, err)
	}
	m.logger.Info("email sent", "to", m.cfg.Recipient)
	return nil
}

// sendSMTP performs the same exchange as smtp.SendMail, but on a connection
// whose deadline is the earlier of ctx's deadline and m.timeout, and which is
// cut as soon as ctx is cancelled. A server that accepts and then stalls
// fails the send instead of hanging it.
func (m *Mailer) sendSMTP(ctx context.Context, addr, from string, to []string, msg []byte) error {
	dialer := net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if ok, _ := c.Extension("AUTH"); ok && m.auth != nil {
		if err := c.Auth(m.auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMessage assembles multipart/mixed: an alternative part with the plain
// fallback and the HTML body, then the optional PDF attachment.
func (m *Mailer) buildMessage(subject, html string, pdf []byte, date time.Time) ([]byte, error) {
	if subject == "" {
		return nil, errors.New("build email: subject is empty")
	}

	var body bytes.Buffer
	mixed := multipart.NewWriter(&body)

	var altBody bytes.Buffer
	alt := multipart.NewWriter(&altBody)
	if err := writeQuotedPart(alt, "text/plain; charset=utf-8", plainFallback); err != nil {
		return nil, err
	}
	if err := writeQuotedPart(alt, "text/html; charset=utf-8", html); err != nil {
		return nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, fmt.Errorf("build email: close alternative part: %w", err)
	}

	altPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"multipart/alternative; boundary=" + alt.Boundary()},
	})
	if err != nil {
		return nil, fmt.Errorf("build email: create alternative part: %w", err)
	}
	if _, err := altPart.Write(altBody.Bytes()); err != nil {
		return nil, fmt.Errorf("build email: write alternative part: %w", err)
	}

	if len(pdf) > 0 {
		att, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/pdf"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": pdfFilename})},
		})
		if err != nil {
			return nil, fmt.Errorf("build email: create attachment: %w", err)
		}
		if err := writeBase64Lines(att, pdf); err != nil {
			return nil, fmt.Errorf("build email: write attachment: %w", err)
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, fmt.Errorf("build email: close message: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", m.cfg.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", date.Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%s\r\n", mixed.Boundary())
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}

func writeQuotedPart(w *multipart.Writer, contentType, content string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return fmt.Errorf("build email: create %s part: %w", contentType, err)
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(content)); err != nil {
		return fmt.Errorf("build email: write %s part: %w", contentType, err)
	}
	return qp.Close()
}

// writeBase64Lines writes data as base64 wrapped at 76 columns.
func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := w.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := w.Write([]byte(encoded + "\r\n"))
	return err
}
