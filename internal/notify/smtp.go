package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// implicitTLSPort is the submission port that expects TLS from the first byte.
const implicitTLSPort = 465

// SMTPConfig holds the outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// InsecureSkipVerify disables certificate checks. Only for local mail catchers.
	InsecureSkipVerify bool
}

// SMTPNotifier sends mail through an SMTP server. Port 465 uses implicit TLS; any other
// port upgrades with STARTTLS when the server offers it.
type SMTPNotifier struct {
	cfg  SMTPConfig
	now  func() time.Time
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewSMTPNotifier returns an SMTPNotifier for cfg.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	n := &SMTPNotifier{cfg: cfg, now: time.Now}
	d := &net.Dialer{}
	if cfg.Port == implicitTLSPort {
		td := &tls.Dialer{NetDialer: d, Config: n.tlsConfig()}
		n.dial = td.DialContext
	} else {
		n.dial = d.DialContext
	}
	return n
}

func (n *SMTPNotifier) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: n.cfg.Host, InsecureSkipVerify: n.cfg.InsecureSkipVerify, MinVersion: tls.VersionTLS12}
}

// Send delivers msg. The whole SMTP exchange is bounded by ctx's deadline.
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	body, err := n.compose(msg)
	if err != nil {
		return fmt.Errorf("notify: compose: %w", err)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	conn, err := n.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("notify: dial %s: %w", addr, err)
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	// Unblock in-flight reads and writes if ctx is canceled before the deadline.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	if err := n.exchange(conn, msg.To, body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("notify: %w", errors.Join(ctxErr, err))
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("notify: %w", errors.Join(context.DeadlineExceeded, err))
		}
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) exchange(conn net.Conn, to string, body []byte) error {
	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if n.cfg.Port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(n.tlsConfig()); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if n.cfg.Username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("auth: %w", err)
			}
		}
	}
	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	return client.Quit()
}

// compose renders RFC 5322 headers and a multipart/alternative body (text, then HTML).
func (n *SMTPNotifier) compose(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	domain := "localhost"
	if i := strings.LastIndexByte(n.cfg.From, '@'); i >= 0 {
		domain = n.cfg.From[i+1:]
	}
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	header("From", n.cfg.From)
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", n.now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domain))
	header("MIME-Version", "1.0")

	if msg.HTML == "" {
		header("Content-Type", `text/plain; charset="utf-8"`)
		header("Content-Transfer-Encoding", "8bit")
		buf.WriteString("\r\n")
		buf.WriteString(crlf(msg.Text))
		return buf.Bytes(), nil
	}

	var parts bytes.Buffer
	mw := multipart.NewWriter(&parts)
	header("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	buf.WriteString("\r\n")
	for _, p := range []struct{ ctype, content string }{
		{`text/plain; charset="utf-8"`, msg.Text},
		{`text/html; charset="utf-8"`, msg.HTML},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.ctype},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(crlf(p.content))); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	buf.Write(parts.Bytes())
	return buf.Bytes(), nil
}

func crlf(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
