package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"mime"
	"net"
	"net/smtp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultSMTPPort    = 587
	implicitTLSPort    = 465
	smtpDialTimeout    = 10 * time.Second
	defaultFromAddress = "AgroSoft <no-reply@agrosoft.local>"
)

var ErrNoRecipients = errors.New("mail has no recipients")

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, message Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// New returns an SMTP mailer when a host is configured and a logging mailer
// otherwise, so development setups can follow reset links from the console.
func New(config SMTPConfig) Mailer {
	if strings.TrimSpace(config.Host) == "" {
		return &LogMailer{From: fromOrDefault(config.From)}
	}
	if config.Port <= 0 {
		config.Port = defaultSMTPPort
	}
	config.From = fromOrDefault(config.From)
	return &SMTPMailer{config: config}
}

type SMTPMailer struct {
	config SMTPConfig
}

func (mailer *SMTPMailer) Send(ctx context.Context, message Message) error {
	if len(message.To) == 0 {
		return ErrNoRecipients
	}

	address := net.JoinHostPort(mailer.config.Host, strconv.Itoa(mailer.config.Port))
	dialer := &net.Dialer{Timeout: smtpDialTimeout}

	var (
		conn net.Conn
		err  error
	)
	tlsConfig := &tls.Config{ServerName: mailer.config.Host, MinVersion: tls.VersionTLS12}
	if mailer.config.Port == implicitTLSPort {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", address)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", address)
	}
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", address, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, mailer.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open smtp session: %w", err)
	}
	defer client.Close()

	if mailer.config.Port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}

	if mailer.config.User != "" {
		auth := smtp.PlainAuth("", mailer.config.User, mailer.config.Password, mailer.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(envelopeAddress(mailer.config.From)); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, recipient := range message.To {
		if err := client.Rcpt(envelopeAddress(recipient)); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", recipient, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write(BuildMessage(mailer.config.From, message, time.Now())); err != nil {
		_ = writer.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp finish body: %w", err)
	}
	return client.Quit()
}

// LogMailer prints messages instead of delivering them.
type LogMailer struct {
	From string
}

func (mailer *LogMailer) Send(_ context.Context, message Message) error {
	if len(message.To) == 0 {
		return ErrNoRecipients
	}
	log.Printf("mail (not sent, SMTP_HOST unset) from=%q to=%q subject=%q\n%s", mailer.From, strings.Join(message.To, ", "), message.Subject, message.Body)
	return nil
}

// Recorder keeps sent messages in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (recorder *Recorder) Send(_ context.Context, message Message) error {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if recorder.Err != nil {
		return recorder.Err
	}
	recorder.messages = append(recorder.messages, message)
	return nil
}

func (recorder *Recorder) Messages() []Message {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]Message(nil), recorder.messages...)
}

// BuildMessage renders RFC 5322 headers and a UTF-8 plain-text body.
func BuildMessage(from string, message Message, now time.Time) []byte {
	headers := map[string]string{
		"From":                      from,
		"To":                        strings.Join(message.To, ", "),
		"Subject":                   mime.QEncoding.Encode("utf-8", message.Subject),
		"Date":                      now.Format(time.RFC1123Z),
		"MIME-Version":              "1.0",
		"Content-Type":              "text/plain; charset=UTF-8",
		"Content-Transfer-Encoding": "8bit",
	}

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for _, key := range keys {
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(headers[key])
		builder.WriteString("\r\n")
	}
	builder.WriteString("\r\n")
	builder.WriteString(strings.ReplaceAll(strings.ReplaceAll(message.Body, "\r\n", "\n"), "\n", "\r\n"))
	builder.WriteString("\r\n")
	return []byte(builder.String())
}

func envelopeAddress(raw string) string {
	value := strings.TrimSpace(raw)
	if start := strings.LastIndex(value, "<"); start >= 0 {
		if end := strings.LastIndex(value, ">"); end > start {
			return value[start+1 : end]
		}
	}
	return value
}

func fromOrDefault(from string) string {
	if strings.TrimSpace(from) == "" {
		return defaultFromAddress
	}
	return strings.TrimSpace(from)
}
