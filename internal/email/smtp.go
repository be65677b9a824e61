// Package email envía los correos transaccionales del sistema. Por ahora
// el único es el link de recuperación de contraseña.
package email

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/comandero/internal/observability/logger"
)

// SMTPSender manda correos por SMTP con go-mail.
type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
	// InsecureSkipVerify desactiva la verificación TLS. Sólo dev.
	InsecureSkipVerify bool
}

// NewSMTPSender crea el sender con los parámetros dados.
func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, User: user, Pass: pass}
}

// SendPasswordReset manda el link de recuperación. Implementa
// services.ResetMailer.
func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, link string) error {
	log := logger.From(ctx).With(
		logger.Component("email"),
		logger.String("to", to),
	)

	textBody := fmt.Sprintf(
		"Pediste restablecer tu contraseña.\n\nEntrá a este link para elegir una nueva:\n%s\n\nSi no fuiste vos, ignorá este correo. El link vence en 30 minutos.\n",
		link,
	)
	htmlBody := fmt.Sprintf(
		`<p>Pediste restablecer tu contraseña.</p><p><a href="%s">Elegir una nueva contraseña</a></p><p>Si no fuiste vos, ignorá este correo. El link vence en 30 minutos.</p>`,
		link,
	)

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Restablecer contraseña")
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}

	if err := d.DialAndSend(m); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Info("reset email sent")
	return nil
}
