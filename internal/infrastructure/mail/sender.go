package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/almacen-api/internal/application/orders"
	"github.com/tu-usuario/almacen-api/internal/application/requests"
	"github.com/tu-usuario/almacen-api/pkg/config"
	"github.com/tu-usuario/almacen-api/pkg/logger"
	gomail "gopkg.in/gomail.v2"
)

var (
	_ orders.Mailer   = (*Sender)(nil)
	_ requests.Mailer = (*Sender)(nil)
)

// Sender envía correo por SMTP con reintentos acotados. El backoff crece
// linealmente con el número de intento (1s, 2s, 3s).
type Sender struct {
	dialer  *gomail.Dialer
	from    string
	retries int
	log     *logger.Logger
}

// NewSender construye el remitente SMTP desde la configuración.
func NewSender(cfg config.SMTPConfig, log *logger.Logger) *Sender {
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &Sender{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:    from,
		retries: retries,
		log:     log,
	}
}

// Send envía el mensaje respetando el deadline del contexto. Cada intento
// corre en su propia goroutine porque gomail no acepta contexto.
func (s *Sender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		done := make(chan error, 1)
		go func() { done <- s.dialer.DialAndSend(msg) }()

		select {
		case err := <-done:
			if err == nil {
				return nil
			}
			lastErr = err
			s.log.Warn().Err(err).
				Str("to", to).
				Int("intento", attempt).
				Msg("envío SMTP fallido")
		case <-ctx.Done():
			return fmt.Errorf("envío SMTP cancelado: %w", ctx.Err())
		}

		if attempt < s.retries {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return fmt.Errorf("envío SMTP cancelado: %w", ctx.Err())
			}
		}
	}
	return fmt.Errorf("envío SMTP agotó %d intentos: %w", s.retries, lastErr)
}
