package email

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host   string
	port   string
	from   string
	send   SendFunc
	tracer trace.Tracer
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host:   host,
		port:   port,
		from:   from,
		send:   smtp.SendMail,
		tracer: otel.Tracer("email"),
	}
}

// WithSendFunc replaces the SMTP transport, for tests.
func (s *Service) WithSendFunc(fn SendFunc) *Service {
	s.send = fn
	return s
}

// SendPaymentReceipt sends the confirmation mail of a successful payment
func (s *Service) SendPaymentReceipt(ctx context.Context, to string, r Receipt) error {
	_, span := s.tracer.Start(ctx, "email.SendPaymentReceipt", trace.WithAttributes(
		attribute.String("payment.transaction_id", r.TransactionID),
	))
	defer span.End()

	subject := fmt.Sprintf("Confirmación de pago AgroConnect (%s)", r.TransactionID)
	if err := s.deliver(to, subject, BuildReceiptBody(r)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("send receipt to %s: %w", to, err)
	}
	return nil
}

// deliver sends an HTML mail. The subject is RFC 2047 encoded since it
// carries non-ASCII text.
func (s *Service) deliver(to, subject, body string) error {
	subject = mime.QEncoding.Encode("UTF-8", subject)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.send(addr, nil, s.from, []string{to}, []byte(msg))
}
