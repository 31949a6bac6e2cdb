package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/jwalitptl/scheduler-api/internal/config"
	"github.com/jwalitptl/scheduler-api/pkg/logger"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewSMTPService(cfg config.SMTPConfig, logger *logger.Logger) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *smtpService) SendBookingConfirmation(ctx context.Context, to string, details BookingDetails) error {
	subject := "Appointment confirmed"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment with %s is booked for %s until %s.\n",
		details.PatientName,
		details.DentistName,
		details.StartTime.Format("Mon, 02 Jan 2006 15:04"),
		details.EndTime.Format("15:04"),
	)
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) SendCancellation(ctx context.Context, to string, details BookingDetails) error {
	subject := "Appointment cancelled"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment with %s on %s was cancelled.\n",
		details.PatientName,
		details.DentistName,
		details.StartTime.Format("Mon, 02 Jan 2006 15:04"),
	)
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	return s.send(ctx, to, subject, content)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}
