package email

import (
	"context"
	"time"
)

// BookingDetails carries what a notification email needs to render.
type BookingDetails struct {
	PatientName string
	DentistName string
	StartTime   time.Time
	EndTime     time.Time
}

type Service interface {
	SendBookingConfirmation(ctx context.Context, to string, details BookingDetails) error
	SendCancellation(ctx context.Context, to string, details BookingDetails) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}
