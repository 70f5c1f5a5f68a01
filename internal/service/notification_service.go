package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const ConfirmationSubject = "Appointment Confirmation"

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`Hello {{.PatientName}},

Thanks for booking an appointment. Here are the details:

Appointment ID: {{.AppointmentID}}
Doctor: Dr. {{.DoctorName}}
Specialty: {{.Specialty}}
Date: {{.Date}}
Time: {{.Time}}
{{if .Reason}}Reason for visit: {{.Reason}}
{{end}}Status: {{.Status}}

Please arrive 10 minutes early and bring any relevant medical documents.
If you need to modify or cancel, reply to this email or visit your dashboard.

Sent by {{.ClinicName}}
{{.AppURL}}
`))

// NotificationDispatcher delivers booking confirmations outside the request path
type NotificationDispatcher interface {
	SendAppointmentConfirmation(ctx context.Context, appointmentID uuid.UUID)
}

type NotificationOptions struct {
	BufferSize  int
	FromAddress string
	ClinicName  string
	AppURL      string
}

// NotificationService renders confirmations and passes them to a MessageSender
// from a single background worker. A full buffer drops the message.
type NotificationService struct {
	appointmentRepo repository.AppointmentRepository
	sender          MessageSender
	metrics         *metrics.Collector
	log             *logrus.Logger
	opts            NotificationOptions

	jobs   chan uuid.UUID
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

func NewNotificationService(
	appointmentRepo repository.AppointmentRepository,
	sender MessageSender,
	collector *metrics.Collector,
	log *logrus.Logger,
	opts NotificationOptions,
) *NotificationService {
	if opts.BufferSize < 1 {
		opts.BufferSize = 1
	}
	s := &NotificationService{
		appointmentRepo: appointmentRepo,
		sender:          sender,
		metrics:         collector,
		log:             log,
		opts:            opts,
		jobs:            make(chan uuid.UUID, opts.BufferSize),
		done:            make(chan struct{}),
	}
	go s.worker()
	return s
}

// SendAppointmentConfirmation enqueues the confirmation and returns immediately
func (s *NotificationService) SendAppointmentConfirmation(ctx context.Context, appointmentID uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.log.Warnf("Notification service stopped, dropping confirmation for appointment %s", appointmentID)
		return
	}

	select {
	case s.jobs <- appointmentID:
	default:
		s.metrics.ObserveNotificationDropped()
		s.log.Warnf("Notification buffer full, dropping confirmation for appointment %s", appointmentID)
	}
}

// Shutdown stops accepting work and waits for queued messages to drain
func (s *NotificationService) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("Notification service shutdown timed out; some confirmations may be lost")
	}
}

func (s *NotificationService) worker() {
	defer close(s.done)
	for id := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.deliver(ctx, id); err != nil {
			s.metrics.ObserveNotification("failed")
			s.log.Errorf("Failed to send confirmation for appointment %s: %+v", id, err)
		} else {
			s.metrics.ObserveNotification("sent")
		}
		cancel()
	}
}

func (s *NotificationService) deliver(ctx context.Context, appointmentID uuid.UUID) error {
	appointment, err := s.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}
	if appointment == nil {
		return fmt.Errorf("appointment %s not found", appointmentID)
	}
	if appointment.Patient == nil || appointment.Patient.Email == "" {
		return fmt.Errorf("appointment %s has no patient email", appointmentID)
	}

	msg, err := s.RenderConfirmation(appointment)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, msg)
}

// RenderConfirmation builds the confirmation message for a loaded appointment
func (s *NotificationService) RenderConfirmation(appointment *entity.Appointment) (Message, error) {
	data := struct {
		PatientName   string
		AppointmentID string
		DoctorName    string
		Specialty     string
		Date          string
		Time          string
		Reason        string
		Status        string
		ClinicName    string
		AppURL        string
	}{
		AppointmentID: appointment.ID.String(),
		Specialty:     appointment.Specialty,
		Date:          appointment.AppointmentDate.Format("Jan 02, 2006"),
		Time:          upperFirst(string(appointment.AppointmentTime)),
		Reason:        appointment.ReasonForVisit,
		Status:        upperFirst(string(appointment.Status)),
		ClinicName:    s.opts.ClinicName,
		AppURL:        s.opts.AppURL,
	}
	if appointment.Patient != nil {
		data.PatientName = appointment.Patient.FullName
	}
	if appointment.Doctor != nil {
		data.DoctorName = appointment.Doctor.FullName
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render confirmation: %w", err)
	}

	msg := Message{
		From:    s.opts.FromAddress,
		Subject: ConfirmationSubject,
		Body:    body.String(),
	}
	if appointment.Patient != nil {
		msg.To = appointment.Patient.Email
	}
	return msg, nil
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
