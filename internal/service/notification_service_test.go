package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/infrastructure/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAppointmentRepo struct {
	repository.AppointmentRepository
	appointments map[uuid.UUID]*entity.Appointment
}

func (r *stubAppointmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	return r.appointments[id], nil
}

type recordingSender struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingSender) sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

func sampleAppointment() *entity.Appointment {
	return &entity.Appointment{
		ID:              uuid.New(),
		Specialty:       "Cardiology",
		ReasonForVisit:  "Chest pain",
		AppointmentDate: time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		AppointmentTime: entity.SlotMorning,
		Status:          entity.AppointmentStatusPending,
		Patient:         &entity.User{FullName: "Ada Obi", Email: "ada@example.com"},
		Doctor:          &entity.User{FullName: "Grace Hopper"},
	}
}

func newTestNotifier(repo repository.AppointmentRepository, sender MessageSender, collector *metrics.Collector, buffer int) *NotificationService {
	return NewNotificationService(repo, sender, collector, quietLogger(), NotificationOptions{
		BufferSize:  buffer,
		FromAddress: "no-reply@clinic.test",
		ClinicName:  "Campus Clinic",
		AppURL:      "https://clinic.test",
	})
}

func TestRenderConfirmation(t *testing.T) {
	appointment := sampleAppointment()
	svc := newTestNotifier(&stubAppointmentRepo{}, &recordingSender{}, nil, 1)
	defer svc.Shutdown()

	msg, err := svc.RenderConfirmation(appointment)
	require.NoError(t, err)

	assert.Equal(t, ConfirmationSubject, msg.Subject)
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "no-reply@clinic.test", msg.From)
	assert.Contains(t, msg.Body, "Hello Ada Obi,")
	assert.Contains(t, msg.Body, "Appointment ID: "+appointment.ID.String())
	assert.Contains(t, msg.Body, "Doctor: Dr. Grace Hopper")
	assert.Contains(t, msg.Body, "Specialty: Cardiology")
	assert.Contains(t, msg.Body, "Date: Mar 09, 2026")
	assert.Contains(t, msg.Body, "Time: Morning")
	assert.Contains(t, msg.Body, "Reason for visit: Chest pain")
	assert.Contains(t, msg.Body, "Status: Pending")
	assert.Contains(t, msg.Body, "Sent by Campus Clinic")
}

func TestRenderConfirmation_OmitsEmptyReason(t *testing.T) {
	appointment := sampleAppointment()
	appointment.ReasonForVisit = ""
	svc := newTestNotifier(&stubAppointmentRepo{}, &recordingSender{}, nil, 1)
	defer svc.Shutdown()

	msg, err := svc.RenderConfirmation(appointment)
	require.NoError(t, err)
	assert.NotContains(t, msg.Body, "Reason for visit")
}

func TestNotificationService_DeliversQueuedConfirmations(t *testing.T) {
	appointment := sampleAppointment()
	repo := &stubAppointmentRepo{appointments: map[uuid.UUID]*entity.Appointment{appointment.ID: appointment}}
	sender := &recordingSender{}
	collector := metrics.NewCollector("clinic")
	svc := newTestNotifier(repo, sender, collector, 4)

	svc.SendAppointmentConfirmation(context.Background(), appointment.ID)
	svc.SendAppointmentConfirmation(context.Background(), uuid.New())
	svc.Shutdown()

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].To)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.NotificationsSent.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.NotificationsSent.WithLabelValues("failed")))
}

func TestNotificationService_SenderFailureIsLogged(t *testing.T) {
	appointment := sampleAppointment()
	repo := &stubAppointmentRepo{appointments: map[uuid.UUID]*entity.Appointment{appointment.ID: appointment}}
	sender := &recordingSender{err: errors.New("smtp down")}
	svc := newTestNotifier(repo, sender, nil, 1)

	assert.NotPanics(t, func() {
		svc.SendAppointmentConfirmation(context.Background(), appointment.ID)
		svc.Shutdown()
	})
	assert.Empty(t, sender.sent())
}

func TestNotificationService_SendAfterShutdown(t *testing.T) {
	svc := newTestNotifier(&stubAppointmentRepo{}, &recordingSender{}, nil, 1)
	svc.Shutdown()

	assert.NotPanics(t, func() {
		svc.SendAppointmentConfirmation(context.Background(), uuid.New())
		svc.Shutdown()
	})
}

func TestRedisStreamSender_Send(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sender := NewRedisStreamSender(client, "notifications:email")
	err := sender.Send(context.Background(), Message{
		From:    "no-reply@clinic.test",
		To:      "ada@example.com",
		Subject: ConfirmationSubject,
		Body:    "hello",
	})
	require.NoError(t, err)

	entries, err := client.XRange(context.Background(), "notifications:email", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ada@example.com", entries[0].Values["to"])
	assert.Equal(t, ConfirmationSubject, entries[0].Values["subject"])
}
