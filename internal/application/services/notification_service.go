package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/notifications"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// DefaultDispatchTimeout bounds the work done for one appointment event
const DefaultDispatchTimeout = 10 * time.Second

// DispatchResult is the outcome of delivering an event on one channel
type DispatchResult struct {
	Channel entities.NotificationChannel
	Err     error
}

// NotificationService delivers appointment events by email, as in-app
// notifications and over the event bus, and serves the in-app inbox
type NotificationService struct {
	repo      repositories.NotificationRepository
	agentRepo repositories.AgentRepository
	userRepo  repositories.UserRepository
	email     providers.EmailSender
	renderer  *notifications.Renderer
	bus       providers.EventBus
	metrics   *observability.Metrics
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewNotificationService creates a new notification service. email and bus
// may be nil, in which case that channel is skipped.
func NewNotificationService(
	repo repositories.NotificationRepository,
	agentRepo repositories.AgentRepository,
	userRepo repositories.UserRepository,
	email providers.EmailSender,
	renderer *notifications.Renderer,
	bus providers.EventBus,
	metrics *observability.Metrics,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		agentRepo: agentRepo,
		userRepo:  userRepo,
		email:     email,
		renderer:  renderer,
		bus:       bus,
		metrics:   metrics,
		timeout:   DefaultDispatchTimeout,
	}
}

// Notify dispatches event in the background. The caller's cancellation does
// not stop delivery; the dispatch timeout does.
func (s *NotificationService) Notify(ctx context.Context, event *entities.AppointmentEvent, appointment *entities.Appointment) {
	dispatchCtx := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				observability.LoggerFromContext(dispatchCtx).Error().
					Interface("panic", r).
					Str("event_id", event.ID).
					Msg("Notification dispatch panicked")
			}
		}()
		s.Dispatch(dispatchCtx, event, appointment)
	}()
}

// Dispatch delivers event on every configured channel and logs failures.
// It never returns an error: the triggering transition has already committed.
func (s *NotificationService) Dispatch(ctx context.Context, event *entities.AppointmentEvent, appointment *entities.Appointment) []DispatchResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger := observability.LoggerFromContext(ctx).With().
		Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Str("appointment_id", event.AppointmentID).
		Logger()

	var agent *entities.Agent
	var user *entities.User
	if s.agentRepo != nil && s.userRepo != nil {
		var err error
		agent, err = s.agentRepo.GetByID(ctx, event.AgentID)
		if err == nil {
			user, err = s.userRepo.GetByID(ctx, agent.UserID)
		}
		if err != nil {
			logger.Warn().Err(err).Str("agent_id", event.AgentID).Msg("Failed to resolve notification recipient")
		}
	}

	var results []DispatchResult
	record := func(channel entities.NotificationChannel, err error) {
		results = append(results, DispatchResult{Channel: channel, Err: err})
		s.metrics.RecordDispatch(ctx, string(channel), err)
	}

	if s.bus != nil {
		record(entities.ChannelBroadcast, providers.PublishAppointmentEvent(ctx, s.bus, event))
	}
	if user != nil {
		record(entities.ChannelInApp, s.storeInApp(ctx, user.ID, event, appointment))
	}
	if s.email != nil && s.renderer != nil {
		record(entities.ChannelEmail, s.sendEmail(ctx, event, appointment, agent, user))
	}

	for _, result := range results {
		if result.Err != nil {
			logger.Error().Err(result.Err).Str("channel", string(result.Channel)).Msg("Notification delivery failed")
		}
	}
	logger.Debug().Int("channels", len(results)).Msg("Notification dispatched")
	return results
}

func (s *NotificationService) storeInApp(ctx context.Context, userID string, event *entities.AppointmentEvent, appointment *entities.Appointment) error {
	title, message := describeEvent(event, appointment)
	appointmentID := event.AppointmentID

	notification := &entities.Notification{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          event.EventType.NotificationType(),
		Title:         title,
		Message:       message,
		AppointmentID: &appointmentID,
		CreatedAt:     time.Now().UTC(),
	}
	err := s.repo.Create(ctx, notification)

	if event.EventType == entities.AppointmentEventConfirmed && appointment != nil && appointment.Payment != nil {
		receipt := &entities.Notification{
			ID:            uuid.New().String(),
			UserID:        userID,
			Type:          entities.NotificationPaymentReceived,
			Title:         "Payment received",
			Message:       fmt.Sprintf("Payment %s of %.2f recorded for %s.", appointment.Payment.TransactionRef, appointment.Payment.Amount, appointment.PatientName),
			AppointmentID: &appointmentID,
			CreatedAt:     time.Now().UTC(),
		}
		err = errors.Join(err, s.repo.Create(ctx, receipt))
	}
	return err
}

func (s *NotificationService) sendEmail(ctx context.Context, event *entities.AppointmentEvent, appointment *entities.Appointment, agent *entities.Agent, user *entities.User) error {
	if appointment == nil {
		return errors.New("no appointment to describe")
	}

	recipients := make([]string, 0, 2)
	if user != nil && user.Email != "" {
		recipients = append(recipients, user.Email)
	}
	if appointment.PatientEmail != "" && (user == nil || appointment.PatientEmail != user.Email) {
		recipients = append(recipients, appointment.PatientEmail)
	}

	data := notifications.TemplateData{
		AppointmentID: appointment.ID,
		PatientName:   appointment.PatientName,
		Date:          appointment.Date,
		TimeSlot:      appointment.TimeSlot,
		Amount:        appointment.Amount,
		Status:        string(appointment.Status),
	}
	if agent != nil {
		data.CompanyName = agent.CompanyName
	}
	if appointment.Doctor != nil {
		data.DoctorName = appointment.Doctor.Name
		data.Hospital = appointment.Doctor.Hospital
	}
	if appointment.CancellationReason != nil {
		data.Reason = *appointment.CancellationReason
	}
	if appointment.Payment != nil {
		data.TransactionRef = appointment.Payment.TransactionRef
	}

	msg, err := s.renderer.Render(event.EventType, data, recipients...)
	if err != nil {
		return err
	}
	return s.email.Send(ctx, msg)
}

func describeEvent(event *entities.AppointmentEvent, appointment *entities.Appointment) (string, string) {
	patient, doctor := "the patient", "the doctor"
	if appointment != nil {
		patient = appointment.PatientName
		if appointment.Doctor != nil {
			doctor = appointment.Doctor.Name
		}
	}
	when := fmt.Sprintf("%s at %s", event.Date, event.TimeSlot)

	switch event.EventType {
	case entities.AppointmentEventCreated:
		return "Appointment booked", fmt.Sprintf("Appointment for %s with %s on %s is pending confirmation.", patient, doctor, when)
	case entities.AppointmentEventConfirmed:
		return "Appointment confirmed", fmt.Sprintf("Appointment for %s with %s on %s is confirmed.", patient, doctor, when)
	case entities.AppointmentEventCancelled:
		return "Appointment cancelled", fmt.Sprintf("Appointment for %s with %s on %s was cancelled.", patient, doctor, when)
	case entities.AppointmentEventStatusChanged:
		return "Appointment status changed", fmt.Sprintf("Appointment for %s on %s is now %s.", patient, when, event.Status)
	default:
		return "Appointment updated", fmt.Sprintf("Appointment for %s with %s on %s was updated.", patient, doctor, when)
	}
}

// Wait blocks until in-flight dispatches finish or ctx is done
func (s *NotificationService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns one page of the user's notifications
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page pagination.Params) (pagination.Page[*entities.Notification], error) {
	items, total, err := s.repo.List(ctx, userID, unreadOnly, page)
	if err != nil {
		return pagination.Page[*entities.Notification]{}, err
	}
	return pagination.NewPage(items, total, page), nil
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every unread notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// UnreadCount returns how many notifications the user has not read
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}
