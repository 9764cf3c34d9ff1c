package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/giygas/telehealth-api/entities"
	"github.com/giygas/telehealth-api/store"
)

var (
	ErrNotDoctor           = errors.New("dashboard requires a logged-in doctor")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// Records is the subset of the record store the dashboard reads and writes
type Records interface {
	Users(ctx context.Context) ([]entities.User, error)
	SaveUsers(ctx context.Context, users []entities.User) error
	CurrentUser(ctx context.Context, sessionID string) (entities.User, error)
	SetCurrentUser(ctx context.Context, sessionID string, u entities.User) error
}

var _ Records = (*store.Records)(nil)

type Service struct {
	records Records
}

func NewService(records Records) *Service {
	return &Service{records: records}
}

// Doctor returns the logged-in doctor of the session
func (s *Service) Doctor(ctx context.Context, sessionID string) (entities.User, error) {
	u, err := s.records.CurrentUser(ctx, sessionID)
	if errors.Is(err, store.ErrUserNotFound) {
		return entities.User{}, ErrNotDoctor
	}
	if err != nil {
		return entities.User{}, err
	}
	if u.UserType != entities.UserDoctor {
		return entities.User{}, ErrNotDoctor
	}
	return u, nil
}

// Appointments returns the doctor's appointments matching f. Upcoming ones
// come soonest first, the other filters newest first.
func (s *Service) Appointments(ctx context.Context, sessionID string, f StatusFilter) ([]entities.Appointment, error) {
	doctor, err := s.Doctor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return SortForFilter(FilterByStatus(doctor.Appointments, f), f), nil
}

func (s *Service) Patients(ctx context.Context, sessionID, search string, mode PatientMode) ([]Patient, error) {
	doctor, err := s.Doctor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return FilterPatients(Patients(doctor.Appointments), search, mode), nil
}

func (s *Service) Counts(ctx context.Context, sessionID string) (Counts, error) {
	doctor, err := s.Doctor(ctx, sessionID)
	if err != nil {
		return Counts{}, err
	}
	return CountAppointments(doctor.Appointments), nil
}

// UpdateStatus completes or cancels an Upcoming appointment. The change is
// written to the session's doctor, the doctor's entry in the users list and
// the patient's own copy of the appointment.
func (s *Service) UpdateStatus(ctx context.Context, sessionID, appointmentID string, status entities.AppointmentStatus) (entities.Appointment, error) {
	if status != entities.StatusCompleted && status != entities.StatusCancelled {
		return entities.Appointment{}, fmt.Errorf("%w: target %q", ErrInvalidTransition, status)
	}

	doctor, err := s.Doctor(ctx, sessionID)
	if err != nil {
		return entities.Appointment{}, err
	}

	i := doctor.AppointmentIndex(appointmentID)
	if i == -1 {
		return entities.Appointment{}, fmt.Errorf("%w: %s", ErrAppointmentNotFound, appointmentID)
	}

	appt := doctor.Appointments[i]
	if appt.Status != entities.StatusUpcoming {
		return entities.Appointment{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, status)
	}
	appt.Status = status
	doctor.Appointments[i] = appt

	if err := s.records.SetCurrentUser(ctx, sessionID, doctor); err != nil {
		return entities.Appointment{}, err
	}

	users, err := s.records.Users(ctx)
	if err != nil {
		return entities.Appointment{}, err
	}
	for u := range users {
		switch users[u].ID {
		case doctor.ID:
			users[u] = doctor
		case appt.PatientID:
			if j := users[u].AppointmentIndex(appointmentID); j != -1 {
				users[u].Appointments[j] = appt
			}
		}
	}
	if err := s.records.SaveUsers(ctx, users); err != nil {
		return entities.Appointment{}, err
	}

	return appt, nil
}
