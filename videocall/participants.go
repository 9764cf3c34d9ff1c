package videocall

import (
	"errors"

	"github.com/giygas/telehealth-api/entities"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Participants are the two sides of an appointment call. Other is nil when
// the doctor of a patient's appointment is no longer in the users list.
type Participants struct {
	Appointment entities.Appointment `json:"appointment"`
	Self        entities.User        `json:"self"`
	Other       *entities.User       `json:"other"`
}

// ResolveParticipants finds the appointment and the other party. A patient
// looks in their own appointments and the doctor is looked up by id; a
// doctor looks for the patient holding the appointment.
func ResolveParticipants(current entities.User, users []entities.User, appointmentID string) (Participants, error) {
	p := Participants{Self: current}

	if current.UserType == entities.UserPatient {
		i := current.AppointmentIndex(appointmentID)
		if i == -1 {
			return Participants{}, ErrAppointmentNotFound
		}
		p.Appointment = current.Appointments[i]
		for j := range users {
			if users[j].ID == p.Appointment.DoctorID {
				doctor := users[j]
				p.Other = &doctor
				break
			}
		}
		return p, nil
	}

	for j := range users {
		if users[j].UserType != entities.UserPatient {
			continue
		}
		if i := users[j].AppointmentIndex(appointmentID); i != -1 {
			patient := users[j]
			p.Appointment = patient.Appointments[i]
			p.Other = &patient
			return p, nil
		}
	}
	return Participants{}, ErrAppointmentNotFound
}
