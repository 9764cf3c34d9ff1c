package entities

import (
	"encoding/json"
	"fmt"
)

// UserType distinguishes doctors from patients
type UserType string

const (
	UserDoctor  UserType = "doctor"
	UserPatient UserType = "patient"
)

func (t *UserType) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch UserType(raw) {
	case UserDoctor, UserPatient:
		*t = UserType(raw)
		return nil
	}
	return fmt.Errorf("unknown user type %q", raw)
}

// User is a registered account with its embedded appointments
type User struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	UserType       UserType      `json:"userType"`
	Specialization string        `json:"specialization,omitempty"`
	Appointments   []Appointment `json:"appointments"`
}

// AppointmentIndex returns the position of the appointment with the given id or -1
func (u *User) AppointmentIndex(id string) int {
	for i := range u.Appointments {
		if u.Appointments[i].ID == id {
			return i
		}
	}
	return -1
}
