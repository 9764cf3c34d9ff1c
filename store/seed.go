package store

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/telehealth-api/entities"
)

// SeedUsers writes users only when no users list exists yet. It reports
// whether anything was written.
func (r *Records) SeedUsers(ctx context.Context, users []entities.User) (bool, error) {
	existing, err := r.Users(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if err := r.SaveUsers(ctx, users); err != nil {
		return false, fmt.Errorf("failed to seed users: %w", err)
	}
	return true, nil
}

// DemoUsers is a doctor with two patients and their appointments, dated
// relative to today so the dashboard badges have something to show.
func DemoUsers(today time.Time) []entities.User {
	day := func(offset int) entities.Date {
		return entities.NewDate(today.AddDate(0, 0, offset))
	}

	appts := []entities.Appointment{
		{ID: "apt-1", PatientID: "pat-1", PatientName: "Asha Verma", DoctorID: "doc-1", Date: day(0), Time: "10:00", Reason: "Fever", Duration: "30 minutes", Status: entities.StatusUpcoming},
		{ID: "apt-2", PatientID: "pat-2", PatientName: "Rahul Mehta", DoctorID: "doc-1", Date: day(1), Time: "11:30", Reason: "Back pain", Duration: "30 minutes", Status: entities.StatusUpcoming},
		{ID: "apt-3", PatientID: "pat-1", PatientName: "Asha Verma", DoctorID: "doc-1", Date: day(-7), Time: "09:00", Reason: "Follow-up", Duration: "15 minutes", Status: entities.StatusCompleted},
	}

	pick := func(patientID string) []entities.Appointment {
		var out []entities.Appointment
		for _, a := range appts {
			if a.PatientID == patientID {
				out = append(out, a)
			}
		}
		return out
	}

	return []entities.User{
		{ID: "doc-1", Name: "Dr. Priya Nair", Email: "priya@example.com", UserType: entities.UserDoctor, Specialization: "General Medicine", Appointments: appts},
		{ID: "pat-1", Name: "Asha Verma", Email: "asha@example.com", UserType: entities.UserPatient, Appointments: pick("pat-1")},
		{ID: "pat-2", Name: "Rahul Mehta", Email: "rahul@example.com", UserType: entities.UserPatient, Appointments: pick("pat-2")},
	}
}
