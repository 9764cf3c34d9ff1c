// Package dashboard computes the views of the doctor dashboard from the
// logged-in doctor's appointments.
package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/giygas/telehealth-api/entities"
)

// StatusFilter selects appointments by status. FilterAll keeps everything.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterUpcoming  StatusFilter = "upcoming"
	FilterCompleted StatusFilter = "completed"
	FilterCancelled StatusFilter = "cancelled"
)

// ParseStatusFilter treats an empty value as FilterAll
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterUpcoming, FilterCompleted, FilterCancelled:
		return f, nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

func (f StatusFilter) matches(status entities.AppointmentStatus) bool {
	switch f {
	case FilterUpcoming:
		return status == entities.StatusUpcoming
	case FilterCompleted:
		return status == entities.StatusCompleted
	case FilterCancelled:
		return status == entities.StatusCancelled
	}
	return true
}

// SortNewestFirst returns a copy ordered by date descending. Appointments on
// the same day keep their relative order.
func SortNewestFirst(appts []entities.Appointment) []entities.Appointment {
	out := slices.Clone(appts)
	slices.SortStableFunc(out, func(a, b entities.Appointment) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}

// SortSoonestFirst returns a copy ordered by date ascending, with the same
// stability as SortNewestFirst
func SortSoonestFirst(appts []entities.Appointment) []entities.Appointment {
	out := slices.Clone(appts)
	slices.SortStableFunc(out, func(a, b entities.Appointment) int {
		return a.Date.Compare(b.Date.Time)
	})
	return out
}

// SortForFilter orders the upcoming list soonest first and every other list
// newest first
func SortForFilter(appts []entities.Appointment, f StatusFilter) []entities.Appointment {
	if f == FilterUpcoming {
		return SortSoonestFirst(appts)
	}
	return SortNewestFirst(appts)
}

// FilterByStatus keeps the appointments matching f, in input order
func FilterByStatus(appts []entities.Appointment, f StatusFilter) []entities.Appointment {
	out := make([]entities.Appointment, 0, len(appts))
	for _, a := range appts {
		if f.matches(a.Status) {
			out = append(out, a)
		}
	}
	return out
}

// Counts are the three numbers at the top of the dashboard
type Counts struct {
	Total    int `json:"total"`
	Upcoming int `json:"upcoming"`
	Patients int `json:"patients"`
}

func CountAppointments(appts []entities.Appointment) Counts {
	c := Counts{Total: len(appts)}
	seen := make(map[string]struct{})
	for _, a := range appts {
		if a.Status == entities.StatusUpcoming {
			c.Upcoming++
		}
		if a.PatientID != "" {
			seen[a.PatientID] = struct{}{}
		}
	}
	c.Patients = len(seen)
	return c
}

// Badge values returned by TimingBadge
const (
	BadgeToday    = "Today"
	BadgeTomorrow = "Tomorrow"
	BadgeUpcoming = "Upcoming"
)

// TimingBadge labels Upcoming appointments that are today, tomorrow or later.
// Past or closed appointments get no badge.
func TimingBadge(a entities.Appointment, now time.Time) string {
	if a.Status != entities.StatusUpcoming {
		return ""
	}

	today := entities.NewDate(now)
	switch {
	case a.Date.Equal(today.Time):
		return BadgeToday
	case a.Date.Equal(today.AddDate(0, 0, 1)):
		return BadgeTomorrow
	case a.Date.After(today.Time):
		return BadgeUpcoming
	}
	return ""
}

// Initials takes the first letter of each word, upper-cased
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)
		b.WriteRune(r[0])
	}
	return strings.ToUpper(b.String())
}
