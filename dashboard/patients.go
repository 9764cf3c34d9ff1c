package dashboard

import (
	"slices"
	"strings"

	"github.com/giygas/telehealth-api/entities"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Patient aggregates the appointments of one patient
type Patient struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Initials     string                 `json:"initials"`
	LastVisit    entities.Date          `json:"lastVisit"`
	Appointments []entities.Appointment `json:"appointments"`
}

func (p Patient) hasUpcoming() bool {
	for _, a := range p.Appointments {
		if a.Status == entities.StatusUpcoming {
			return true
		}
	}
	return false
}

// PatientMode narrows the patient list
type PatientMode string

const (
	ModeAll      PatientMode = "all"
	ModeRecent   PatientMode = "recent"
	ModeUpcoming PatientMode = "upcoming"
)

const recentLimit = 10

func ParsePatientMode(s string) PatientMode {
	switch m := PatientMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRecent, ModeUpcoming:
		return m
	}
	return ModeAll
}

// Patients groups appointments by patient id. LastVisit is the newest
// appointment date. The result is sorted by name using English collation.
func Patients(appts []entities.Appointment) []Patient {
	index := make(map[string]int)
	var patients []Patient

	for _, a := range appts {
		i, ok := index[a.PatientID]
		if !ok {
			i = len(patients)
			index[a.PatientID] = i
			patients = append(patients, Patient{
				ID:        a.PatientID,
				Name:      a.PatientName,
				Initials:  Initials(a.PatientName),
				LastVisit: a.Date,
			})
		}

		p := &patients[i]
		p.Appointments = append(p.Appointments, a)
		if a.Date.After(p.LastVisit.Time) {
			p.LastVisit = a.Date
		}
	}

	// collators keep scratch buffers, so one per call
	col := collate.New(language.English)
	slices.SortStableFunc(patients, func(a, b Patient) int {
		return col.CompareString(a.Name, b.Name)
	})

	if patients == nil {
		return []Patient{}
	}
	return patients
}

// FilterPatients applies the search box and the mode selector. The search is
// a case-insensitive substring match on name or id.
func FilterPatients(patients []Patient, search string, mode PatientMode) []Patient {
	term := strings.ToLower(strings.TrimSpace(search))

	out := make([]Patient, 0, len(patients))
	for _, p := range patients {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.ID), term) {
			continue
		}
		if mode == ModeUpcoming && !p.hasUpcoming() {
			continue
		}
		out = append(out, p)
	}

	if mode == ModeRecent {
		slices.SortStableFunc(out, func(a, b Patient) int {
			return b.LastVisit.Compare(a.LastVisit.Time)
		})
		if len(out) > recentLimit {
			out = out[:recentLimit]
		}
	}
	return out
}
