package store

import (
	"sort"
	"time"

	"gestmed/internal/delivery/dto"
)

const (
	recentLimit           = 5
	UnknownPatient        = "Unknown patient"
	UnknownDoctor         = "Unknown doctor"
	DefaultSpecialization = "General"
	statusPending         = "pending"
	statusCompleted       = "completed"
	statusCancelled       = "cancelled"
)

// EnrichedAppointment carries the patient and doctor names resolved from the stores.
type EnrichedAppointment struct {
	dto.AppointmentResponse
	PatientName          string `json:"patient_name"`
	DoctorName           string `json:"doctor_name"`
	DoctorSpecialization string `json:"doctor_specialization"`
	DoctorEmail          string `json:"doctor_email"`
}

type Dashboard struct {
	TotalPatients       int                   `json:"totalPatients"`
	TotalDoctors        int                   `json:"totalDoctors"`
	TodayAppointments   int                   `json:"todayAppointments"`
	PendingAppointments int                   `json:"pendingAppointments"`
	RecentPatients      []dto.PatientResponse `json:"recentPatients"`
	RecentAppointments  []EnrichedAppointment `json:"recentAppointments"`
	Statistics          DashboardStatistics   `json:"statistics"`
}

type DashboardStatistics struct {
	AppointmentsByStatus    map[string]int `json:"appointmentsByStatus"`
	DoctorsBySpecialization map[string]int `json:"doctorsBySpecialization"`
	AvailableDoctors        int            `json:"availableDoctors"`
	TotalAppointments       int            `json:"totalAppointments"`
	MonthlyAppointments     int            `json:"monthlyAppointments"`
	CompletedAppointments   int            `json:"completedAppointments"`
	CancelledAppointments   int            `json:"cancelledAppointments"`
}

// Enriched joins every cached appointment with the cached patient and doctor.
func (s *Stores) Enriched() []EnrichedAppointment {
	patients := make(map[int64]dto.PatientResponse)
	for _, p := range s.Patients.Items() {
		patients[p.ID] = p
	}
	doctors := make(map[int64]dto.DoctorResponse)
	for _, d := range s.Doctors.Items() {
		doctors[d.ID] = d
	}

	appts := s.Appointments.Items()
	out := make([]EnrichedAppointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, enrich(a, patients, doctors))
	}
	return out
}

func enrich(a dto.AppointmentResponse, patients map[int64]dto.PatientResponse, doctors map[int64]dto.DoctorResponse) EnrichedAppointment {
	e := EnrichedAppointment{
		AppointmentResponse: a,
		PatientName:         a.PatientFullName,
		DoctorName:          UnknownDoctor,
	}

	if a.PatientID != nil {
		if p, ok := patients[*a.PatientID]; ok {
			e.PatientName = p.Name
			if p.Email != "" {
				e.PatientEmail = p.Email
			}
			if p.Phone != "" {
				e.PatientPhone = p.Phone
			}
		}
	}
	if e.PatientName == "" {
		e.PatientName = UnknownPatient
	}

	if d, ok := doctors[a.DoctorID]; ok {
		e.DoctorName = d.Name
		e.DoctorSpecialization = d.Specialization
		e.DoctorEmail = d.Email
	}
	return e
}

// EnrichedByID returns one enriched appointment from the cache.
func (s *Stores) EnrichedByID(id string) (EnrichedAppointment, bool) {
	for _, e := range s.Enriched() {
		if e.ID == id {
			return e, true
		}
	}
	return EnrichedAppointment{}, false
}

func (s *Stores) invalidateDashboard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboard = nil
}

// Dashboard derives the aggregates from the cached collections. The result is reused
// until a collection changes or the day rolls over.
func (s *Stores) Dashboard() Dashboard {
	now := s.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	versions := [3]uint64{s.Patients.Version(), s.Doctors.Version(), s.Appointments.Version()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dashboard != nil && s.seen == versions && s.seenDay.Equal(day) {
		return *s.dashboard
	}

	d := s.deriveDashboard(now)
	s.dashboard = &d
	s.seen = versions
	s.seenDay = day
	return d
}

func (s *Stores) deriveDashboard(now time.Time) Dashboard {
	patients := s.Patients.Items()
	doctors := s.Doctors.Items()
	appts := s.Enriched()

	d := Dashboard{
		TotalPatients:  len(patients),
		TotalDoctors:   len(doctors),
		RecentPatients: []dto.PatientResponse{},
		Statistics: DashboardStatistics{
			AppointmentsByStatus:    map[string]int{},
			DoctorsBySpecialization: map[string]int{},
			TotalAppointments:       len(appts),
		},
	}

	for _, a := range appts {
		date := a.AppointmentDate.UTC()
		if sameDay(date, now) {
			d.TodayAppointments++
		}
		if date.Year() == now.Year() && date.Month() == now.Month() {
			d.Statistics.MonthlyAppointments++
		}

		status := a.Status
		if status == "" {
			status = statusPending
		}
		d.Statistics.AppointmentsByStatus[status]++
		switch status {
		case statusPending:
			d.PendingAppointments++
		case statusCompleted:
			d.Statistics.CompletedAppointments++
		case statusCancelled:
			d.Statistics.CancelledAppointments++
		}
	}

	for _, doc := range doctors {
		spec := doc.Specialization
		if spec == "" {
			spec = DefaultSpecialization
		}
		d.Statistics.DoctorsBySpecialization[spec]++
		if doc.IsAvailable {
			d.Statistics.AvailableDoctors++
		}
	}

	sort.SliceStable(patients, func(i, j int) bool {
		return patients[i].CreatedAt.After(patients[j].CreatedAt)
	})
	d.RecentPatients = append(d.RecentPatients, patients[:min(recentLimit, len(patients))]...)

	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].CreatedAt.After(appts[j].CreatedAt)
	})
	d.RecentAppointments = appts[:min(recentLimit, len(appts))]

	return d
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ByDoctor groups the enriched appointments by doctor id.
func (s *Stores) ByDoctor() map[int64][]EnrichedAppointment {
	grouped := make(map[int64][]EnrichedAppointment)
	for _, a := range s.Enriched() {
		grouped[a.DoctorID] = append(grouped[a.DoctorID], a)
	}
	return grouped
}

// Upcoming returns appointments after now that are not cancelled, soonest first.
func (s *Stores) Upcoming() []EnrichedAppointment {
	now := s.now()
	var out []EnrichedAppointment
	for _, a := range s.Enriched() {
		if a.AppointmentDate.After(now) && a.Status != statusCancelled {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppointmentDate.Before(out[j].AppointmentDate)
	})
	return out
}
