package usecase

import (
	"context"

	"gestmed/internal/domain/entity"
	"gestmed/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// peopleLookup resolves patient and doctor names for appointment views.
// Either repository may be nil, in which case names stay empty.
type peopleLookup struct {
	log         *logrus.Logger
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
}

func (l *peopleLookup) resolve(ctx context.Context, appointments []entity.Appointment) (map[int64]entity.Patient, map[int64]entity.Doctor, error) {
	patientIDs := make([]int64, 0, len(appointments))
	doctorIDs := make([]int64, 0, len(appointments))
	seenPatients := make(map[int64]bool)
	seenDoctors := make(map[int64]bool)
	for i := range appointments {
		if id := appointments[i].PatientID; id != nil && !seenPatients[*id] {
			seenPatients[*id] = true
			patientIDs = append(patientIDs, *id)
		}
		if id := appointments[i].DoctorID; !seenDoctors[id] {
			seenDoctors[id] = true
			doctorIDs = append(doctorIDs, id)
		}
	}

	patients := make(map[int64]entity.Patient, len(patientIDs))
	if l.patientRepo != nil && len(patientIDs) > 0 {
		found, err := l.patientRepo.FindByIDs(ctx, patientIDs)
		if err != nil {
			l.log.Warnf("Failed to find patients by ids: %+v", err)
			return nil, nil, err
		}
		for _, p := range found {
			patients[p.ID] = p
		}
	}

	doctors := make(map[int64]entity.Doctor, len(doctorIDs))
	if l.doctorRepo != nil && len(doctorIDs) > 0 {
		found, err := l.doctorRepo.FindByIDs(ctx, doctorIDs)
		if err != nil {
			l.log.Warnf("Failed to find doctors by ids: %+v", err)
			return nil, nil, err
		}
		for _, d := range found {
			doctors[d.ID] = d
		}
	}

	return patients, doctors, nil
}
