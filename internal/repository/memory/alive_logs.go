package memory

import (
	"context"
	"strconv"
	"time"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"
)

type aliveLogRepository struct {
	store *Store
}

func NewAliveLogRepository(store *Store) domainRepo.AliveLogRepository {
	return &aliveLogRepository{store: store}
}

func (r *aliveLogRepository) Create(_ context.Context, log *entity.AliveLog) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = s.nextStringID()
	log.CreatedAt = s.now()
	s.aliveLogs = append(s.aliveLogs, *log)
	return nil
}

func (r *aliveLogRepository) FindByAppointmentID(_ context.Context, appointmentID string) ([]entity.AliveLog, error) {
	return r.find(func(l *entity.AliveLog) bool { return l.AppointmentID == appointmentID }), nil
}

func (r *aliveLogRepository) FindByCode(_ context.Context, code string) ([]entity.AliveLog, error) {
	return r.find(func(l *entity.AliveLog) bool { return l.Code == code }), nil
}

func (r *aliveLogRepository) find(match func(*entity.AliveLog) bool) []entity.AliveLog {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]entity.AliveLog, 0)
	for i := range s.aliveLogs {
		if match(&s.aliveLogs[i]) {
			logs = append(logs, s.aliveLogs[i])
		}
	}
	newestFirst(logs,
		func(l entity.AliveLog) time.Time { return l.CreatedAt },
		func(l entity.AliveLog) int64 {
			n, _ := strconv.ParseInt(l.ID, 10, 64)
			return n
		})
	return logs
}
