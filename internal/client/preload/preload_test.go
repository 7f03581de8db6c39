package preload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gestmed/internal/client/store"
	"gestmed/pkg/apiclient"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	patientHits     int32
	appointmentWait time.Duration
	failDoctors     bool
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"totalPatients":1,"totalDoctors":1,"statistics":{"appointmentsByStatus":{}}}`)
	})
	mux.HandleFunc("/patients", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.patientHits, 1)
		io.WriteString(w, `[{"id":1,"name":"Anna Bianchi"}]`)
	})
	mux.HandleFunc("/doctors", func(w http.ResponseWriter, r *http.Request) {
		if b.failDoctors {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"Internal server error"}`)
			return
		}
		io.WriteString(w, `[{"id":7,"name":"Dr. Verdi","is_available":true}]`)
	})
	mux.HandleFunc("/appointments", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(b.appointmentWait):
		case <-r.Context().Done():
			return
		}
		io.WriteString(w, `[{"id":"11","doctor_id":7,"status":"scheduled"}]`)
	})
	return mux
}

func setup(t *testing.T, b *backend, opts ...Option) (*Preloader, *store.Stores) {
	t.Helper()
	server := httptest.NewServer(b.handler())
	t.Cleanup(server.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	client := apiclient.New(server.URL, apiclient.WithLogger(log), apiclient.WithRetryDelay(time.Millisecond))
	stores := store.New(client, log, nil)
	return New(stores, client, log, opts...), stores
}

func TestPreloadFillsStores(t *testing.T) {
	p, stores := setup(t, &backend{})

	require.NoError(t, p.Preload(context.Background()))

	assert.Equal(t, 1, stores.Patients.Len())
	assert.Equal(t, 1, stores.Doctors.Len())
	assert.Equal(t, 1, stores.Appointments.Len())
	require.NotNil(t, p.Dashboard())
	assert.Equal(t, int64(1), p.Dashboard().TotalPatients)
}

func TestPreloadTimeout(t *testing.T) {
	p, stores := setup(t, &backend{appointmentWait: time.Second}, WithTimeout(50*time.Millisecond))

	err := p.Preload(context.Background())
	assert.ErrorIs(t, err, ErrPreloadTimeout)
	assert.Equal(t, 1, stores.Patients.Len())
	assert.Equal(t, 0, stores.Appointments.Len())
}

func TestPreloadKeepsGoingAfterFailure(t *testing.T) {
	p, stores := setup(t, &backend{failDoctors: true})

	err := p.Preload(context.Background())
	assert.True(t, apiclient.IsStatus(err, http.StatusInternalServerError))
	assert.Equal(t, 1, stores.Patients.Len())
	assert.Equal(t, 1, stores.Appointments.Len())
}

func TestTriggerRunsWarmLoop(t *testing.T) {
	b := &backend{}
	p, _ := setup(t, b, WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Warm(ctx) }()

	p.Trigger()
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&b.patientHits) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Warm did not stop after cancel")
	}
}

func TestWarmTicks(t *testing.T) {
	b := &backend{}
	p, stores := setup(t, b, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Warm(ctx)

	assert.Eventually(t, func() bool {
		return stores.Appointments.Len() == 1
	}, time.Second, 5*time.Millisecond)
}
