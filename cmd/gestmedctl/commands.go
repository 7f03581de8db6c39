package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gestmed/internal/client/preload"
	"gestmed/internal/client/store"
	"gestmed/internal/delivery/dto"
	"gestmed/pkg/apiclient"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var errUsage = errors.New("wrong arguments, run gestmedctl --help")

type command struct {
	v         *viper.Viper
	log       *logrus.Logger
	client    *apiclient.Client
	stores    *store.Stores
	preloader *preload.Preloader
	out       io.Writer
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (c *command) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "health":
		return c.print(c.client.Health(ctx))
	case "me":
		return c.print(c.client.Me(ctx))
	case "dashboard":
		return c.dashboard(ctx)
	case "patients":
		return c.print(c.client.ListPatients(ctx, c.v.GetString("search")))
	case "doctors":
		return c.print(c.client.ListDoctors(ctx, c.v.GetString("search")))
	case "services":
		return c.print(c.client.ListServices(ctx, apiclient.ServiceFilter{DoctorID: c.v.GetInt64("doctor")}))
	case "appointments":
		return c.appointments(ctx)
	case "book":
		return c.book(ctx)
	case "status":
		if len(args) != 2 {
			return errUsage
		}
		return c.print(c.stores.UpdateAppointmentStatus(ctx, args[0], args[1]))
	case "slots":
		return c.slots(ctx, args)
	case "logs":
		if code := c.v.GetString("code"); code != "" {
			return c.print(c.client.LogsByCode(ctx, code))
		}
		if len(args) != 1 {
			return errUsage
		}
		return c.print(c.client.AppointmentLogs(ctx, args[0]))
	case "log":
		if len(args) != 1 {
			return errUsage
		}
		return c.print(c.client.AddAppointmentLog(ctx, args[0], &dto.CreateAliveLogRequest{
			Title:       c.v.GetString("title"),
			Description: c.v.GetString("description"),
			Code:        c.v.GetString("code"),
		}))
	case "warm":
		return c.warm(ctx)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func (c *command) print(v interface{}, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *command) dashboard(ctx context.Context) error {
	if !c.v.GetBool("local") {
		return c.print(c.client.Dashboard(ctx))
	}
	if _, err := c.stores.FetchAppointments(ctx, false); err != nil {
		return err
	}
	return c.print(c.stores.Dashboard(), nil)
}

func (c *command) appointments(ctx context.Context) error {
	filter := apiclient.AppointmentFilter{
		DoctorID:  c.v.GetInt64("doctor"),
		PatientID: c.v.GetInt64("patient"),
		ServiceID: c.v.GetString("service"),
		Status:    c.v.GetString("status"),
		Code:      c.v.GetString("code"),
	}
	if date := c.v.GetString("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		filter.Date = day
	}
	return c.print(c.client.ListAppointments(ctx, filter))
}

func (c *command) book(ctx context.Context) error {
	at, err := time.Parse(time.RFC3339, c.v.GetString("at"))
	if err != nil {
		return fmt.Errorf("invalid --at: %w", err)
	}
	req := &dto.CreateAppointmentRequest{
		PatientFullName: c.v.GetString("patient-name"),
		PatientEmail:    c.v.GetString("patient-email"),
		DoctorID:        c.v.GetInt64("doctor"),
		ServiceID:       dto.ID(c.v.GetString("service")),
		AppointmentDate: &at,
		Notes:           c.v.GetString("notes"),
	}
	if id := c.v.GetInt64("patient"); id > 0 {
		req.PatientID = &id
	}
	return c.print(c.stores.CreateAppointment(ctx, req))
}

func (c *command) slots(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	doctorID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid doctor id %q", args[0])
	}

	var window apiclient.BusySlotWindow
	if window.Date, err = parseDay(c.v.GetString("date")); err != nil {
		return fmt.Errorf("invalid --date: %w", err)
	}
	if window.StartDate, err = parseDay(c.v.GetString("from")); err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	if window.EndDate, err = parseDay(c.v.GetString("to")); err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	return c.print(c.client.BusySlots(ctx, doctorID, window))
}

// parseDay accepts YYYY-MM-DD or RFC 3339. Empty input gives the zero time.
func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (c *command) warm(ctx context.Context) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				c.preloader.Trigger()
			}
		}
	}()

	if err := c.preloader.Preload(ctx); err != nil {
		c.log.Warnf("Initial preload incomplete: %v", err)
	}
	c.log.Info("Warming client stores")

	err := c.preloader.Warm(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
