package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gestmed/internal/client/preload"
	"gestmed/internal/client/store"
	"gestmed/pkg/apiclient"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const usage = `usage: gestmedctl [flags] <command> [args]

commands:
  health                          server liveness
  me                              identity forwarded by the proxy
  dashboard [--local]             server dashboard, or derived from the client stores
  patients [--search s]           list patients
  doctors [--search s]            list doctors
  services [--doctor id]          list services
  appointments [filters]          list appointments (--date --doctor --patient --status --code)
  book                            create an appointment (--doctor --service --at and --patient or --patient-name)
  status <id> <status>            change an appointment status
  slots <doctor_id>               busy slots (--date or --from and --to)
  logs <appointment_id>           alive log of an appointment (or --code)
  log <appointment_id>            add an alive log entry (--title --description)
  warm                            keep the client stores warm until interrupted (SIGHUP preloads now)
`

func main() {
	flags := pflag.NewFlagSet("gestmedctl", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage, "\nflags:\n")
		flags.PrintDefaults()
	}

	flags.String("api-url", apiclient.DefaultBaseURL, "base URL of the GestMed API")
	flags.String("token", "", "bearer token sent with every request")
	flags.Duration("timeout", apiclient.DefaultTimeout, "HTTP timeout")
	flags.Bool("verbose", false, "log every request")

	flags.String("search", "", "search text")
	flags.Int64("doctor", 0, "doctor id")
	flags.Int64("patient", 0, "patient id")
	flags.String("patient-name", "", "patient full name for bookings without a patient record")
	flags.String("patient-email", "", "patient email")
	flags.String("service", "", "service id")
	flags.String("date", "", "day, YYYY-MM-DD")
	flags.String("from", "", "range start, YYYY-MM-DD or RFC 3339")
	flags.String("to", "", "range end, YYYY-MM-DD or RFC 3339")
	flags.String("at", "", "appointment time, RFC 3339")
	flags.String("status", "", "appointment status")
	flags.String("code", "", "appointment code")
	flags.String("notes", "", "appointment notes")
	flags.String("title", "", "alive log title")
	flags.String("description", "", "alive log description")
	flags.Bool("local", false, "derive the dashboard from the client stores")

	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvPrefix("GESTMED")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		logrus.Fatalf("Failed to bind flags: %v", err)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if v.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	client := apiclient.New(v.GetString("api-url"),
		apiclient.WithToken(v.GetString("token")),
		apiclient.WithLogger(log),
		apiclient.WithHTTPClient(newHTTPClient(v.GetDuration("timeout"))),
		apiclient.WithUnauthorizedHandler(func() {
			log.Error("Session rejected by the server, check --token")
		}),
	)
	stores := store.New(client, log, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &command{
		v:         v,
		log:       log,
		client:    client,
		stores:    stores,
		preloader: preload.New(stores, client, log),
		out:       os.Stdout,
	}
	if err := cmd.run(ctx, args[0], args[1:]); err != nil {
		log.Errorf("%s: %v", args[0], err)
		os.Exit(1)
	}
}
