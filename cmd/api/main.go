package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/cradoe/verime/internal/app"
	"github.com/cradoe/verime/internal/version"
	"github.com/cradoe/verime/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	showVersion := flag.Bool("version", false, "display version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	application, err := app.NewApplication(logger)
	if err != nil {
		return err
	}
	defer application.DB.Close()

	wk := worker.New(&worker.Worker{
		KafkaStream:   application.Kafka,
		Lifecycle:     application.Lifecycle,
		Assessor:      application.Assessor,
		Authenticator: application.Authenticator,
		UserRepo:      application.DB.User(),
		Mailer:        application.Mailer,
		Ctx:           context.Background(),
		SweepInterval: time.Duration(application.Config.SweepIntervalSeconds) * time.Second,
	})

	go wk.ScreeningWorker()
	go wk.DecisionWorker()
	go wk.SweepWorker()

	return application.ServeHTTP()
}
