// Package main provides the Leadflow API server.
package main

import (
	"context"
	"os"
	"time"

	"github.com/piazza-crm/leadflow/pkg/cmd"
	"github.com/piazza-crm/leadflow/pkg/log"
	"github.com/piazza-crm/leadflow/pkg/mail"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort = 9080

	// defaultPacing keeps per-action progress visible to a human watching
	// the designer UI.
	defaultPacing = 1500 * time.Millisecond
)

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "leadflow-api",
		Usage:                 "Manage leads and run workflows against them",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file path, postgres://, redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.DurationFlag{
				Name:    "pacing",
				Usage:   "Settling delay between workflow actions",
				Value:   defaultPacing,
				Sources: cli.EnvVars("WORKFLOW_PACING"),
			},
			&cli.StringFlag{
				Name:    "smtp-host",
				Usage:   "SMTP host for outbound email (delivery is simulated when unset)",
				Sources: cli.EnvVars("SMTP_HOST"),
			},
			&cli.IntFlag{
				Name:    "smtp-port",
				Usage:   "SMTP port",
				Value:   587,
				Sources: cli.EnvVars("SMTP_PORT"),
			},
			&cli.StringFlag{
				Name:    "smtp-username",
				Usage:   "SMTP username",
				Sources: cli.EnvVars("SMTP_USERNAME"),
			},
			&cli.StringFlag{
				Name:    "smtp-password",
				Usage:   "SMTP password",
				Sources: cli.EnvVars("SMTP_PASSWORD"),
			},
			&cli.StringFlag{
				Name:    "smtp-sender-name",
				Usage:   "Display name on outbound email",
				Value:   "Leadflow",
				Sources: cli.EnvVars("SMTP_SENDER_NAME"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Leadflow API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "leadflow-api", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			transport := mail.NewSMTPTransport(mail.SMTPConfig{
				Host:       command.String("smtp-host"),
				Port:       command.Int("smtp-port"),
				Username:   command.String("smtp-username"),
				Password:   command.String("smtp-password"),
				SenderName: command.String("smtp-sender-name"),
			})

			api := NewAPI(logger, persistence, eventBus, transport, command.Duration("pacing"))

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
