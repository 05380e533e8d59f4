// Package main provides the Leadflow automator, which runs the saved
// workflow against every newly created lead.
package main

import (
	"context"
	"os"

	"github.com/piazza-crm/leadflow/pkg/cmd"
	"github.com/piazza-crm/leadflow/pkg/log"
	"github.com/piazza-crm/leadflow/pkg/mail"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "leadflow-automator",
		Usage:                 "Run the saved workflow automatically when leads are created",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file path, postgres://, redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (gochannel, kafka)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.DurationFlag{
				Name:    "pacing",
				Usage:   "Settling delay between workflow actions",
				Value:   0,
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

			logger := log.WithModule("automator")

			logger.InfoContext(ctx, "Initializing Leadflow Automator")

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

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "leadflow-automator", logger)
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

			automator := NewAutomator(
				logger,
				persistence,
				eventBus,
				transport,
				command.Duration("pacing"),
			)

			return automator.Start(ctx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
