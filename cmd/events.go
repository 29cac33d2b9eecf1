/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"

	"github.com/dailyyield/apiserver/internal/events"
	"github.com/dailyyield/apiserver/internal/mq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// eventsCmd tails the wallet event channel and logs every event.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Subscribe to wallet events and log them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}

		broker, err := mq.Open(cmd.Context(), cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer func() {
			_ = broker.Close()
		}()

		logger.WithField("channel", cfg.MQ.Channel).Info("listening for wallet events")
		err = broker.Subscribe(cmd.Context(), cfg.MQ.Channel, func(ctx context.Context, msg mq.Message) error {
			event, err := events.Decode(msg)
			if err != nil {
				// Undecodable messages are acknowledged; redelivery would not help.
				logger.WithError(err).WithField("message_id", msg.ID).Warn("skip malformed event")
				return nil
			}
			logger.WithFields(logrus.Fields{
				"event_id":    event.ID,
				"type":        event.Type,
				"occurred_at": event.OccurredAt,
				"payload":     string(event.Payload),
			}).Info("wallet event")
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
