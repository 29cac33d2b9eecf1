/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/dailyyield/apiserver/config"
	"github.com/dailyyield/apiserver/internal/db"
	"github.com/dailyyield/apiserver/internal/events"
	"github.com/dailyyield/apiserver/internal/mq"
	"github.com/dailyyield/apiserver/internal/server"
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/dailyyield/apiserver/internal/store"
	"github.com/sirupsen/logrus"
)

// openServices builds the service layer for one-shot commands. Events are
// published when a broker is configured; object storage is not opened.
func openServices(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (server.Services, func(), error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return server.Services{}, nil, err
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return server.Services{}, nil, fmt.Errorf("open mq: %w", err)
	}
	var publisher services.EventPublisher
	if broker != nil {
		publisher = events.NewPublisher(broker, cfg.MQ.Channel, logger)
	}

	svc := server.NewServices(cfg, server.Repositories{
		Users:     store.NewUserRepository(dbConn),
		Packages:  store.NewPackageRepository(dbConn),
		Purchases: store.NewPurchaseRepository(dbConn),
	}, publisher, nil, logger)

	cleanup := func() {
		if broker != nil {
			_ = broker.Close()
		}
		_ = dbConn.Close()
	}
	return svc, cleanup, nil
}
