package api

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dzeckelev/quickpay/eth"
)

// Pinger is a database connection pool.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NodeHealth probes the database and the Ethereum node.
type NodeHealth struct {
	DB     Pinger
	Client eth.GethClient
}

// Probe implements the HealthService interface.
func (h NodeHealth) Probe(ctx context.Context) error {
	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			return errors.Wrap(err, "database")
		}
	}

	if h.Client != nil {
		if _, err := h.Client.HeaderByNumber(ctx, nil); err != nil {
			return errors.Wrap(err, "node")
		}
	}

	return nil
}
