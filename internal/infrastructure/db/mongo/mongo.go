package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 10 * time.Second
	// defaultTimeout bounds each directory query.
	defaultTimeout = 5 * time.Second
	maxPoolSize    = 20
)

// Config selects the deployment and database holding the directory.
type Config struct {
	URI      string
	Database string
	// Timeout bounds connect plus the first ping. Zero means 10s.
	Timeout time.Duration
}

func (c Config) clientOptions() *options.ClientOptions {
	return options.Client().
		ApplyURI(c.URI).
		SetAppName("gateway").
		SetMaxPoolSize(maxPoolSize).
		SetServerSelectionTimeout(c.timeout())
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return connectTimeout
}

// Connect dials the deployment and waits for a primary to answer. The caller
// owns the returned client and must Disconnect it.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.clientOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo: ping %s: %w", cfg.Database, err)
	}
	return client, client.Database(cfg.Database), nil
}
