package client

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelier/pkg/logger"
)

// Client bundles the external connections the service owns. Only MongoDB
// is mandatory; optional collaborators (the Kafka audit mirror) are
// constructed where they are used.
type Client struct {
	Mongo *mongo.Client
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB",
			"error", err,
			"uri", mongoURI,
		)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

// Close disconnects everything the client owns. Safe to call with a nil
// mongo connection (e.g. when startup failed early).
func (c *Client) Close(ctx context.Context) error {
	if c.Mongo == nil {
		return nil
	}
	return c.Mongo.Disconnect(ctx)
}
