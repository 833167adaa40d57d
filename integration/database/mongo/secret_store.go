package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/motdlink/core/player"
)

const (
	defaultDatabase   = "motdlink"
	defaultCollection = "player_secrets"
)

var (
	// ErrEmptyConnectionURL is returned when the connection URL is empty.
	ErrEmptyConnectionURL = errors.New("empty mongo connection URL")
	// ErrConnectionFailed is returned when the client cannot reach the
	// server.
	ErrConnectionFailed = errors.New("failed to connect to mongo")
)

// Connect opens a client for the connection URL and verifies the server
// answers a ping.
func Connect(ctx context.Context, connURL string) (*mongo.Client, error) {
	if connURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	client, err := mongo.Connect(options.Client().ApplyURI(connURL))
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	return client, nil
}

type secretDoc struct {
	Identity string `bson:"_id"`
	Secret   []byte `bson:"secret"`
}

// SecretStore implements player.SecretStore on a Mongo collection.
type SecretStore struct {
	coll *mongo.Collection
}

// SecretStoreOption configures a SecretStore.
type SecretStoreOption func(*storeConfig)

type storeConfig struct {
	database   string
	collection string
}

// WithDatabase overrides the default "motdlink" database name.
func WithDatabase(name string) SecretStoreOption {
	return func(c *storeConfig) {
		if name != "" {
			c.database = name
		}
	}
}

// WithCollection overrides the default "player_secrets" collection name.
func WithCollection(name string) SecretStoreOption {
	return func(c *storeConfig) {
		if name != "" {
			c.collection = name
		}
	}
}

// NewSecretStore creates a secret store over an established client.
func NewSecretStore(client *mongo.Client, opts ...SecretStoreOption) *SecretStore {
	cfg := &storeConfig{
		database:   defaultDatabase,
		collection: defaultCollection,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &SecretStore{
		coll: client.Database(cfg.database).Collection(cfg.collection),
	}
}

// LoadSecret implements player.SecretStore.
func (s *SecretStore) LoadSecret(ctx context.Context, identity string) ([]byte, error) {
	var doc secretDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": identity}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, player.ErrSecretNotFound
		}
		return nil, err
	}
	return doc.Secret, nil
}

// StoreSecret implements player.SecretStore.
func (s *SecretStore) StoreSecret(ctx context.Context, identity string, secret []byte) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": identity},
		bson.M{"$set": bson.M{"secret": secret}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}
