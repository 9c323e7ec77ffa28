package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/badgeforge/pkg/errors"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "badgeforge"
	DefaultMongoCollection = "templates"
)

// MongoStore keeps templates in a MongoDB collection keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// MongoConfig selects the database and collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	// Timeout bounds the initial connect and ping. Zero means 10s.
	Timeout time.Duration
}

// mongoTemplate is the stored form. The document is kept as a JSON string so
// it round-trips byte for byte.
type mongoTemplate struct {
	Name        string    `bson:"_id"`
	Description string    `bson:"description,omitempty"`
	Document    string    `bson:"document"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// NewMongoStore connects to cfg.URI and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := NewMongoStoreFromClient(client, cfg.Database, cfg.Collection)
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient uses an existing client. Close does not disconnect
// a client it did not create.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

func (s *MongoStore) List(ctx context.Context) ([]Template, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	var docs []mongoTemplate
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	out := make([]Template, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.template())
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, name string) (*Template, error) {
	var d mongoTemplate
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&d)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", name, err)
	}
	t := d.template()
	return &t, nil
}

func (s *MongoStore) Put(ctx context.Context, t *Template) error {
	c, err := prepare(t)
	if err != nil {
		return err
	}
	d := mongoTemplate{
		Name:        c.Name,
		Description: c.Description,
		Document:    string(c.Document),
		UpdatedAt:   c.UpdatedAt,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: d.Name}}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put template %s: %w", d.Name, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: name}})
	if err != nil {
		return fmt.Errorf("delete template %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (d mongoTemplate) template() Template {
	return Template{
		Name:        d.Name,
		Description: d.Description,
		Document:    []byte(d.Document),
		UpdatedAt:   d.UpdatedAt,
	}
}

var _ Store = (*MongoStore)(nil)
