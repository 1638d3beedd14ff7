package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/flownet/pkg/cache"
	"github.com/matzehuels/flownet/pkg/graph"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "flownet"
	DefaultMongoCollection = "graphs"
	DefaultMongoTimeout    = 5 * time.Second
)

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI      string
	Database string

	// Timeout bounds server selection. Zero uses DefaultMongoTimeout.
	Timeout time.Duration

	// Retry governs retries of transient failures. Zero uses
	// cache.DefaultBackoff.
	Retry cache.Backoff
}

// MongoStore keeps records in the "graphs" collection. Network errors and
// timeouts are retried with a [cache.Backoff].
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	retry  cache.Backoff
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultMongoTimeout
	}
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, classify("ping", err)
	}
	st := NewMongoStoreFromClient(client, opts.Database)
	if opts.Retry.Attempts > 0 {
		st.retry = opts.Retry
	}
	return st, nil
}

// NewMongoStoreFromClient wraps an existing client. An empty database
// name uses DefaultMongoDatabase.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultMongoCollection),
		retry:  cache.DefaultBackoff,
	}
}

func (s *MongoStore) Save(ctx context.Context, doc graph.Document) (Record, error) {
	rec := newRecord(doc)
	// Mongo stores milliseconds; truncate so the returned record matches a later Get.
	rec.CreatedAt = rec.CreatedAt.Truncate(time.Millisecond)

	attempt := 0
	err := s.retry.Do(ctx, func() error {
		attempt++
		_, err := s.coll.InsertOne(ctx, rec)
		if attempt > 1 && mongo.IsDuplicateKeyError(err) {
			// An earlier attempt reached the server before the connection failed.
			return nil
		}
		return classify("insert", err)
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Record, error) {
	if !validID(id) {
		return Record{}, ErrNotFound
	}

	var rec Record
	err := s.retry.Do(ctx, func() error {
		err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return classify("find", err)
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	sort := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	var recs []Record
	err := s.retry.Do(ctx, func() error {
		cur, err := s.coll.Find(ctx, bson.M{}, sort)
		if err != nil {
			return classify("find", err)
		}
		recs = recs[:0]
		return classify("decode", cur.All(ctx, &recs))
	})
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	return s.retry.Do(ctx, func() error {
		res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return classify("delete", err)
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultMongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// classify marks transient driver errors as retryable network failures.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(fmt.Errorf("%w: mongo %s: %w", cache.ErrNetwork, op, err))
	}
	return fmt.Errorf("mongo %s: %w", op, err)
}

var _ Store = (*MongoStore)(nil)
