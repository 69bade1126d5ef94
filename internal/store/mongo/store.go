// Package mongo implements store.Store on MongoDB. Records live in the
// "forms" collection with a unique index on name.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/goliatone/go-formdispatch/internal/store"
)

const (
	colForms     = "forms"
	closeTimeout = 5 * time.Second
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store on a mongo collection.
type Store struct {
	client *mongod.Client
	col    *mongod.Collection
	clock  store.Clock
}

// Open connects to uri, selects database and ensures indexes.
func Open(ctx context.Context, uri, database string, clock store.Clock) (*Store, error) {
	client, err := mongod.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store/mongo: connect: %w", err)
	}

	s := New(client, database, clock)
	if err := s.Migrate(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps an existing client.
func New(client *mongod.Client, database string, clock store.Clock) *Store {
	if clock == nil {
		clock = store.UTCNow
	}
	return &Store{
		client: client,
		col:    client.Database(database).Collection(colForms),
		clock:  clock,
	}
}

// Migrate creates the unique name index.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, migrationIndexes())
	if err != nil {
		return fmt.Errorf("store/mongo: migrate %s indexes: %w", colForms, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// List returns forms oldest first.
func (s *Store) List(ctx context.Context) ([]store.Form, error) {
	cursor, err := s.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("store/mongo: list: %w", err)
	}

	forms := []store.Form{}
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, fmt.Errorf("store/mongo: list: %w", err)
	}
	return forms, nil
}

func (s *Store) Get(ctx context.Context, name string) (store.Form, error) {
	var form store.Form
	err := s.col.FindOne(ctx, bson.M{"name": name}).Decode(&form)
	if err != nil {
		if isNoDocuments(err) {
			return store.Form{}, store.ErrNotFound
		}
		return store.Form{}, fmt.Errorf("store/mongo: get: %w", err)
	}
	return form, nil
}

func (s *Store) Create(ctx context.Context, form store.Form) (store.Form, error) {
	prepared, err := store.Prepare(form, s.clock())
	if err != nil {
		return store.Form{}, err
	}

	if _, err := s.col.InsertOne(ctx, prepared); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return store.Form{}, store.ErrConflict
		}
		return store.Form{}, fmt.Errorf("store/mongo: create: %w", err)
	}
	return prepared, nil
}

func (s *Store) Update(ctx context.Context, name string, update store.Update) (store.Form, error) {
	if update.Empty() {
		return store.Form{}, store.ErrNoChange
	}

	var form store.Form
	err := s.col.FindOneAndUpdate(
		ctx,
		bson.M{"name": name},
		bson.M{"$set": updateFields(update, s.clock())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&form)
	if err != nil {
		switch {
		case isNoDocuments(err):
			return store.Form{}, store.ErrNotFound
		case mongod.IsDuplicateKeyError(err):
			return store.Form{}, store.ErrConflict
		}
		return store.Form{}, fmt.Errorf("store/mongo: update: %w", err)
	}
	return form, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	result, err := s.col.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("store/mongo: delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func updateFields(update store.Update, now time.Time) bson.M {
	fields := bson.M{"updatedAt": now}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.YAMLContent != nil {
		fields["yamlContent"] = *update.YAMLContent
	}
	return fields
}

func migrationIndexes() []mongod.IndexModel {
	return []mongod.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	}
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}
