// internal/repository/mongo/kv_store.go
package mongo

import (
	"alcyxob/climb-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultKVCollectionName = "kv"

// Server error codes that mean the write was rejected for size.
var quotaErrorCodes = []int{
	10334, // BSONObjectTooLarge
	12501, // quota exceeded
	14031, // OutOfDiskSpace
}

// kvDocument is one key of the store; the key doubles as _id.
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoKVStore implements storage.KeyValueStore on a MongoDB collection.
type mongoKVStore struct {
	collection *mongo.Collection
}

// NewMongoKVStore creates a key-value store backed by the named collection.
func NewMongoKVStore(db *mongo.Database, collectionName string) storage.KeyValueStore {
	if collectionName == "" {
		collectionName = defaultKVCollectionName
	}
	return &mongoKVStore{
		collection: db.Collection(collectionName),
	}
}

// Get retrieves the value stored under key.
func (r *mongoKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc kvDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: read %q: %v", storage.ErrUnavailable, key, err)
	}
	return doc.Value, true, nil
}

// Set replaces (or inserts) the document for key.
func (r *mongoKVStore) Set(ctx context.Context, key string, value []byte) error {
	doc := kvDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		log.Printf("ERROR: Failed to write key '%s' to collection %s: %v", key, r.collection.Name(), err)
		return classifyWriteError(key, err)
	}
	return nil
}

// Remove deletes the document for key.
func (r *mongoKVStore) Remove(ctx context.Context, key string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return classifyWriteError(key, err)
	}
	return nil
}

func classifyWriteError(key string, err error) error {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		for _, code := range quotaErrorCodes {
			if serverErr.HasErrorCode(code) {
				return fmt.Errorf("%w: write %q: %v", storage.ErrQuotaExceeded, key, err)
			}
		}
	}
	return fmt.Errorf("%w: write %q: %v", storage.ErrUnavailable, key, err)
}
