package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// Mongo implements Store on a MongoDB database. Documents are keyed by
// the user's identity id in the _id field.
type Mongo struct {
	client *mongo.Client
	db     string
	log    *zap.Logger
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri, database string, log *zap.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Info("mongodb connected")
	return &Mongo{client: client, db: database, log: log}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) col(collection string) *mongo.Collection {
	return m.client.Database(m.db).Collection(collection)
}

func (m *Mongo) Get(ctx context.Context, collection, id string, out any) (bool, error) {
	err := m.col(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (m *Mongo) Set(ctx context.Context, collection, id string, doc any) error {
	raw, err := toDocument(doc)
	if err != nil {
		return err
	}
	raw["_id"] = id
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col(collection).ReplaceOne(ctx, bson.M{"_id": id}, raw, opts); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	res, err := m.col(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) AppendToArrayField(ctx context.Context, collection, id, field string, value any) error {
	res, err := m.col(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("append %s/%s.%s: %w", collection, id, field, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) IncrementNumericField(ctx context.Context, collection, id, field string, delta int64) error {
	res, err := m.col(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// toDocument normalizes any value into a bson.M through a marshal round
// trip so _id can be injected.
func toDocument(doc any) (bson.M, error) {
	b, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return m, nil
}
