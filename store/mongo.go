package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoRecord keeps the definition as JSON string,
// the JSON schema keys like `$ref` are not valid BSON field names.
type mongoRecord struct {
	Name       string    `bson:"name"`
	Definition string    `bson:"definition"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// Mongo persists the function records in a MongoDB collection.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	owned      bool
}

// OpenMongo connects to MongoDB, the store owns the client.
func OpenMongo(ctx context.Context, connString, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connString))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "failed to ping MongoDB")
	}

	m, err := NewMongo(ctx, client, database, collection)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	m.owned = true
	return m, nil
}

// NewMongo returns the store over the client,
// and ensures the unique index on the function name.
func NewMongo(ctx context.Context, client *mongo.Client, database, collection string) (*Mongo, error) {
	if database == "" || collection == "" {
		return nil, errors.New("database and collection names are required")
	}

	coll := client.Database(database).Collection(collection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create index")
	}

	logger.KV(xlog.INFO,
		"status", "opened",
		"store", "mongodb",
		"database", database,
		"collection", collection,
	)

	return &Mongo{
		client:     client,
		collection: coll,
	}, nil
}

func (s *Mongo) Kind() string {
	return "mongodb"
}

func (s *Mongo) Put(ctx context.Context, rec *FunctionRecord) error {
	if err := checkRecord(rec); err != nil {
		return err
	}

	def, err := json.Marshal(rec.Definition)
	if err != nil {
		return errors.Wrapf(err, "failed to encode function %q", rec.Name)
	}

	doc := &mongoRecord{
		Name:       rec.Name,
		Definition: string(def),
		UpdatedAt:  updatedAt(rec),
	}
	_, err = s.collection.ReplaceOne(ctx,
		bson.M{"name": rec.Name},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to store function %q", rec.Name)
	}
	return nil
}

func (s *Mongo) Get(ctx context.Context, name string) (*FunctionRecord, error) {
	var doc mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.Wrapf(ErrNotFound, "function %q", name)
		}
		return nil, errors.Wrapf(err, "failed to get function %q", name)
	}
	return doc.toRecord()
}

func (s *Mongo) List(ctx context.Context) ([]*FunctionRecord, error) {
	cur, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list functions")
	}

	var docs []mongoRecord
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "failed to list functions")
	}

	res := make([]*FunctionRecord, 0, len(docs))
	for i := range docs {
		rec, err := docs[i].toRecord()
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, nil
}

func (s *Mongo) Delete(ctx context.Context, name string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return errors.Wrapf(err, "failed to delete function %q", name)
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(ErrNotFound, "function %q", name)
	}
	return nil
}

// Close disconnects the client, if the store owns it.
func (s *Mongo) Close() error {
	if s == nil || !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (d *mongoRecord) toRecord() (*FunctionRecord, error) {
	rec := &FunctionRecord{
		Name:      d.Name,
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(d.Definition), &rec.Definition); err != nil {
		return nil, errors.Wrapf(err, "failed to decode function %q", d.Name)
	}
	return rec, nil
}
