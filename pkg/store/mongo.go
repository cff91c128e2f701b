package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string // defaults to mongodb://localhost:27017
	Database   string // defaults to "hiernet"
	Collection string // defaults to "documents"
}

// MongoStore keeps each document as one record keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoRecord struct {
	Name      string    `bson:"_id"`
	Data      []byte    `bson:"data,omitempty"`
	Size      int       `bson:"size"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		opts.URI = "mongodb://localhost:27017"
	}
	if opts.Database == "" {
		opts.Database = "hiernet"
	}
	if opts.Collection == "" {
		opts.Collection = "documents"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "mongo uri %s", opts.URI)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	return &MongoStore{client: client, coll: client.Database(opts.Database).Collection(opts.Collection)}, nil
}

func (s *MongoStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}
	var rec mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load %s", name)
	}
	return rec.Data, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	rec := mongoRecord{Name: name, Data: data, Size: len(data), UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "save %s", name)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete %s", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list documents")
	}
	var recs []mongoRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list documents")
	}
	out := make([]Info, len(recs))
	for i, r := range recs {
		out[i] = Info{Name: r.Name, Size: r.Size, UpdatedAt: r.UpdatedAt}
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
