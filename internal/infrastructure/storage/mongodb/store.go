package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

const (
	collSources     = "sources"
	collArticles    = "articles"
	collFetchLogs   = "fetchlogs"
	collCatLogs     = "categorizationlogs"
	collCorrections = "categorycorrections"
)

// Store is the document-store adapter backing every repository port.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.Store = (*Store)(nil)

// NewRegistry returns a bson registry that falls back to json tags, so the
// domain types persist with the same camelCase keys they serialize with.
func NewRegistry() (*bsoncodec.Registry, error) {
	codec, err := bsoncodec.NewStructCodec(bsoncodec.JSONFallbackStructTagParser)
	if err != nil {
		return nil, fmt.Errorf("build struct codec: %w", err)
	}
	reg := bson.NewRegistry()
	reg.RegisterKindEncoder(reflect.Struct, codec)
	reg.RegisterKindDecoder(reflect.Struct, codec)
	return reg, nil
}

// Open connects to uri, selects database and ensures indexes exist.
func Open(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetRegistry(reg))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database), logger: logger.With("component", "mongo"), now: time.Now}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	s.logger.Info("connected", "database", database)
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		collArticles: {
			{Keys: bson.D{{Key: "link", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "guid", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "categorization.status", Value: 1}}},
			{Keys: bson.D{{Key: "publishedDate", Value: -1}}},
		},
		collSources: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collFetchLogs: {
			{Keys: bson.D{{Key: "jobId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "startTime", Value: -1}}},
			{Keys: bson.D{{Key: "jobType", Value: 1}, {Key: "startTime", Value: -1}}},
		},
		collCatLogs: {
			{Keys: bson.D{{Key: "startTime", Value: -1}}},
		},
		collCorrections: {
			{Keys: bson.D{{Key: "correctedAt", Value: -1}}},
		},
	}
}

// EnsureIndexes creates the indexes every query relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for coll, models := range indexModels() {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// mapErr translates driver errors into domain sentinels.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", what, domain.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// objectID parses a hex id; malformed ids cannot exist and report not found.
func objectID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return oid, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// decodeAll drains cur through conv.
func decodeAll[D any, T any](ctx context.Context, cur *mongo.Cursor, conv func(D) T) ([]T, error) {
	defer cur.Close(ctx)
	var out []T
	for cur.Next(ctx) {
		var d D
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, conv(d))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return out, nil
}

func idHex(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}
