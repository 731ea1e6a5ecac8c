package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"NewsDesk/internal/domain"
)

// CreateSource inserts src with a fresh id.
func (s *Store) CreateSource(ctx context.Context, src domain.Source) (domain.Source, error) {
	now := s.now().UTC()
	src.CreatedAt, src.UpdatedAt = now, now
	res, err := s.db.Collection(collSources).InsertOne(ctx, sourceDoc{Source: src})
	if err != nil {
		return domain.Source{}, mapErr(err, "insert source")
	}
	src.ID = idHex(res.InsertedID)
	return src, nil
}

// GetSource returns the source or domain.ErrNotFound.
func (s *Store) GetSource(ctx context.Context, id string) (domain.Source, error) {
	oid, err := objectID(id, "source")
	if err != nil {
		return domain.Source{}, err
	}
	var doc sourceDoc
	if err := s.db.Collection(collSources).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Source{}, mapErr(err, "source "+id)
	}
	return doc.toDomain(), nil
}

// ListSources returns sources newest first.
func (s *Store) ListSources(ctx context.Context, filter domain.SourceFilter) ([]domain.Source, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "name", Value: 1}})
	cur, err := s.db.Collection(collSources).Find(ctx, query, opts)
	if err != nil {
		return nil, mapErr(err, "list sources")
	}
	return decodeAll(ctx, cur, sourceDoc.toDomain)
}

// UpdateSource replaces the editable fields of the stored source.
func (s *Store) UpdateSource(ctx context.Context, src domain.Source) (domain.Source, error) {
	oid, err := objectID(src.ID, "source")
	if err != nil {
		return domain.Source{}, err
	}
	update := bson.M{"$set": bson.M{
		"name":      src.Name,
		"url":       src.URL,
		"type":      src.Type,
		"isActive":  src.IsActive,
		"updatedAt": s.now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc sourceDoc
	if err := s.db.Collection(collSources).FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return domain.Source{}, mapErr(err, "source "+src.ID)
	}
	return doc.toDomain(), nil
}

// DeleteSource removes the source; articles are left in place.
func (s *Store) DeleteSource(ctx context.Context, id string) error {
	oid, err := objectID(id, "source")
	if err != nil {
		return err
	}
	res, err := s.db.Collection(collSources).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapErr(err, "delete source")
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateFetchStatus overwrites the fetchStatus sub-document.
func (s *Store) UpdateFetchStatus(ctx context.Context, id string, status domain.FetchStatus) error {
	oid, err := objectID(id, "source")
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"fetchStatus": status, "updatedAt": s.now().UTC()}}
	res, err := s.db.Collection(collSources).UpdateByID(ctx, oid, update)
	if err != nil {
		return mapErr(err, "update fetch status")
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
