package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"NewsDesk/internal/domain"
)

// ExistsByLinkOrGUID reports whether an article with link, or with a
// non-empty guid, is stored.
func (s *Store) ExistsByLinkOrGUID(ctx context.Context, link, guid string) (bool, error) {
	n, err := s.db.Collection(collArticles).CountDocuments(ctx, existsFilter(link, guid), options.Count().SetLimit(1))
	if err != nil {
		return false, mapErr(err, "check article")
	}
	return n > 0, nil
}

// InsertArticle stores a new article. The unique link and guid indexes turn
// collisions into domain.ErrDuplicate.
func (s *Store) InsertArticle(ctx context.Context, a domain.Article) (domain.Article, error) {
	res, err := s.db.Collection(collArticles).InsertOne(ctx, articleDoc{Article: a})
	if err != nil {
		return domain.Article{}, mapErr(err, "insert article")
	}
	a.ID = idHex(res.InsertedID)
	return a, nil
}

// GetArticle returns the article or domain.ErrNotFound.
func (s *Store) GetArticle(ctx context.Context, id string) (domain.Article, error) {
	oid, err := objectID(id, "article")
	if err != nil {
		return domain.Article{}, err
	}
	var doc articleDoc
	if err := s.db.Collection(collArticles).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Article{}, mapErr(err, "article "+id)
	}
	return doc.toDomain(), nil
}

// ListArticles returns one page newest fetched first and the total match count.
func (s *Store) ListArticles(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, int, error) {
	coll := s.db.Collection(collArticles)
	query := articleFilter(f)

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mapErr(err, "count articles")
	}

	opts := options.Find().SetSort(bson.D{{Key: "fetchedAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	cur, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, mapErr(err, "list articles")
	}
	articles, err := decodeAll(ctx, cur, articleDoc.toDomain)
	if err != nil {
		return nil, 0, err
	}
	return articles, int(total), nil
}

// ListPending returns up to limit pending articles, most recently published
// first; undated articles sort last.
func (s *Store) ListPending(ctx context.Context, limit int) ([]domain.Article, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "publishedDate", Value: -1}, {Key: "fetchedAt", Value: -1}}).
		SetLimit(int64(max(limit, 0)))
	query := bson.M{"categorization.status": domain.CategorizationPending}
	cur, err := s.db.Collection(collArticles).Find(ctx, query, opts)
	if err != nil {
		return nil, mapErr(err, "list pending")
	}
	return decodeAll(ctx, cur, articleDoc.toDomain)
}

// MarkCategorization sets the status on every listed article.
func (s *Store) MarkCategorization(ctx context.Context, ids []string, status domain.CategorizationStatus) error {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil
	}
	_, err := s.db.Collection(collArticles).UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": oids}},
		bson.M{"$set": bson.M{"categorization.status": status}})
	return mapErr(err, "mark categorization")
}

// SaveCategorization overwrites the categorization sub-document.
func (s *Store) SaveCategorization(ctx context.Context, id string, c domain.Categorization) error {
	oid, err := objectID(id, "article")
	if err != nil {
		return err
	}
	res, err := s.db.Collection(collArticles).UpdateByID(ctx, oid, bson.M{"$set": bson.M{"categorization": c}})
	if err != nil {
		return mapErr(err, "save categorization")
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteArticles removes the ids that exist and returns them.
func (s *Store) DeleteArticles(ctx context.Context, ids []string) ([]domain.Article, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	coll := s.db.Collection(collArticles)
	query := bson.M{"_id": bson.M{"$in": oids}}

	cur, err := coll.Find(ctx, query)
	if err != nil {
		return nil, mapErr(err, "find articles")
	}
	deleted, err := decodeAll(ctx, cur, articleDoc.toDomain)
	if err != nil {
		return nil, err
	}
	if _, err := coll.DeleteMany(ctx, query); err != nil {
		return nil, mapErr(err, "delete articles")
	}
	return deleted, nil
}
