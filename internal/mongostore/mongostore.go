// Package mongostore implements the catalog stores on MongoDB. Each entity
// lives in its own collection; references are stored as ObjectIDs and are
// never enforced by the database.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aoideee/locallibrary/internal/data"
)

// Collection names.
const (
	BooksCollection         = "books"
	AuthorsCollection       = "authors"
	GenresCollection        = "genres"
	BookInstancesCollection = "bookinstances"
)

// caseInsensitive compares strings ignoring case. Strength 2 still tells
// diacritics apart.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// Connect opens a client for uri and pings the primary before returning.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewModels returns Models backed by the collections of db.
func NewModels(db *mongo.Database) data.Models {
	return data.Models{
		Books:         BookModel{c: newCollection(db.Collection(BooksCollection), bookFromDoc, "title")},
		Authors:       AuthorModel{c: newCollection(db.Collection(AuthorsCollection), authorFromDoc, "family_name")},
		Genres:        GenreModel{c: newCollection(db.Collection(GenresCollection), genreFromDoc, "name")},
		BookInstances: BookInstanceModel{c: newCollection(db.Collection(BookInstancesCollection), instanceFromDoc, "due_back")},
	}
}

// EnsureIndexes creates the indexes the dependent lookups rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		BooksCollection: {
			{Keys: bson.D{{Key: "author", Value: 1}}},
			{Keys: bson.D{{Key: "genre", Value: 1}}},
			{Keys: bson.D{{Key: "isbn", Value: 1}}, Options: options.Index().SetCollation(caseInsensitive)},
		},
		GenresCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetCollation(caseInsensitive)},
		},
		BookInstancesCollection: {
			{Keys: bson.D{{Key: "book", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

// objectID parses a hex id. Ids that are not ObjectIDs cannot match any
// document, so they are reported as ErrRecordNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, data.ErrRecordNotFound
	}
	return oid, nil
}

// reference parses a foreign id that is about to be written.
func reference(field, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s reference %q is not an object id", field, id)
	}
	return oid, nil
}

// collection wraps the read paths shared by every model. D is the stored
// document shape, T the data type handed to callers.
type collection[D any, T any] struct {
	coll         *mongo.Collection
	toModel      func(*D) *T
	fallbackSort string
}

func newCollection[D any, T any](coll *mongo.Collection, toModel func(*D) *T, fallbackSort string) collection[D, T] {
	return collection[D, T]{coll: coll, toModel: toModel, fallbackSort: fallbackSort}
}

func (c collection[D, T]) findOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) (*T, error) {
	var doc D
	err := c.coll.FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, data.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find one in %s: %w", c.coll.Name(), err)
	}
	return c.toModel(&doc), nil
}

func (c collection[D, T]) get(ctx context.Context, id string) (*T, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return c.findOne(ctx, bson.M{"_id": oid})
}

func (c collection[D, T]) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]*T, error) {
	cur, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}
	defer cur.Close(ctx)

	out := []*T{}
	for cur.Next(ctx) {
		var doc D
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", c.coll.Name(), err)
		}
		out = append(out, c.toModel(&doc))
	}
	return out, cur.Err()
}

// list runs an unfiltered, sorted and paginated find.
func (c collection[D, T]) list(ctx context.Context, f data.Filters) ([]*T, data.Metadata, error) {
	total, err := c.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, data.Metadata{}, fmt.Errorf("count %s: %w", c.coll.Name(), err)
	}

	dir := 1
	if f.Descending() {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: f.SortField(c.fallbackSort), Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset()))
	if f.Limit() > 0 {
		opts.SetLimit(int64(f.Limit()))
	}

	items, err := c.find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return items, data.CalculateMetadata(int(total), f.Page, f.PageSize), nil
}

func (c collection[D, T]) count(ctx context.Context, filter any) (int, error) {
	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.coll.Name(), err)
	}
	return int(n), nil
}

// set applies fields to one document and stamps updated_at.
func (c collection[D, T]) set(ctx context.Context, id string, fields bson.M) (time.Time, error) {
	oid, err := objectID(id)
	if err != nil {
		return time.Time{}, err
	}
	now := time.Now().UTC()
	fields["updated_at"] = now

	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return time.Time{}, fmt.Errorf("update %s %s: %w", c.coll.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return time.Time{}, data.ErrRecordNotFound
	}
	return now, nil
}

func (c collection[D, T]) insert(ctx context.Context, doc *D) (primitive.ObjectID, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert into %s: %w", c.coll.Name(), err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert into %s: unexpected id type %T", c.coll.Name(), res.InsertedID)
	}
	return oid, nil
}

func (c collection[D, T]) delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return data.ErrRecordNotFound
	}
	return nil
}
