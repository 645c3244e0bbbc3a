package songs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"songstream/models"
)

// ErrNotFound is returned when no song record matches the requested id.
var ErrNotFound = errors.New("song not found")

const collectionName = "songs"

// Repository persists song records in a MongoDB collection. Free-text search
// runs against a compound text index over title, artist and filename; the
// matching semantics are whatever $text gives us.
type Repository struct {
	coll *mongo.Collection
}

// NewRepository builds the repository and declares the text index. Index
// creation is idempotent, so repeated startups are harmless.
func NewRepository(ctx context.Context, db *mongo.Database) (*Repository, error) {
	coll := db.Collection(collectionName)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "artist", Value: "text"},
			{Key: "filename", Value: "text"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create text index: %w", err)
	}
	return &Repository{coll: coll}, nil
}

// Create inserts a new record, assigning its id and creation time. CreatedAt
// is immutable once set; nothing in this service ever updates a record.
func (r *Repository) Create(ctx context.Context, song models.Song) (models.Song, error) {
	song.ID = primitive.NewObjectID()
	song.CreatedAt = time.Now().UTC()
	if _, err := r.coll.InsertOne(ctx, song); err != nil {
		return models.Song{}, fmt.Errorf("insert song: %w", err)
	}
	return song, nil
}

// Find returns all records matching the query, newest first. An empty or
// whitespace-only query matches everything.
func (r *Repository) Find(ctx context.Context, query string) ([]models.Song, error) {
	opts := options.Find().SetSort(sortNewestFirst())
	cursor, err := r.coll.Find(ctx, searchFilter(query), opts)
	if err != nil {
		return nil, fmt.Errorf("find songs: %w", err)
	}

	results := []models.Song{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode songs: %w", err)
	}
	return results, nil
}

// GetByID looks up a single record, mapping the driver's no-documents case
// to ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (models.Song, error) {
	var song models.Song
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&song)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Song{}, ErrNotFound
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("find song %s: %w", id.Hex(), err)
	}
	return song, nil
}

func sortNewestFirst() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}}
}

func searchFilter(query string) bson.M {
	query = strings.TrimSpace(query)
	if query == "" {
		return bson.M{}
	}
	return bson.M{"$text": bson.M{"$search": query}}
}
