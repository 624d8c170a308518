package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopping-matrix/internal/domain"
)

const (
	DefaultListLimit   = 20
	DefaultCursorLimit = 5
	MaxLimit           = 100
)

var (
	ErrInvalidCollection = errors.New("invalid collection name")
	ErrInvalidID         = errors.New("invalid document id")
)

// Connect opens a client and verifies connectivity with a ping. Nested
// documents decode as maps so they render as plain JSON objects.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Store is a thin CRUD layer over arbitrary collections.
type Store struct {
	db     *mongo.Database
	logger *log.Logger
	now    func() time.Time
}

func New(db *mongo.Database, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{db: db, logger: logger, now: time.Now}
}

// Page is one slice of a cursor listing. NextCursor is empty on the last page.
type Page struct {
	Documents  []bson.M `json:"documents"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

func (s *Store) collection(name string) (*mongo.Collection, error) {
	if name == "" || strings.ContainsAny(name, "$\x00") || strings.HasPrefix(name, "system.") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return s.db.Collection(name), nil
}

func objectID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

func clampLimit(limit, fallback int64) int64 {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Create inserts doc with a createdAt stamp and returns the new id.
func (s *Store) Create(ctx context.Context, coll string, doc bson.M) (string, error) {
	c, err := s.collection(coll)
	if err != nil {
		return "", err
	}
	insert := make(bson.M, len(doc)+1)
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		insert[k] = v
	}
	insert["createdAt"] = s.now().UTC()

	res, err := c.InsertOne(ctx, insert)
	if err != nil {
		s.logger.Printf("docstore: create collection=%s error=%v", coll, err)
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprint(res.InsertedID), nil
	}
	s.logger.Printf("docstore: created collection=%s id=%s", coll, id.Hex())
	return id.Hex(), nil
}

// List returns the newest documents first.
func (s *Store) List(ctx context.Context, coll string, limit int64) ([]bson.M, error) {
	c, err := s.collection(coll)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(clampLimit(limit, DefaultListLimit))
	cur, err := c.Find(ctx, bson.D{}, opts)
	if err != nil {
		s.logger.Printf("docstore: list collection=%s error=%v", coll, err)
		return nil, err
	}
	docs := []bson.M{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Cursor pages through a collection by descending _id. An empty lastID starts
// from the newest document.
func (s *Store) Cursor(ctx context.Context, coll, lastID string, limit int64) (Page, error) {
	c, err := s.collection(coll)
	if err != nil {
		return Page{}, err
	}
	filter := bson.M{}
	if lastID != "" {
		id, err := objectID(lastID)
		if err != nil {
			return Page{}, err
		}
		filter["_id"] = bson.M{"$lt": id}
	}
	limit = clampLimit(limit, DefaultCursorLimit)
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		s.logger.Printf("docstore: cursor collection=%s last_id=%s error=%v", coll, lastID, err)
		return Page{}, err
	}
	page := Page{Documents: []bson.M{}}
	if err := cur.All(ctx, &page.Documents); err != nil {
		return Page{}, err
	}
	if int64(len(page.Documents)) == limit {
		if id, ok := page.Documents[len(page.Documents)-1]["_id"].(primitive.ObjectID); ok {
			page.NextCursor = id.Hex()
		}
	}
	return page, nil
}

// Update applies set to the document and stamps updatedAt. It returns the
// number of modified documents; an unknown id is ErrNotFound.
func (s *Store) Update(ctx context.Context, coll, id string, set bson.M) (int64, error) {
	c, err := s.collection(coll)
	if err != nil {
		return 0, err
	}
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}
	fields := make(bson.M, len(set)+1)
	for k, v := range set {
		if k == "_id" || k == "createdAt" {
			continue
		}
		fields[k] = v
	}
	fields["updatedAt"] = s.now().UTC()

	res, err := c.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		s.logger.Printf("docstore: update collection=%s id=%s error=%v", coll, id, err)
		return 0, err
	}
	if res.MatchedCount == 0 {
		return 0, domain.ErrNotFound
	}
	return res.ModifiedCount, nil
}

// Delete removes the document; an unknown id is ErrNotFound.
func (s *Store) Delete(ctx context.Context, coll, id string) (int64, error) {
	c, err := s.collection(coll)
	if err != nil {
		return 0, err
	}
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}
	res, err := c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		s.logger.Printf("docstore: delete collection=%s id=%s error=%v", coll, id, err)
		return 0, err
	}
	if res.DeletedCount == 0 {
		return 0, domain.ErrNotFound
	}
	s.logger.Printf("docstore: deleted collection=%s id=%s", coll, id)
	return res.DeletedCount, nil
}
