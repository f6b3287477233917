// Package mongostore implements kaizen.Repository over a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kaizen/kaizen"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ kaizen.Repository = (*Store)(nil)

// DefaultCollection is the collection records live in.
const DefaultCollection = "kaizens"

// TimePrecision is the resolution of BSON datetimes.
const TimePrecision = time.Millisecond

// Store persists records as documents keyed by an ObjectID. Records carry
// the id as its hex string.
type Store struct {
	coll *mongo.Collection
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store over coll.
func New(coll *mongo.Collection, opts ...Option) *Store {
	s := &Store{coll: coll, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials uri and returns the client together with the records collection.
func Connect(ctx context.Context, uri, database, collection string) (*mongo.Client, *mongo.Collection, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryExternal, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryExternal, "ping mongodb")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return client, client.Database(database).Collection(collection), nil
}

// Migrate ensures the index List sorts on.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "create kaizens index")
	}
	return nil
}

// Create inserts record with a fresh id and both timestamps set. The
// timestamps are truncated to what the server keeps, so the returned record
// equals a later read.
func (s *Store) Create(ctx context.Context, record kaizen.Kaizen) (kaizen.Kaizen, error) {
	oid := primitive.NewObjectID()
	record = record.Clone()
	record.ID = oid.Hex()
	record.Stamp(s.stamp())

	doc, err := document(record, oid)
	if err != nil {
		return kaizen.Kaizen{}, err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return kaizen.Kaizen{}, goerrors.Wrap(err, goerrors.CategoryExternal, "insert kaizen")
	}
	return record, nil
}

func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(TimePrecision)
}

// document renders record as BSON with _id stored as an ObjectID.
func document(record kaizen.Kaizen, oid primitive.ObjectID) (bson.D, error) {
	raw, err := bson.Marshal(record)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "encode kaizen")
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "encode kaizen")
	}
	for i := range doc {
		if doc[i].Key == "_id" {
			doc[i].Value = oid
			return doc, nil
		}
	}
	return append(bson.D{{Key: "_id", Value: oid}}, doc...), nil
}

// objectID parses a record id. A malformed id is an internal error, the
// same class a failed cast gets from the store.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, goerrors.Wrap(err, goerrors.CategoryInternal, "malformed kaizen id").
			WithTextCode("MALFORMED_ID")
	}
	return oid, nil
}

// List returns every record in creation order.
func (s *Store) List(ctx context.Context) ([]kaizen.Kaizen, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "list kaizens")
	}
	records := []kaizen.Kaizen{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "decode kaizens")
	}
	for i := range records {
		normalize(&records[i])
	}
	return records, nil
}

// GetByID returns the record with id, or a not-found error.
func (s *Store) GetByID(ctx context.Context, id string) (kaizen.Kaizen, error) {
	oid, err := objectID(id)
	if err != nil {
		return kaizen.Kaizen{}, err
	}
	var record kaizen.Kaizen
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return kaizen.Kaizen{}, kaizen.NotFound(id)
	}
	if err != nil {
		return kaizen.Kaizen{}, goerrors.Wrap(err, goerrors.CategoryExternal, "get kaizen")
	}
	normalize(&record)
	return record, nil
}

// Update applies patch and returns the document as stored afterwards.
func (s *Store) Update(ctx context.Context, id string, patch kaizen.Patch) (kaizen.Kaizen, error) {
	set := SetDocument(patch)
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}

	oid, err := objectID(id)
	if err != nil {
		return kaizen.Kaizen{}, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var record kaizen.Kaizen
	err = s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return kaizen.Kaizen{}, kaizen.NotFound(id)
	}
	if err != nil {
		return kaizen.Kaizen{}, goerrors.Wrap(err, goerrors.CategoryExternal, "update kaizen")
	}
	normalize(&record)
	return record, nil
}

// SetDocument renders the non-nil fields of p as a $set body keyed by the
// stored field names.
func SetDocument(p kaizen.Patch) bson.D {
	set := bson.D{}
	str := func(field string, v *string) {
		if v != nil {
			set = append(set, bson.E{Key: field, Value: *v})
		}
	}
	str("status", p.Status)
	str("impact", p.Impact)
	str("benefitscore", p.BenefitScore)
	str("teamMembers", p.TeamMembers)
	str("implementationCost", p.ImplementationCost)
	str("annualSavings", p.AnnualSavings)
	str("implementedAction", p.ImplementedAction)
	str("other", p.Other)
	str("updatedImage", p.UpdatedImage)
	if p.Benefits != nil {
		benefits := []string(*p.Benefits)
		if benefits == nil {
			benefits = []string{}
		}
		set = append(set, bson.E{Key: "benefits", Value: benefits})
	}
	if p.UpdatedAt != nil {
		set = append(set, bson.E{Key: "updatedAt", Value: p.UpdatedAt.UTC()})
	}
	return set
}

// documents written by older clients may lack benefits entirely
func normalize(k *kaizen.Kaizen) {
	if k.Benefits == nil {
		k.Benefits = kaizen.Benefits{}
	}
	k.CreatedAt = k.CreatedAt.UTC()
	k.UpdatedAt = k.UpdatedAt.UTC()
}
