package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventsapi/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection holding event documents.
const CollectionName = "events"

// eventDocument is the stored shape of an event.
type eventDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Type        string             `bson:"type"`
	Name        string             `bson:"name"`
	Tagline     string             `bson:"tagline"`
	Schedule    time.Time          `bson:"schedule"`
	Description string             `bson:"description"`
	Files       *filesDocument     `bson:"files"`
	Moderator   string             `bson:"moderator"`
	Category    string             `bson:"category"`
	SubCategory string             `bson:"sub_category"`
	RigorRank   int                `bson:"rigor_rank"`
	Attendees   []string           `bson:"attendees"`
}

type filesDocument struct {
	Image string `bson:"image"`
}

func toDocument(e *domain.Event) eventDocument {
	doc := eventDocument{
		Type:        e.Type,
		Name:        e.Name,
		Tagline:     e.Tagline,
		Schedule:    e.Schedule.UTC(),
		Description: e.Description,
		Moderator:   e.Moderator,
		Category:    e.Category,
		SubCategory: e.SubCategory,
		RigorRank:   e.RigorRank,
		Attendees:   e.Attendees,
	}
	if doc.Attendees == nil {
		doc.Attendees = []string{}
	}
	if e.Files != nil {
		doc.Files = &filesDocument{Image: e.Files.Image}
	}
	return doc
}

func (d eventDocument) toDomain() *domain.Event {
	e := &domain.Event{
		ID:          d.ID.Hex(),
		Type:        d.Type,
		Name:        d.Name,
		Tagline:     d.Tagline,
		Schedule:    d.Schedule.UTC(),
		Description: d.Description,
		Moderator:   d.Moderator,
		Category:    d.Category,
		SubCategory: d.SubCategory,
		RigorRank:   d.RigorRank,
		Attendees:   d.Attendees,
	}
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	if d.Files != nil {
		e.Files = &domain.EventFiles{Image: d.Files.Image}
	}
	return e
}

type eventRepository struct {
	coll *mongo.Collection
}

func NewEventRepository(db *mongo.Database) domain.EventRepository {
	return &eventRepository{
		coll: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the schedule index backing the latest listing.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "schedule", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("schedule_desc_id_desc"),
	})
	return err
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	res, err := r.coll.InsertOne(ctx, toDocument(e))
	if err != nil {
		return err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	e.ID = oid.Hex()
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	var doc eventDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *eventRepository) ListLatest(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, latestFindOptions(params))
	if err != nil {
		return nil, err
	}
	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	events := make([]*domain.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toDomain())
	}
	return events, nil
}

// latestFindOptions orders by schedule, newest first. _id breaks ties so pages never overlap.
func latestFindOptions(params domain.PaginationParams) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "schedule", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(params.Offset())).
		SetLimit(int64(params.PageSize))
}

func (r *eventRepository) Update(ctx context.Context, id string, u domain.EventUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	if u.IsEmpty() {
		// $set must not be empty; only report whether the record exists
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updateSet(u)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func updateSet(u domain.EventUpdate) bson.D {
	var set bson.D
	if u.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *u.Name})
	}
	if u.Tagline != nil {
		set = append(set, bson.E{Key: "tagline", Value: *u.Tagline})
	}
	if u.Schedule != nil {
		set = append(set, bson.E{Key: "schedule", Value: u.Schedule.UTC()})
	}
	if u.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *u.Description})
	}
	if u.Files != nil {
		set = append(set, bson.E{Key: "files", Value: filesDocument{Image: u.Files.Image}})
	}
	if u.Moderator != nil {
		set = append(set, bson.E{Key: "moderator", Value: *u.Moderator})
	}
	if u.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *u.Category})
	}
	if u.SubCategory != nil {
		set = append(set, bson.E{Key: "sub_category", Value: *u.SubCategory})
	}
	if u.RigorRank != nil {
		set = append(set, bson.E{Key: "rigor_rank", Value: *u.RigorRank})
	}
	return set
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
