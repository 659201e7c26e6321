package mongodb

import (
	"context"
	"testing"
	"time"

	"eventsapi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testNS = "eventsDB.events"

func eventDoc(id primitive.ObjectID, name string, schedule time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "type", Value: "event"},
		{Key: "name", Value: name},
		{Key: "tagline", Value: "t"},
		{Key: "schedule", Value: primitive.NewDateTimeFromTime(schedule)},
		{Key: "description", Value: "d"},
		{Key: "files", Value: nil},
		{Key: "moderator", Value: "m"},
		{Key: "category", Value: "c"},
		{Key: "sub_category", Value: "s"},
		{Key: "rigor_rank", Value: int32(3)},
		{Key: "attendees", Value: bson.A{}},
	}
}

func TestEventRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewEventRepository(mt.DB)
		e := domain.NewEvent("Hack Day", "t", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "d", "m", "c", "s", 3)

		require.NoError(mt, repo.Create(ctx, e))
		assert.True(mt, domain.ValidID(e.ID))
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := NewEventRepository(mt.DB)
		e := domain.NewEvent("Hack Day", "t", time.Now(), "d", "m", "c", "s", 3)

		err := repo.Create(ctx, e)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "duplicate key")
		assert.Empty(mt, e.ID)
	})
}

func TestEventRepository_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	schedule := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mt.Run("found", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, eventDoc(oid, "Hack Day", schedule)))
		repo := NewEventRepository(mt.DB)

		e, err := repo.GetByID(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), e.ID)
		assert.Equal(mt, "event", e.Type)
		assert.Equal(mt, "Hack Day", e.Name)
		assert.Equal(mt, 3, e.RigorRank)
		assert.True(mt, schedule.Equal(e.Schedule))
		assert.Equal(mt, []string{}, e.Attendees)
		assert.Nil(mt, e.Files)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))
		repo := NewEventRepository(mt.DB)

		_, err := repo.GetByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		_, err := repo.GetByID(ctx, "xyz")
		assert.ErrorIs(mt, err, domain.ErrInvalidID)
	})
}

func TestEventRepository_ListLatest(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("returns batch in order", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch,
			eventDoc(a, "newer", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
			eventDoc(b, "older", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		))
		repo := NewEventRepository(mt.DB)

		events, err := repo.ListLatest(ctx, domain.PaginationParams{Page: 1, PageSize: 2})
		require.NoError(mt, err)
		require.Len(mt, events, 2)
		assert.Equal(mt, "newer", events[0].Name)
		assert.Equal(mt, "older", events[1].Name)
	})

	mt.Run("empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))
		repo := NewEventRepository(mt.DB)

		events, err := repo.ListLatest(ctx, domain.PaginationParams{Page: 3, PageSize: 5})
		require.NoError(mt, err)
		assert.NotNil(mt, events)
		assert.Empty(mt, events)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad skip",
		}))
		repo := NewEventRepository(mt.DB)

		_, err := repo.ListLatest(ctx, domain.PaginationParams{Page: 1, PageSize: 5})
		require.Error(mt, err)
	})
}

func TestEventRepository_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	name := "Hack Night"

	mt.Run("matched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		repo := NewEventRepository(mt.DB)

		require.NoError(mt, repo.Update(ctx, primitive.NewObjectID().Hex(), domain.EventUpdate{Name: &name}))
	})

	mt.Run("no match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		repo := NewEventRepository(mt.DB)

		err := repo.Update(ctx, primitive.NewObjectID().Hex(), domain.EventUpdate{Name: &name})
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})

	mt.Run("empty update on existing record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(1)}},
		))
		repo := NewEventRepository(mt.DB)

		require.NoError(mt, repo.Update(ctx, primitive.NewObjectID().Hex(), domain.EventUpdate{}))
	})

	mt.Run("empty update on missing record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))
		repo := NewEventRepository(mt.DB)

		err := repo.Update(ctx, primitive.NewObjectID().Hex(), domain.EventUpdate{})
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})
}

func TestEventRepository_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("deleted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		repo := NewEventRepository(mt.DB)
		require.NoError(mt, repo.Delete(ctx, primitive.NewObjectID().Hex()))
	})

	mt.Run("already gone", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		repo := NewEventRepository(mt.DB)
		assert.ErrorIs(mt, repo.Delete(ctx, primitive.NewObjectID().Hex()), domain.ErrNotFound)
	})
}

func TestUpdateSet(t *testing.T) {
	zero := 0
	name := "n"
	schedule := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	set := updateSet(domain.EventUpdate{
		Name:      &name,
		Schedule:  &schedule,
		RigorRank: &zero,
		Files:     &domain.EventFiles{Image: "uploads/1-a.png"},
	})

	keys := make([]string, 0, len(set))
	for _, e := range set {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"name", "schedule", "files", "rigor_rank"}, keys)
	assert.Equal(t, 0, set[3].Value)
	assert.Empty(t, updateSet(domain.EventUpdate{}))
}

func TestLatestFindOptions(t *testing.T) {
	opts := latestFindOptions(domain.PaginationParams{Page: 3, PageSize: 4})

	assert.Equal(t, bson.D{{Key: "schedule", Value: -1}, {Key: "_id", Value: -1}}, opts.Sort)
	require.NotNil(t, opts.Skip)
	assert.Equal(t, int64(8), *opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(4), *opts.Limit)
}
