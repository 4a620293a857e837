package repository

import (
	"context"

	"github.com/angleinstitute/backend/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCourseRepository is the MongoDB implementation of CourseRepository.
type MongoCourseRepository struct {
	coll *mongo.Collection
}

// NewMongoCourseRepository creates a MongoCourseRepository on db.
func NewMongoCourseRepository(db *mongo.Database) *MongoCourseRepository {
	return &MongoCourseRepository{coll: db.Collection(coursesCollection)}
}

var _ CourseRepository = (*MongoCourseRepository)(nil)

func (r *MongoCourseRepository) List(ctx context.Context) ([]*model.Course, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	var courses []*model.Course
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *MongoCourseRepository) FindBySlug(ctx context.Context, slug string) (*model.Course, error) {
	var c model.Course
	if err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&c); err != nil {
		return nil, mongoErr(err)
	}
	return &c, nil
}

func (r *MongoCourseRepository) Create(ctx context.Context, c *model.Course) error {
	_, err := r.coll.InsertOne(ctx, c)
	return mongoErr(err)
}

func (r *MongoCourseRepository) Upsert(ctx context.Context, c *model.Course) error {
	update := bson.M{
		"$set": bson.M{
			"title":       c.Title,
			"description": c.Description,
			"image":       c.Image,
			"duration":    c.Duration,
			"level":       c.Level,
			"price":       c.Price,
			"updatedAt":   c.UpdatedAt,
		},
		"$setOnInsert": bson.M{"_id": c.ID, "createdAt": c.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	return mongoErr(r.coll.FindOneAndUpdate(ctx, bson.M{"slug": c.Slug}, update, opts).Decode(c))
}

func (r *MongoCourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
