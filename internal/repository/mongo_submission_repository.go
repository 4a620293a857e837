package repository

import (
	"context"
	"time"

	"github.com/angleinstitute/backend/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSubmissionRepository is the MongoDB implementation of SubmissionRepository.
// Documents are keyed by submissionId; _id is left to the driver.
type MongoSubmissionRepository struct {
	coll *mongo.Collection
}

// NewMongoSubmissionRepository creates a MongoSubmissionRepository on db.
func NewMongoSubmissionRepository(db *mongo.Database) *MongoSubmissionRepository {
	return &MongoSubmissionRepository{coll: db.Collection(submissionsCollection)}
}

var _ SubmissionRepository = (*MongoSubmissionRepository)(nil)

func (r *MongoSubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	_, err := r.coll.InsertOne(ctx, sub)
	return mongoErr(err)
}

func (r *MongoSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	var s model.Submission
	if err := r.coll.FindOne(ctx, bson.M{"submissionId": id}).Decode(&s); err != nil {
		return nil, mongoErr(err)
	}
	return &s, nil
}

func (r *MongoSubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error) {
	filter := bson.M{}
	if opts.Type != "" {
		filter["type"] = string(opts.Type)
	}
	if opts.FailedOnly {
		filter["emailSent"] = false
		filter["emailError"] = bson.M{"$exists": true}
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	var subs []*model.Submission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *MongoSubmissionRepository) update(ctx context.Context, id string, set bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"submissionId": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoSubmissionRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return r.update(ctx, id, bson.M{"emailSent": true, "sentAt": sentAt})
}

func (r *MongoSubmissionRepository) IncrementRetry(ctx context.Context, id string) (int, error) {
	var out struct {
		RetryCount int `bson:"retryCount"`
	}
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"submissionId": id},
		bson.M{"$inc": bson.M{"retryCount": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, mongoErr(err)
	}
	return out.RetryCount, nil
}

func (r *MongoSubmissionRepository) SetEmailError(ctx context.Context, id, reason string) error {
	return r.update(ctx, id, bson.M{"emailError": reason})
}

func (r *MongoSubmissionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"submissionId": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
