package content

import (
	"context"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoArchive stores tweets in a MongoDB collection, one document per
// tweet keyed by tweet ID.
type MongoArchive struct {
	coll *mongo.Collection
}

// NewMongoArchive uses dbName (default "tweetwall") and collName
// (default "tweets").
func NewMongoArchive(client *mongo.Client, dbName, collName string) *MongoArchive {
	if dbName == "" {
		dbName = "tweetwall"
	}
	if collName == "" {
		collName = "tweets"
	}
	return &MongoArchive{coll: client.Database(dbName).Collection(collName)}
}

// ConnectMongo connects to uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Store upserts t.
func (a *MongoArchive) Store(ctx context.Context, t Tweet) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := a.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t, options.Replace().SetUpsert(true))
	return err
}

// Recent returns up to limit tweets, oldest first.
func (a *MongoArchive) Recent(ctx context.Context, limit int) ([]Tweet, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := a.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tweets []Tweet
	for cur.Next(ctx) {
		var t Tweet
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		tweets = append(tweets, t)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(tweets)
	return tweets, nil
}

var _ Archive = (*MongoArchive)(nil)
