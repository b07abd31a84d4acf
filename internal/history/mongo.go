package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// nullCity matches records without a usable city name.
var nullCity = bson.D{{Key: "city", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}}}

// ConnectMongo connects to uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(ctxTimeout, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// MongoStore is a Store backed by a MongoDB collection. Aggregates run as pipelines on the server.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore opens the collection and ensures its indexes exist.
func NewMongoStore(ctx context.Context, client *mongo.Client, database, collection string) (*MongoStore, error) {
	coll := client.Database(database).Collection(collection)

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "coordinates.lat", Value: 1}, {Key: "coordinates.lon", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return &MongoStore{coll: coll}, nil
}

func (s *MongoStore) Insert(ctx context.Context, rec Record) error {
	_, err := s.coll.InsertOne(ctx, rec)
	return err
}

func (s *MongoStore) List(ctx context.Context, skip, limit int) ([]Record, int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	records := []Record{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}

	total, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *MongoStore) CitySummaries(ctx context.Context) ([]CitySummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$city"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avgTemp", Value: bson.D{{Key: "$avg", Value: "$temperature"}}},
			{Key: "lastRequest", Value: bson.D{{Key: "$max", Value: "$date"}}},
			{Key: "firstRequest", Value: bson.D{{Key: "$min", Value: "$date"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	out := []CitySummary{}
	if err := s.aggregate(ctx, pipeline, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) CityStats(ctx context.Context, city string, since time.Time) (CityStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: cityWindow(city, since)}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$city"},
			{Key: "avgTemp", Value: bson.D{{Key: "$avg", Value: "$temperature"}}},
			{Key: "maxTemp", Value: bson.D{{Key: "$max", Value: "$temperature"}}},
			{Key: "minTemp", Value: bson.D{{Key: "$min", Value: "$temperature"}}},
			{Key: "avgHumidity", Value: bson.D{{Key: "$avg", Value: "$humidity"}}},
			{Key: "avgPressure", Value: bson.D{{Key: "$avg", Value: "$pressure"}}},
			{Key: "avgWindSpeed", Value: bson.D{{Key: "$avg", Value: "$wind_speed"}}},
			{Key: "totalRequests", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "descriptions", Value: bson.D{{Key: "$push", Value: "$description"}}},
		}}},
	}

	var out []CityStats
	if err := s.aggregate(ctx, pipeline, &out); err != nil {
		return CityStats{}, err
	}
	if len(out) == 0 {
		return CityStats{}, nil
	}
	st := out[0]
	st.MostCommonDescription = mostCommon(st.Descriptions)
	return st, nil
}

func (s *MongoStore) Trends(ctx context.Context, city string, since time.Time) ([]TrendPoint, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: cityWindow(city, since)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$date"},
			}}}},
			{Key: "avgTemp", Value: bson.D{{Key: "$avg", Value: "$temperature"}}},
			{Key: "maxTemp", Value: bson.D{{Key: "$max", Value: "$temperature"}}},
			{Key: "minTemp", Value: bson.D{{Key: "$min", Value: "$temperature"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	out := []TrendPoint{}
	if err := s.aggregate(ctx, pipeline, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) Popular(ctx context.Context, limit int) ([]PopularCity, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "city", Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "lat", Value: "$coordinates.lat"}, {Key: "lon", Value: "$coordinates.lon"}}},
			{Key: "names", Value: bson.D{{Key: "$push", Value: "$city"}}},
			{Key: "requests", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "country", Value: bson.D{{Key: "$first", Value: "$country"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "coordinates", Value: "$_id"},
			{Key: "city", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$names", 0}}}},
			{Key: "allNames", Value: "$names"},
			{Key: "requests", Value: 1},
			{Key: "country", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "requests", Value: -1}, {Key: "city", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	out := []PopularCity{}
	if err := s.aggregate(ctx, pipeline, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].AllNames = unique(out[i].AllNames)
	}
	return out, nil
}

func (s *MongoStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: "date", Value: bson.D{{Key: "$lt", Value: cutoff}}}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) DeleteNullCities(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, nullCity)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) FixNullCities(ctx context.Context) (int64, error) {
	filter := append(bson.D{}, nullCity...)
	filter = append(filter, bson.E{Key: "originalQuery", Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}})
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "city", Value: "$originalQuery"}}}},
	}

	res, err := s.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func cityWindow(city string, since time.Time) bson.D {
	return bson.D{
		{Key: "city", Value: city},
		{Key: "date", Value: bson.D{{Key: "$gte", Value: since}}},
	}
}

var _ Store = (*MongoStore)(nil)
