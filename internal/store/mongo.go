package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the MongoDB-backed document store.
type MongoStore struct {
	client    *mongo.Client
	documents *mongo.Collection
	reports   *mongo.Collection
}

// OpenMongo connects to MongoDB and binds the document and report collections.
func OpenMongo(ctx context.Context, uri, database, documentsColl, reportsColl string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:    client,
		documents: db.Collection(documentsColl),
		reports:   db.Collection(reportsColl),
	}, nil
}

// mongoDocument mirrors the shape the scraper writes. Unknown fields are
// ignored on decode.
type mongoDocument struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"title,omitempty"`
	Source      string              `bson:"source,omitempty"`
	Content     string              `bson:"content,omitempty"`
	ScrapedDate string              `bson:"scraped_date,omitempty"`
	Upvotes     *int                `bson:"upvotes,omitempty"`
	Comments    *int                `bson:"comments,omitempty"`
	Tags        []string            `bson:"tags,omitempty"`
	Sentiment   SentimentAnnotation `bson:"sentiment_analysis,omitempty"`
}

func (m mongoDocument) toDocument() Document {
	return Document{
		ID:          m.ID.Hex(),
		Title:       m.Title,
		Source:      m.Source,
		Content:     m.Content,
		ScrapedDate: m.ScrapedDate,
		Upvotes:     m.Upvotes,
		Comments:    m.Comments,
		Tags:        m.Tags,
		Sentiment:   m.Sentiment,
	}
}

// QueryWindow returns documents with scraped_date in [from, to).
func (s *MongoStore) QueryWindow(ctx context.Context, from, to time.Time) ([]Document, error) {
	filter := bson.M{
		"scraped_date": bson.M{
			"$gte": isoFormat(from),
			"$lt":  isoFormat(to),
		},
	}
	return s.find(ctx, filter)
}

// QueryAll returns the entire document collection.
func (s *MongoStore) QueryAll(ctx context.Context) ([]Document, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]Document, error) {
	cursor, err := s.documents.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer cursor.Close(ctx)

	var raw []mongoDocument
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}

	docs := make([]Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, m.toDocument())
	}
	return docs, nil
}

// UpsertReport inserts or overwrites the report keyed by its date.
func (s *MongoStore) UpsertReport(ctx context.Context, r Report) error {
	date := MidnightUTC(r.Date)
	_, err := s.reports.UpdateOne(ctx,
		bson.M{"date": date},
		bson.M{"$set": bson.M{
			"date":         date,
			"summary":      r.Summary,
			"articles":     r.Articles,
			"generated_at": r.GeneratedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upserting report: %w", err)
	}
	return nil
}

// GetReport returns the report for a date, or nil if none exists.
func (s *MongoStore) GetReport(ctx context.Context, date time.Time) (*Report, error) {
	var r Report
	err := s.reports.FindOne(ctx, bson.M{"date": MidnightUTC(date)}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}
	return &r, nil
}

// ListReports returns all reports, newest first.
func (s *MongoStore) ListReports(ctx context.Context) ([]Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.reports.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decoding reports: %w", err)
	}
	return reports, nil
}

// Stats returns corpus and report counts plus the scraped_date range.
func (s *MongoStore) Stats(ctx context.Context) (*Stats, error) {
	docs, err := s.documents.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	reports, err := s.reports.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("counting reports: %w", err)
	}

	st := &Stats{Documents: docs, Reports: reports}
	if docs > 0 {
		cursor, err := s.documents.Aggregate(ctx, mongo.Pipeline{
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "earliest", Value: bson.D{{Key: "$min", Value: "$scraped_date"}}},
				{Key: "latest", Value: bson.D{{Key: "$max", Value: "$scraped_date"}}},
			}}},
		})
		if err != nil {
			return nil, fmt.Errorf("aggregating scraped_date range: %w", err)
		}
		defer cursor.Close(ctx)

		var ranges []struct {
			Earliest string `bson:"earliest"`
			Latest   string `bson:"latest"`
		}
		if err := cursor.All(ctx, &ranges); err != nil {
			return nil, fmt.Errorf("decoding scraped_date range: %w", err)
		}
		if len(ranges) > 0 {
			st.EarliestScraped = ranges[0].Earliest
			st.LatestScraped = ranges[0].Latest
		}
	}
	return st, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
