package store

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Document is one ingested, annotated unit of scraped content. Documents are
// produced by the upstream scraping system and are read-only here.
type Document struct {
	ID          string
	Title       string
	Source      string
	Content     string
	ScrapedDate string
	Upvotes     *int
	Comments    *int
	Tags        []string
	Sentiment   SentimentAnnotation
}

// scrapedLayouts are the timestamp layouts accepted for scraped_date.
// The scraper writes ISO-8601 strings; older rows sometimes carry only a date.
var scrapedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ScrapedTime parses the document's scraped_date. The second return value is
// false when the field is absent or unparseable; such documents are dropped
// from aggregation.
func (d Document) ScrapedTime() (time.Time, bool) {
	for _, layout := range scrapedLayouts {
		if t, err := time.Parse(layout, d.ScrapedDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SentimentScore is one labeled sentiment record.
type SentimentScore struct {
	Label string  `bson:"label" json:"label"`
	Score float64 `bson:"score,omitempty" json:"score,omitempty"`
}

// SentimentAnnotation is the polymorphic sentiment_analysis field. The
// annotation pipeline has produced two shapes over time:
//
//	newest: a non-empty array of {label, score} records
//	legacy: a single {aggregate: {label, score}} object
//
// Both are decoded into this tagged union; anything else decodes to the zero
// value and contributes no label.
type SentimentAnnotation struct {
	Labels    []SentimentScore
	Aggregate *SentimentScore
}

// Label extracts the document's sentiment label, trying the newest format
// first and falling back to the legacy aggregate.
func (s SentimentAnnotation) Label() (string, bool) {
	if len(s.Labels) > 0 && s.Labels[0].Label != "" {
		return s.Labels[0].Label, true
	}
	if s.Aggregate != nil && s.Aggregate.Label != "" {
		return s.Aggregate.Label, true
	}
	return "", false
}

type legacySentiment struct {
	Aggregate *SentimentScore `bson:"aggregate" json:"aggregate"`
}

// UnmarshalJSON decodes either sentiment shape from JSON.
func (s *SentimentAnnotation) UnmarshalJSON(data []byte) error {
	*s = SentimentAnnotation{}

	var labels []SentimentScore
	if err := json.Unmarshal(data, &labels); err == nil {
		s.Labels = labels
		return nil
	}

	var legacy legacySentiment
	if err := json.Unmarshal(data, &legacy); err == nil {
		s.Aggregate = legacy.Aggregate
		return nil
	}

	// Unknown shape: contributes nothing rather than failing the document.
	return nil
}

// UnmarshalBSONValue decodes either sentiment shape from BSON.
func (s *SentimentAnnotation) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*s = SentimentAnnotation{}

	switch t {
	case bson.TypeArray:
		var labels []SentimentScore
		if err := bson.UnmarshalValue(t, data, &labels); err != nil {
			return nil
		}
		s.Labels = labels
	case bson.TypeEmbeddedDocument:
		var legacy legacySentiment
		if err := bson.UnmarshalValue(t, data, &legacy); err != nil {
			return nil
		}
		s.Aggregate = legacy.Aggregate
	}
	return nil
}

// Report is the persisted summary record for one run date. At most one
// report exists per date; reruns overwrite in place.
type Report struct {
	Date        time.Time `bson:"date"`
	Summary     string    `bson:"summary"`
	Articles    int       `bson:"articles"`
	GeneratedAt time.Time `bson:"generated_at,omitempty"`
}

// Stats contains aggregate store statistics. EarliestScraped and
// LatestScraped are raw scraped_date strings, empty when the corpus is empty.
type Stats struct {
	Documents       int64
	Reports         int64
	EarliestScraped string
	LatestScraped   string
}

// MidnightUTC truncates a time to midnight UTC. Report dates are always
// stored in this form so upserts for the same logical day collide.
func MidnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
