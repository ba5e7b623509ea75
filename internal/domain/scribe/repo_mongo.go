package scribe

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// noteDocument is the BSON shape of a NoteRecord.
type noteDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	PatientID  string             `bson:"patientId"`
	Transcript string             `bson:"transcript"`
	SOAPNote   string             `bson:"soapNote"`
	Timestamp  time.Time          `bson:"timestamp"`
}

func toDocument(r *NoteRecord) noteDocument {
	return noteDocument{
		PatientID:  r.PatientID,
		Transcript: r.Transcript,
		SOAPNote:   r.SOAPNote,
		Timestamp:  r.Timestamp.UTC(),
	}
}

func (d noteDocument) toRecord() *NoteRecord {
	return &NoteRecord{
		ID:         d.ID.Hex(),
		PatientID:  d.PatientID,
		Transcript: d.Transcript,
		SOAPNote:   d.SOAPNote,
		Timestamp:  d.Timestamp.UTC(),
	}
}

type historyRepoMongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewHistoryRepoMongo connects to uri and returns a repository over
// database.collection.
func NewHistoryRepoMongo(ctx context.Context, uri, database, collection string) (HistoryRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &historyRepoMongo{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (r *historyRepoMongo) Append(ctx context.Context, rec *NoteRecord) error {
	res, err := r.coll.InsertOne(ctx, toDocument(rec))
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	rec.ID = objectIDString(res.InsertedID)
	return nil
}

func (r *historyRepoMongo) AppendMany(ctx context.Context, recs []*NoteRecord) error {
	if len(recs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, toDocument(rec))
	}
	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("insert notes: %w", err)
	}
	for i, id := range res.InsertedIDs {
		if i < len(recs) {
			recs[i].ID = objectIDString(id)
		}
	}
	return nil
}

func (r *historyRepoMongo) ListAll(ctx context.Context) ([]*NoteRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}
	var docs []noteDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	items := make([]*NoteRecord, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toRecord())
	}
	return items, nil
}

func (r *historyRepoMongo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return n, nil
}

func (r *historyRepoMongo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *historyRepoMongo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func objectIDString(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprintf("%v", id)
}
