package scribe

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestNoteDocument_BSONFieldNames(t *testing.T) {
	ts := time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC)
	raw, err := bson.Marshal(toDocument(&NoteRecord{
		PatientID:  "PID-001",
		Transcript: "t",
		SOAPNote:   "n",
		Timestamp:  ts,
	}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["_id"]; ok {
		t.Error("unset _id must be omitted so the server assigns one")
	}
	for _, k := range []string{"patientId", "transcript", "soapNote", "timestamp"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing field %q", k)
		}
	}
}

func TestNoteDocument_ToRecord(t *testing.T) {
	oid := primitive.NewObjectID()
	loc := time.FixedZone("CEST", 2*60*60)
	doc := noteDocument{ID: oid, PatientID: "PID-002", SOAPNote: "n", Timestamp: time.Date(2026, 10, 18, 10, 0, 0, 0, loc)}

	rec := doc.toRecord()
	if rec.ID != oid.Hex() {
		t.Errorf("expected hex id %s, got %s", oid.Hex(), rec.ID)
	}
	if rec.Timestamp.Location() != time.UTC || rec.Timestamp.Hour() != 8 {
		t.Errorf("expected UTC timestamp, got %v", rec.Timestamp)
	}
}

func TestObjectIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	if got := objectIDString(oid); got != oid.Hex() {
		t.Errorf("objectIDString(oid) = %q", got)
	}
	if got := objectIDString("custom"); got != "custom" {
		t.Errorf("objectIDString(string) = %q", got)
	}
}

var hexID = regexp.MustCompile(`^[0-9a-f]{24}$`)

func mockMongoRepo(mt *mtest.T) *historyRepoMongo {
	return &historyRepoMongo{client: mt.Client, coll: mt.Coll}
}

func mongoNS(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestHistoryRepoMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ListAll sorts by timestamp descending", func(mt *mtest.T) {
		newer := primitive.NewObjectID()
		older := primitive.NewObjectID()
		ts := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mongoNS(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: newer}, {Key: "patientId", Value: "PID-002"}, {Key: "transcript", Value: "b"}, {Key: "soapNote", Value: "n2"}, {Key: "timestamp", Value: ts}},
			bson.D{{Key: "_id", Value: older}, {Key: "patientId", Value: "PID-001"}, {Key: "transcript", Value: "a"}, {Key: "soapNote", Value: "n1"}, {Key: "timestamp", Value: ts.Add(-time.Hour)}},
		))

		items, err := mockMongoRepo(mt).ListAll(context.Background())
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			t.Fatalf("expected a find command, got %+v", evt)
		}
		var sortDoc struct {
			Timestamp int `bson:"timestamp"`
		}
		if err := bson.Unmarshal(evt.Command.Lookup("sort").Document(), &sortDoc); err != nil {
			t.Fatalf("decode sort: %v", err)
		}
		if sortDoc.Timestamp != -1 {
			t.Errorf("expected sort {timestamp: -1}, got %d", sortDoc.Timestamp)
		}

		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].ID != newer.Hex() || items[1].ID != older.Hex() {
			t.Errorf("expected hex ids in server order, got %s, %s", items[0].ID, items[1].ID)
		}
		if items[0].PatientID != "PID-002" || !items[0].Timestamp.Equal(ts) {
			t.Errorf("unexpected first item %+v", items[0])
		}
	})

	mt.Run("ListAll on an empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mongoNS(mt), mtest.FirstBatch))

		items, err := mockMongoRepo(mt).ListAll(context.Background())
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if items == nil || len(items) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", items)
		}
	})

	mt.Run("Append assigns a hex id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec := &NoteRecord{PatientID: DefaultPatientID, Transcript: "t", SOAPNote: "n", Timestamp: time.Now()}
		if err := mockMongoRepo(mt).Append(context.Background(), rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if !hexID.MatchString(rec.ID) {
			t.Errorf("expected 24-char hex id, got %q", rec.ID)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "insert" {
			t.Fatalf("expected an insert command, got %+v", evt)
		}
		docs, err := evt.Command.Lookup("documents").Array().Values()
		if err != nil || len(docs) != 1 {
			t.Fatalf("expected 1 inserted document, got %d (%v)", len(docs), err)
		}
		sent := docs[0].Document().Lookup("_id").ObjectID()
		if sent.Hex() != rec.ID {
			t.Errorf("record id %s does not match inserted _id %s", rec.ID, sent.Hex())
		}
	})

	mt.Run("AppendMany assigns ids in order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		recs := SampleNotes(time.Now())
		if err := mockMongoRepo(mt).AppendMany(context.Background(), recs); err != nil {
			t.Fatalf("AppendMany: %v", err)
		}

		docs, err := mt.GetStartedEvent().Command.Lookup("documents").Array().Values()
		if err != nil || len(docs) != len(recs) {
			t.Fatalf("expected %d inserted documents, got %d (%v)", len(recs), len(docs), err)
		}
		for i, d := range docs {
			if got := d.Document().Lookup("_id").ObjectID().Hex(); got != recs[i].ID {
				t.Errorf("record %d: id %q, inserted %q", i, recs[i].ID, got)
			}
		}
	})

	mt.Run("Count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mongoNS(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(3)}}))

		n, err := mockMongoRepo(mt).Count(context.Background())
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3, got %d", n)
		}
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		rec := &NoteRecord{Transcript: "t", SOAPNote: "n", Timestamp: time.Now()}
		if err := mockMongoRepo(mt).Append(context.Background(), rec); err == nil {
			t.Fatal("expected error")
		}
		if rec.ID != "" {
			t.Errorf("id must stay empty on failure, got %q", rec.ID)
		}
	})
}
