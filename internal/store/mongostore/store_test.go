package mongostore

import (
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kaizen/kaizen"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func keys(d bson.D) []string {
	out := make([]string, 0, len(d))
	for _, e := range d {
		out = append(out, e.Key)
	}
	return out
}

func lookup(d bson.D, key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func TestSetDocument_Empty(t *testing.T) {
	if set := SetDocument(kaizen.Patch{}); len(set) != 0 {
		t.Errorf("expected empty $set, got %v", set)
	}
}

func TestSetDocument_SingleFields(t *testing.T) {
	tests := []struct {
		name  string
		patch kaizen.Patch
		want  []string
	}{
		{"impact", kaizen.ImpactPatch("high"), []string{"impact"}},
		{"benefit score", kaizen.BenefitScorePatch("7"), []string{"benefitscore"}},
		{"status", kaizen.StatusPatch("In Review", time.Now()), []string{"status"}},
		{"implemented status", kaizen.StatusPatch(kaizen.StatusImplemented, time.Now()), []string{"status", "updatedAt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys(SetDocument(tt.patch))
			if len(got) != len(tt.want) {
				t.Fatalf("expected keys %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("key %d: expected %s, got %s", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestSetDocument_Detail(t *testing.T) {
	team := "asha"
	other := "less noise"
	benefits := kaizen.Benefits{kaizen.BenefitOther}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

	set := SetDocument(kaizen.DetailPatch(kaizen.Detail{
		TeamMembers: &team,
		Benefits:    &benefits,
		Other:       &other,
		Status:      strPtr(kaizen.StatusImplemented),
	}, "https://cdn.example/new.png", now))

	if v, _ := lookup(set, "teamMembers"); v != team {
		t.Errorf("expected teamMembers %q, got %v", team, v)
	}
	if v, _ := lookup(set, "other"); v != other {
		t.Errorf("expected other %q, got %v", other, v)
	}
	if v, _ := lookup(set, "updatedImage"); v != "https://cdn.example/new.png" {
		t.Errorf("unexpected updatedImage %v", v)
	}
	v, ok := lookup(set, "benefits")
	if !ok {
		t.Fatal("expected benefits in $set")
	}
	if b, _ := v.([]string); len(b) != 1 || b[0] != kaizen.BenefitOther {
		t.Errorf("unexpected benefits %v", v)
	}
	v, ok = lookup(set, "updatedAt")
	if !ok {
		t.Fatal("expected updatedAt in $set")
	}
	if ts, _ := v.(time.Time); ts.Location() != time.UTC || !ts.Equal(now) {
		t.Errorf("expected updatedAt in UTC, got %v", v)
	}
}

func TestSetDocument_EmptyBenefits(t *testing.T) {
	var none kaizen.Benefits
	set := SetDocument(kaizen.Patch{Benefits: &none})
	v, ok := lookup(set, "benefits")
	if !ok {
		t.Fatal("expected benefits in $set")
	}
	if b, ok := v.([]string); !ok || b == nil {
		t.Errorf("expected empty non-nil slice, got %#v", v)
	}
}

func TestNormalize(t *testing.T) {
	k := kaizen.Kaizen{}
	normalize(&k)
	if k.Benefits == nil {
		t.Error("expected benefits to be non-nil")
	}
}

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := objectID(oid.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != oid {
		t.Errorf("expected %s, got %s", oid.Hex(), got.Hex())
	}

	for _, id := range []string{"", "nope", "65f1c0ffee"} {
		_, err := objectID(id)
		if !goerrors.IsCategory(err, goerrors.CategoryInternal) {
			t.Errorf("id %q: expected internal error, got %v", id, err)
		}
		if kaizen.IsNotFound(err) {
			t.Errorf("id %q: malformed id must not read as not found", id)
		}
	}
}

func TestDocument_StoresObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	record := kaizen.Kaizen{ID: oid.Hex(), Title: "Reduce scrap", Benefits: kaizen.Benefits{"cost"}}

	doc, err := document(record, oid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := lookup(doc, "_id")
	if !ok {
		t.Fatal("expected _id in document")
	}
	if got, isOID := v.(primitive.ObjectID); !isOID || got != oid {
		t.Errorf("expected ObjectID %s, got %#v", oid.Hex(), v)
	}
	if v, _ := lookup(doc, "Kaizen_Title"); v != "Reduce scrap" {
		t.Errorf("expected title to be kept, got %v", v)
	}
}

func TestDecode_ObjectIDBecomesHex(t *testing.T) {
	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.D{{Key: "_id", Value: oid}, {Key: "status", Value: "Open"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var record kaizen.Kaizen
	if err := bson.Unmarshal(raw, &record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID != oid.Hex() {
		t.Errorf("expected id %s, got %s", oid.Hex(), record.ID)
	}
}

func TestStore_StampMatchesServerPrecision(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.FixedZone("IST", 5*3600+1800))
	s := New(nil, WithClock(func() time.Time { return now }))

	got := s.stamp()
	if got.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", got.Location())
	}
	if got.Nanosecond() != 123000000 {
		t.Errorf("expected millisecond precision, got %d ns", got.Nanosecond())
	}

	// a BSON datetime round trip must not change the stamped value
	raw, err := bson.Marshal(kaizen.Kaizen{CreatedAt: got})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var back kaizen.Kaizen
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.CreatedAt.Equal(got) {
		t.Errorf("expected %v after round trip, got %v", got, back.CreatedAt)
	}
}

func strPtr(s string) *string { return &s }
