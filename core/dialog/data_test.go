package dialog

import (
	"encoding/json"
	"testing"
)

// Sessions round-trip through JSON in the Redis store, which turns every
// number into float64 and every []string into []any. The accessors must not
// care.
func TestDataSurvivesJSONRoundTrip(t *testing.T) {
	sess := NewSession()
	sess.push(Frame{
		Dialog: "addsong",
		State:  "verify",
		Data: Data{
			"page":  2,
			"title": "Landslide",
			"roles": []string{"vocals", "guitar"},
			"skip":  true,
		},
		Start: Data{"song_id": int64(42)},
	})

	raw, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Session
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	frame := decoded.Top()
	if frame == nil || frame.Dialog != "addsong" || frame.State != "verify" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	if got := frame.Data.IntOr("page", 0); got != 2 {
		t.Fatalf("page = %d", got)
	}
	if title, ok := frame.Data.String("title"); !ok || title != "Landslide" {
		t.Fatalf("title = %q ok=%v", title, ok)
	}
	if roles := frame.Data.Strings("roles"); len(roles) != 2 || roles[0] != "vocals" {
		t.Fatalf("roles = %v", roles)
	}
	if !frame.Data.Bool("skip") {
		t.Fatal("skip should be true")
	}
	if id, ok := frame.Start.Int64("song_id"); !ok || id != 42 {
		t.Fatalf("song_id = %d ok=%v", id, ok)
	}
}

func TestDataMissingKeys(t *testing.T) {
	var d Data
	if _, ok := d.String("x"); ok {
		t.Fatal("nil map should report missing")
	}
	if d.IntOr("x", 7) != 7 {
		t.Fatal("IntOr should fall back on nil map")
	}
	d = Data{"n": "not a number"}
	if _, ok := d.Int64("n"); ok {
		t.Fatal("mistyped value should report missing")
	}
	if d.Bool("n") {
		t.Fatal("mistyped value should not be true")
	}
}

func TestCloneIsolatesSlices(t *testing.T) {
	orig := Data{"roles": []string{"vocals"}}
	clone := orig.Clone()
	clone["roles"] = append(clone.Strings("roles"), "drums")
	if len(orig.Strings("roles")) != 1 {
		t.Fatalf("clone mutated the original: %v", orig.Strings("roles"))
	}
}
