package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// TestNewRunIDUniqueness tests that NewRunID generates unique identifiers
func TestNewRunIDUniqueness(t *testing.T) {
	const numIDs = 5000

	ids := make(map[RunID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewRunID()
		if id.IsEmpty() {
			t.Errorf("Generated empty RunID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate RunID: %s", id)
		}
		ids[id] = true
	}
}

func TestHashDeterministic(t *testing.T) {
	a := NewHash([]byte("TLH,CLH\n1,2\n"))
	b := NewHash([]byte("TLH,CLH\n1,2\n"))
	if a != b {
		t.Errorf("Expected identical hashes, got %s and %s", a, b)
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12 character short hash, got %q", a.Short())
	}
}

func TestSchemaErrorClassification(t *testing.T) {
	err := NewMissingColumnsError([]string{"line_area_1", "strip name"})
	if !IsSchemaError(err) {
		t.Error("Expected missing columns to classify as schema error")
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Error("Expected missing columns to wrap ErrMissingColumn")
	}
	if got := err.Error(); got != `schema error: missing column: "line_area_1", "strip name"` {
		t.Errorf("Unexpected message: %s", got)
	}

	if IsSchemaError(NewUnknownDelimiterError("+")) {
		t.Error("Unknown delimiter must not classify as schema error")
	}
	if !IsInputError(NewUnknownDelimiterError("+")) {
		t.Error("Unknown delimiter should classify as input error")
	}
}

func TestTimestampJSON(t *testing.T) {
	ts := Timestamp(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2024-03-01T12:30:00Z"` {
		t.Errorf("unexpected encoding %s", data)
	}
	var back Timestamp
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Time().Equal(ts.Time()) {
		t.Errorf("round trip changed the time: %s", back)
	}
}
