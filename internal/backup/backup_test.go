package backup

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"trackos/internal/model"
	"trackos/internal/store"
)

func samplePayload() Payload {
	snap := store.Snapshot{
		Metrics: []model.Metric{
			{ID: model.MetricBodyWeight, Type: model.MetricTimeseries, Name: "Body Weight", Unit: "lb"},
		},
		Entries: []model.Entry{
			{ID: "e1", MetricID: model.MetricBodyWeight, Timestamp: 1_700_000_000_000, Value: 180.5},
		},
		Goals: []model.Goal{
			{ID: "g1", Type: model.GoalWeeklyFrequency, Target: 3, Comparator: model.AtLeast, Status: model.GoalActive},
		},
	}
	return NewPayload(snap, model.DefaultSettings(), time.UnixMilli(1_700_000_100_000))
}

func TestPlainRoundTrip(t *testing.T) {
	p := samplePayload()
	data, err := Marshal(p, "")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"app": "TrackOS"`) {
		t.Fatalf("plain backup missing app tag: %s", data)
	}
	got, err := Unmarshal(data, "")
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ExportedAt != p.ExportedAt {
		t.Fatalf("exportedAt = %d, want %d", got.ExportedAt, p.ExportedAt)
	}
	if len(got.Entries) != 1 || got.Entries[0].Value != 180.5 {
		t.Fatalf("entries lost: %+v", got.Entries)
	}
	if got.Settings.DayBoundaryHour != model.DefaultSettings().DayBoundaryHour {
		t.Fatalf("settings lost: %+v", got.Settings)
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	p := samplePayload()
	data, err := Marshal(p, "correct horse")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var enc Encrypted
	if err := json.Unmarshal(data, &enc); err != nil {
		t.Fatalf("parse wrapper: %v", err)
	}
	if !enc.Encrypted || enc.Algo != "AES-GCM" || enc.KDF != "PBKDF2" {
		t.Fatalf("unexpected wrapper: %+v", enc)
	}
	if strings.Contains(string(data), "Body Weight") {
		t.Fatal("plaintext leaked into encrypted backup")
	}

	got, err := Unmarshal(data, "correct horse")
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Goals) != 1 || got.Goals[0].ID != "g1" {
		t.Fatalf("goals lost: %+v", got.Goals)
	}
}

func TestWrongPassphraseFails(t *testing.T) {
	data, err := Marshal(samplePayload(), "right")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Unmarshal(data, "wrong"); err == nil {
		t.Fatal("expected decryption failure")
	}
	if _, err := Unmarshal(data, ""); err == nil {
		t.Fatal("expected passphrase-required error")
	}
}

func TestUnmarshalRejectsForeignDocuments(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"app":"SomethingElse"}`), ""); err == nil {
		t.Fatal("expected app tag mismatch error")
	}
	if _, err := Unmarshal([]byte(`not json`), ""); err == nil {
		t.Fatal("expected parse error")
	}
	newer := `{"app":"TrackOS","schemaVersion":99}`
	if _, err := Unmarshal([]byte(newer), ""); err == nil {
		t.Fatal("expected schema version error")
	}
}
