package event

import (
	"encoding/json"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"Debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
	}
	for _, c := range cases {
		got, err := ParseLevel(c.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) returned error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseLevelUnknown(t *testing.T) {
	for _, in := range []string{"", "verbose", "FATAL", "info2"} {
		if _, err := ParseLevel(in); err == nil {
			t.Errorf("ParseLevel(%q) should fail", in)
		}
	}
}

func TestLevelOrdering(t *testing.T) {
	ordered := []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 1; i < len(ordered); i++ {
		if !(ordered[i-1] < ordered[i]) {
			t.Errorf("expected %v < %v", ordered[i-1], ordered[i])
		}
	}
}

func TestLevelJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(LevelWarn)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"WARN"` {
		t.Fatalf("expected \"WARN\", got %s", data)
	}

	var back Level
	if err := json.Unmarshal([]byte(`"error"`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != LevelError {
		t.Fatalf("expected LevelError, got %v", back)
	}

	if err := json.Unmarshal([]byte(`"loud"`), &back); err == nil {
		t.Fatal("expected error for unknown level name")
	}
}
