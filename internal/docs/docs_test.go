package docs

import "testing"

func TestGet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		topic string
		ok    bool
	}{
		{"config", true},
		{"  EDITING ", true},
		{"tasks-file", true},
		{"", false},
		{"../docs", false},
		{"missing", false},
	}
	for _, tt := range tests {
		if _, ok := Get(tt.topic); ok != tt.ok {
			t.Fatalf("Get(%q) ok=%v, want %v", tt.topic, ok, tt.ok)
		}
	}
	if got := Topics(); len(got) != 3 {
		t.Fatalf("expected 3 topics, got %v", got)
	}
}
