package appointment

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"checkup", []string{"checkup"}},
		{"checkup, urgent", []string{"checkup", "urgent"}},
		{"checkup urgent\tfollowup", []string{"checkup", "urgent", "followup"}},
		{"b12,,b12 , A1", []string{"b12", "A1"}},
	}
	for _, tt := range tests {
		got, err := ParseTags(tt.raw)
		if err != nil {
			t.Fatalf("ParseTags(%q): unexpected error: %v", tt.raw, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTags(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseTags_RejectsNonAlphanumeric(t *testing.T) {
	for _, raw := range []string{"x-ray", "checkup, #urgent", "café"} {
		if _, err := ParseTags(raw); !errors.Is(err, ErrInvalidTag) {
			t.Errorf("ParseTags(%q): expected ErrInvalidTag, got %v", raw, err)
		}
	}
}
