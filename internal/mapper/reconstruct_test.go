package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconstruct(t *testing.T) {
	userData := map[string]string{
		"First":     "Ali",
		"Last":      "Khan",
		"Full Name": "Ali Raza Khan",
		"Empty":     "",
	}

	tests := []struct {
		name    string
		mapping Mapping
		want    map[string]string
	}{
		{
			name:    "direct label",
			mapping: Mapping{"Name": strPtr("First")},
			want:    map[string]string{"Name": "Ali"},
		},
		{
			name:    "concatenation expression",
			mapping: Mapping{"Name": strPtr("First + ' ' + Last")},
			want:    map[string]string{"Name": "Ali Khan"},
		},
		{
			name:    "label with spaces",
			mapping: Mapping{"Name": strPtr("Full Name")},
			want:    map[string]string{"Name": "Ali Raza Khan"},
		},
		{
			name:    "nil entry skips slot",
			mapping: Mapping{"Name": nil, "NTN": strPtr("First")},
			want:    map[string]string{"NTN": "Ali"},
		},
		{
			name:    "unknown label resolves empty and is omitted",
			mapping: Mapping{"Name": strPtr("Nonexistent")},
			want:    map[string]string{},
		},
		{
			name:    "empty resolved value omitted",
			mapping: Mapping{"Name": strPtr("Empty")},
			want:    map[string]string{},
		},
		{
			name:    "empty mapping",
			mapping: Mapping{},
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconstruct(tt.mapping, userData))
		})
	}
}

func TestReconstructFallsBackToDirectLookup(t *testing.T) {
	// An expression that does not parse still resolves when the whole
	// string is itself a user data key
	userData := map[string]string{"Weird + Key": "value"}
	mapping := Mapping{"Slot": strPtr("Weird + Key")}

	assert.Equal(t, map[string]string{"Slot": "value"}, Reconstruct(mapping, userData))
}
