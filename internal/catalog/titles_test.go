package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSeriesTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Naruto, Vol. 1", "Naruto"},
		{"One Piece Tome 5", "One Piece"},
		{"My Hero Academia #10", "My Hero Academia"},
		{"Dragon Ball T.3", "Dragon Ball"},
		{"Naruto", "Naruto"},
		{"Bleach", "Bleach"},
		{"  Bleach  ", "Bleach"},
		{"Naruto - Volume 3", "Naruto"},
		{"Naruto Vol.12", "Naruto"},
		{"ONE PIECE VOL 100", "ONE PIECE"},
		{"Fullmetal Alchemist, vol: 7", "Fullmetal Alchemist"},
		{"20th Century Boys", "20th Century Boys"},
		{"Naruto 3", "Naruto 3"},
		{"Start 3", "Start 3"},
		{"Vol. 1", "Vol. 1"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractSeriesTitle(tt.input))
		})
	}
}

func TestExtractVolumeNumber(t *testing.T) {
	tests := []struct {
		input  string
		number int
		ok     bool
	}{
		{"Naruto, Vol. 1", 1, true},
		{"One Piece Tome 5", 5, true},
		{"My Hero Academia #10", 10, true},
		{"Dragon Ball T.3", 3, true},
		{"Vol. 0", 0, true},
		{"Naruto", 0, false},
		{"Naruto 3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, ok := ExtractVolumeNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.number, n)
		})
	}
}

func TestExtractSeriesTitle_Idempotent(t *testing.T) {
	for _, title := range []string{"Naruto, Vol. 1", "Dragon Ball T.3", "Bleach"} {
		once := ExtractSeriesTitle(title)
		assert.Equal(t, once, ExtractSeriesTitle(once))
	}
}
