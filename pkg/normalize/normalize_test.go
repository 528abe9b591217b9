package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases and collapses whitespace",
			input:    "  Sunny   Meadow  ",
			expected: "sunny meadow",
		},
		{
			name:     "strips diacritics",
			input:    "Villa Sunčana",
			expected: "villa suncana",
		},
		{
			name:     "drops punctuation",
			input:    "Oasis-Rural!",
			expected: "oasis rural",
		},
		{
			name:     "removes stop words when enough tokens remain",
			input:    "Hotel Villa Maria am See",
			expected: "maria am see",
		},
		{
			name:     "keeps stop words in short names",
			input:    "Ferienhaus Waldblick",
			expected: "ferienhaus waldblick",
		},
		{
			name:     "keeps all tokens when every token is generic",
			input:    "Hotel Villa Resort",
			expected: "hotel villa resort",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Text(tt.input))
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"Hotel Villa Maria am See",
		"Ferienhaus Waldblick",
		"Villa Sunčana",
		"  Café   Müller  ",
	}
	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once), "normalizing %q twice changed the result", in)
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "keeps leading plus",
			input:    "+49 170 1234567",
			expected: "+491701234567",
		},
		{
			name:     "prepends plus for long bare numbers",
			input:    "49301234567",
			expected: "+49301234567",
		},
		{
			name:     "leaves short local numbers bare",
			input:    "(030) 123-4567",
			expected: "0301234567",
		},
		{
			name:     "empty when no digits",
			input:    "n/a",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Phone(tt.input))
		})
	}
}

func TestPhone_Idempotent(t *testing.T) {
	for _, in := range []string{"+49 170 1234567", "49301234567", "030 123 4567"} {
		once := Phone(in)
		assert.Equal(t, once, Phone(once))
	}
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "example.com", Domain("Foo@Example.COM"))
	assert.Equal(t, "", Domain("not-an-email"))
	assert.Equal(t, "", Domain("broken@"))
	assert.Equal(t, "", Domain(""))
}

func TestBookingSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "extracts the hotel slug",
			input:    "https://www.booking.com/hotel/hr/villa-suncana.de.html",
			expected: "villa-suncana",
		},
		{
			name:     "slug stops at query string",
			input:    "https://www.booking.com/hotel/es/casa-rural?aid=123",
			expected: "casa-rural",
		},
		{
			name:     "non booking url falls back to lowercased url",
			input:    "HTTPS://Example.com/Property/42",
			expected: "https://example.com/property/42",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BookingSlug(tt.input))
		})
	}
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, "maria am see", SearchQuery("Hotel Villa Maria am See", 3))
	assert.Equal(t, "sunny beach", SearchQuery("Sunny Beach", 3))
	assert.Equal(t, "", SearchQuery("", 3))
}
