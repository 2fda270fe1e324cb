package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkedIn(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare url gains scheme",
			text: "find me at linkedin.com/in/jane-doe.",
			want: "https://linkedin.com/in/jane-doe",
		},
		{
			name: "http normalized to https",
			text: "http://www.linkedin.com/in/jane-doe-123",
			want: "https://www.linkedin.com/in/jane-doe-123",
		},
		{
			name: "pub path accepted",
			text: "https://dk.linkedin.com/pub/jane-doe/1/2/3",
			want: "https://dk.linkedin.com/pub/jane-doe/1/2/3",
		},
		{
			name: "no profile url",
			text: "we are hiring, see linkedin for details",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkedIn(tt.text))
		})
	}
}

func TestGuessLinkedIn(t *testing.T) {
	assert.Equal(t,
		"https://www.linkedin.com/in/anna-marie-sondergaard",
		GuessLinkedIn("Anna Marie Søndergaard", ""))

	// single-token name borrows the company's first token
	assert.Equal(t,
		"https://www.linkedin.com/in/madonna-acme",
		GuessLinkedIn("Madonna", "Acme A/S"))

	assert.Equal(t, "", GuessLinkedIn("Madonna", ""))
	assert.Equal(t, "", GuessLinkedIn("", "Acme A/S"))
}
