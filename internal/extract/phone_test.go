package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	twoSignatures := "Jane Doe\njane@acme.dk\n+45 12 34 56 78\n\nBob Smith\nbob@corp.com\n+1 555-123-4567\n"

	tests := []struct {
		name   string
		text   string
		email  string
		owners []string
		want   string
	}{
		{
			name:  "danish grouped with country code",
			text:  "Jane Doe\njane@acme.dk\nTlf: +45 12 34 56 78",
			email: "jane@acme.dk",
			want:  "+45 12 34 56 78",
		},
		{
			name:  "number near another address is not ours",
			text:  twoSignatures,
			email: "jane@acme.dk",
			want:  "+45 12 34 56 78",
		},
		{
			name:  "same text, other contact",
			text:  twoSignatures,
			email: "bob@corp.com",
			want:  "+1 555-123-4567",
		},
		{
			name:  "extension suffix is appended",
			text:  "Call 12 34 56 78 ext. 24 anytime",
			email: "jane@acme.dk",
			want:  "12 34 56 78 ext. 24",
		},
		{
			name:   "owner number skipped when contact address absent",
			text:   "me@myshop.dk\n+45 11 22 33 44",
			email:  "jane@acme.dk",
			owners: []string{"me@myshop.dk"},
			want:   "",
		},
		{
			name:  "short digit runs rejected",
			text:  "jane@acme.dk room 12 34",
			email: "jane@acme.dk",
			want:  "",
		},
		{
			name:  "nothing phone-like",
			text:  "jane@acme.dk will call you",
			email: "jane@acme.dk",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phone(tt.text, tt.email, tt.owners))
		})
	}
}

func TestKeepDigits(t *testing.T) {
	assert.Equal(t, "4512345678", keepDigits("+45 12 34 56 78"))
	assert.Equal(t, "", keepDigits("no digits"))
}

func TestGap(t *testing.T) {
	assert.Equal(t, 5, gap(0, 10, 15, 20))
	assert.Equal(t, 5, gap(15, 20, 0, 10))
	assert.Equal(t, 0, gap(0, 10, 5, 8))
}
