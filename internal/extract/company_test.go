package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompany(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		email string
		want  string
	}{
		{
			name:  "domain hint line with canonical suffix kept",
			text:  "Jane Doe\nSalgschef\nAcme A/S\njane@acme.dk",
			email: "jane@acme.dk",
			want:  "Acme A/S",
		},
		{
			name:  "legal marker without domain hint",
			text:  "Hans Weber\nBlue Ocean GmbH\nhans@weber-privat.de",
			email: "hw@gmail.com",
			want:  "Blue Ocean GmbH",
		},
		{
			name:  "non-canonical suffix stripped",
			text:  "Sarah Jones\nNorthwind Traders Limited\nsarah@northwindtraders.com",
			email: "sarah@northwindtraders.com",
			want:  "Northwind Traders",
		},
		{
			name:  "fallback to title-cased domain hint",
			text:  "nothing useful here\njane@fancystartup.io",
			email: "jane@fancystartup.io",
			want:  "Fancystartup",
		},
		{
			name:  "free mail yields no hint and no fallback",
			text:  "nothing useful here",
			email: "jane@gmail.com",
			want:  "",
		},
		{
			name:  "cc second-level skipped for hint",
			text:  "Acme Widgets\njane@acme.co.uk",
			email: "jane@acme.co.uk",
			want:  "Acme Widgets",
		},
		{
			name:  "phone label line never a company",
			text:  "Tlf: Acme A/S afdeling\njane@gmail.com",
			email: "jane@gmail.com",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Company(tt.text, tt.email))
		})
	}
}

func TestHasLegalMarker(t *testing.T) {
	assert.True(t, HasLegalMarker("Acme A/S"))
	assert.True(t, HasLegalMarker("Blue Ocean GmbH"))
	assert.True(t, HasLegalMarker("Northwind Traders Ltd."))
	assert.False(t, HasLegalMarker("Acme Widgets"))
	assert.False(t, HasLegalMarker(""))
}

func TestDomainHint(t *testing.T) {
	assert.Equal(t, "acme", DomainHint("jane@acme.dk"))
	assert.Equal(t, "acme", DomainHint("jane@mail.acme.co.uk"))
	assert.Equal(t, "", DomainHint("jane@gmail.com"))
	assert.Equal(t, "", DomainHint("not-an-email"))
}
