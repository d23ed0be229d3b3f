package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidORCID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0000-0002-1825-0097", true},
		{"0000-0002-1694-233X", true},
		{"0000-0001-2345-6789", true},
		{"0000-0002-1825-0098", false},
		{"0000-0002-1825-009", false},
		{"0000000218250097", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidORCID(tt.in))
		})
	}
}

func TestNormalizeORCID(t *testing.T) {
	assert.Equal(t, "0000-0002-1694-233X", NormalizeORCID(" https://orcid.org/0000-0002-1694-233x "))
}

func TestNormalizeAuthorID(t *testing.T) {
	id, ok := NormalizeAuthorID("https://openalex.org/A5023888391")
	assert.True(t, ok)
	assert.Equal(t, "A5023888391", id)

	id, ok = NormalizeAuthorID("a42")
	assert.True(t, ok)
	assert.Equal(t, "A42", id)

	_, ok = NormalizeAuthorID("W123")
	assert.False(t, ok)

	_, ok = NormalizeAuthorID("A12b")
	assert.False(t, ok)
}

func TestNormalizePaperID(t *testing.T) {
	id, ok := NormalizePaperID("https://openalex.org/W2741809807")
	assert.True(t, ok)
	assert.Equal(t, "W2741809807", id)

	id, ok = NormalizePaperID("doi:10.1000/xyz")
	assert.True(t, ok)
	assert.Equal(t, "doi:10.1000/xyz", id)

	_, ok = NormalizePaperID("   ")
	assert.False(t, ok)
}
