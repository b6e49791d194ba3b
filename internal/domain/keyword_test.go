package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyword(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain word", raw: "dinosaur", want: "dinosaur"},
		{name: "hangul word", raw: "공룡", want: "공룡"},
		{name: "surrounding whitespace trimmed", raw: "  로봇  ", want: "로봇"},
		{name: "digits allowed", raw: "lego42", want: "lego42"},
		{name: "empty rejected", raw: "", wantErr: true},
		{name: "whitespace only rejected", raw: "   ", wantErr: true},
		{name: "punctuation only rejected", raw: "!!!", wantErr: true},
		{name: "over max length rejected", raw: strings.Repeat("가", 101), wantErr: true},
		{name: "exactly max length allowed", raw: strings.Repeat("a", 100), want: strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kw, err := NewKeyword(tt.raw)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, kw.String())
		})
	}
}

func TestKeyword_Equality(t *testing.T) {
	a, err := NewKeyword("Space")
	require.NoError(t, err)
	b, err := NewKeyword("space")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, "space", a.Normalized())
	assert.True(t, a.Matches("  SPACE "))
	assert.False(t, a.Matches("rocket"))
}

func TestKeyword_NormalizationIdempotent(t *testing.T) {
	once, err := NewKeyword("  공룡 ")
	require.NoError(t, err)

	twice, err := NewKeyword(once.String())
	require.NoError(t, err)

	assert.Equal(t, once.String(), twice.String())
}

func TestCountMentions(t *testing.T) {
	m := CountMentions([]string{"공룡", "공룡 ", "  공룡", "로봇", "", "   "})

	assert.Equal(t, []string{"공룡", "로봇"}, m.Keywords())
	assert.Equal(t, 3, m.Count("공룡"))
	assert.Equal(t, 1, m.Count("로봇"))
	assert.Equal(t, 0, m.Count("우주"))
	assert.Equal(t, 2, m.Len())
	assert.False(t, m.IsEmpty())
}

func TestCountMentions_Empty(t *testing.T) {
	assert.True(t, CountMentions(nil).IsEmpty())
	assert.True(t, CountMentions([]string{"", " "}).IsEmpty())
}

func TestNewExtractedKeywords(t *testing.T) {
	kws := NewExtractedKeywords([]string{" 우주", "로봇", "우주", "", "로봇 "})

	assert.Equal(t, []string{"우주", "로봇"}, kws.Values())
	assert.Equal(t, 2, kws.Count())
	assert.True(t, kws.Contains("우주 "))
	assert.False(t, kws.Contains("공룡"))
	assert.False(t, kws.IsEmpty())

	assert.True(t, NewExtractedKeywords(nil).IsEmpty())
}
