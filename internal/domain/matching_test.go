package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindRelevantKeywords(t *testing.T) {
	tests := []struct {
		name     string
		item     Candidate
		keywords []string
		want     []string
	}{
		{
			name:     "keyword in title",
			item:     Candidate{Title: "공룡 박물관"},
			keywords: []string{"공룡", "로봇"},
			want:     []string{"공룡"},
		},
		{
			name:     "keyword in description",
			item:     Candidate{Title: "과학관", Description: "로봇 전시회"},
			keywords: []string{"공룡", "로봇"},
			want:     []string{"로봇"},
		},
		{
			name:     "keyword in category",
			item:     Candidate{Title: "Expo", Category: "robotics"},
			keywords: []string{"robot"},
			want:     []string{"robot"},
		},
		{
			name:     "case-insensitive",
			item:     Candidate{Title: "Space Museum"},
			keywords: []string{"SPACE"},
			want:     []string{"SPACE"},
		},
		{
			name:     "input order preserved",
			item:     Candidate{Title: "공룡과 로봇"},
			keywords: []string{"로봇", "공룡"},
			want:     []string{"로봇", "공룡"},
		},
		{
			name:     "duplicates collapsed",
			item:     Candidate{Title: "공룡"},
			keywords: []string{"공룡", "공룡"},
			want:     []string{"공룡"},
		},
		{
			name:     "no matches",
			item:     Candidate{Title: "수족관"},
			keywords: []string{"공룡", "로봇"},
			want:     nil,
		},
		{
			name:     "empty keyword list",
			item:     Candidate{Title: "공룡"},
			keywords: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindRelevantKeywords(&tt.item, tt.keywords)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchScore(t *testing.T) {
	item := Candidate{Title: "공룡 박물관", Description: "티라노사우루스"}

	assert.InDelta(t, 0.5, MatchScore(&item, []string{"공룡", "로봇"}), 0.0001)
	assert.InDelta(t, 1.0, MatchScore(&item, []string{"공룡"}), 0.0001)
	assert.InDelta(t, 0.0, MatchScore(&item, nil), 0.0001)
	assert.InDelta(t, 0.0, MatchScore(&item, []string{"로봇", "우주"}), 0.0001)
}

func TestIsExactMatch(t *testing.T) {
	// Word-boundary matching: "art" must not match inside "start".
	assert.True(t, IsExactMatch("modern art gallery", "art"))
	assert.False(t, IsExactMatch("the race starts here", "art"))
	assert.True(t, IsExactMatch("Robot Expo", "robot"))
	assert.False(t, IsExactMatch("robotics lab", "robot"))
	assert.False(t, IsExactMatch("anything", ""))
}
