package model

import (
	"testing"
)

func TestClassifyEpisode(t *testing.T) {
	tests := []struct {
		name     string
		isFiller bool
		isManga  bool
		want     EpisodeType
	}{
		{"原作集", false, false, EpisodeCanon},
		{"纯填充集", true, false, EpisodeFiller},
		{"漫画原创集", false, true, EpisodeMixed},
		{"填充优先于漫画标记", true, true, EpisodeFiller},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyEpisode(tt.isFiller, tt.isManga)
			if got != tt.want {
				t.Errorf("ClassifyEpisode(%v, %v) = %v, want %v", tt.isFiller, tt.isManga, got, tt.want)
			}
		})
	}
}

func TestEpisodeClassify(t *testing.T) {
	ep := Episode{AnimeID: 20, Number: 26, IsFiller: true}
	ep.Classify()
	if ep.EpisodeType != EpisodeFiller {
		t.Errorf("Classify() 得到 %v, want %v", ep.EpisodeType, EpisodeFiller)
	}
}
