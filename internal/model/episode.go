package model

// EpisodeType 单集类型（由 isFiller/isManga 两个布尔值派生，不落库）
type EpisodeType string

const (
	EpisodeCanon  EpisodeType = "CANON"
	EpisodeFiller EpisodeType = "FILLER"
	EpisodeMixed  EpisodeType = "MIXED"
)

// ClassifyEpisode 根据原作/填充标记推导单集类型
// - isFiller = true 时恒为 FILLER
// - 仅 isManga = true 时为 MIXED（漫画原创或混合内容）
// - 两者皆否为 CANON
func ClassifyEpisode(isFiller, isManga bool) EpisodeType {
	if isFiller {
		return EpisodeFiller
	}
	if isManga {
		return EpisodeMixed
	}
	return EpisodeCanon
}

// Episode 单集模型，(animeId, number) 为联合主键
type Episode struct {
	AnimeID      int         `json:"animeId" gorm:"primaryKey;autoIncrement:false;column:anime_id"`
	Number       int         `json:"number" gorm:"primaryKey;autoIncrement:false"`
	Title        string      `json:"title"`
	Thumbnail    string      `json:"thumbnail"`
	StreamingURL string      `json:"streamingUrl" gorm:"column:streaming_url"`
	IsFiller     bool        `json:"isFiller" gorm:"column:is_filler"`
	IsManga      bool        `json:"isManga" gorm:"column:is_manga"`
	EpisodeType  EpisodeType `json:"episodeType" gorm:"-"`
}

// Classify 填充派生的 episodeType 字段，所有对外返回单集的出口都必须经过这里
func (e *Episode) Classify() {
	e.EpisodeType = ClassifyEpisode(e.IsFiller, e.IsManga)
}
