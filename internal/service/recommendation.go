package service

import (
	"context"
	"log"
	"math"
	"sort"

	"github.com/user/anitrack/internal/cache"
	"github.com/user/anitrack/internal/model"
)

const (
	// maxNeighbors 参与推荐的相似用户上限
	maxNeighbors = 10
	// minCandidateScore 候选动画的最低评分
	minCandidateScore = 7
)

type ratingStore interface {
	RatingsByUser(userID int) ([]model.UserRating, error)
	RatingsForAnime(animeIDs []int, excludeUserID int) ([]model.UserRating, error)
	HighRatedByUsers(userIDs []int, excludeAnimeIDs []int, minScore int) ([]model.AnimeList, error)
}

type popularityStore interface {
	TopByPopularity(limit int) ([]model.Anime, error)
}

// RecommendationService 基于用户的协同过滤推荐
type RecommendationService struct {
	ratings ratingStore
	anime   popularityStore
	cache   cache.Store
}

// NewRecommendationService 创建推荐服务
func NewRecommendationService(ratings ratingStore, anime popularityStore, store cache.Store) *RecommendationService {
	return &RecommendationService{ratings: ratings, anime: anime, cache: store}
}

// Recommendation 一条推荐结果
type Recommendation struct {
	Anime *model.AnimeResponse `json:"anime"`
	Score float64              `json:"score"`
}

// neighbor 相似用户
type neighbor struct {
	userID     int
	similarity float64
}

// GetRecommendations 给用户生成推荐
// 冷启动用户（没有评分）回退到热门榜，回退结果不进缓存
// 缓存里放的是截断前的候选列表；条数不够本次 limit 时按未命中重算
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID, limit int) ([]Recommendation, error) {
	key := cache.KeyRecommendations(userID)
	var cached []Recommendation
	if s.cache.GetJSON(ctx, key, &cached) && len(cached) >= limit {
		return cached[:limit], nil
	}

	mine, err := s.ratings.RatingsByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(mine) == 0 {
		return s.popularityFallback(limit)
	}

	myRatings := make(map[int]int, len(mine))
	myAnimeIDs := make([]int, 0, len(mine))
	for _, r := range mine {
		myRatings[r.AnimeID] = r.Rating
		myAnimeIDs = append(myAnimeIDs, r.AnimeID)
	}

	others, err := s.ratings.RatingsForAnime(myAnimeIDs, userID)
	if err != nil {
		return nil, err
	}

	neighbors := s.rankNeighbors(myRatings, others)
	if len(neighbors) == 0 {
		return s.popularityFallback(limit)
	}

	recs, err := s.collectCandidates(neighbors, myAnimeIDs, limit)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return s.popularityFallback(limit)
	}

	s.cache.SetJSON(ctx, key, recs, cache.TTLRecommendations)
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// rankNeighbors 按共同评分计算余弦相似度并排序
// 相似度相同按 userID 升序，保证结果可复现
func (s *RecommendationService) rankNeighbors(myRatings map[int]int, others []model.UserRating) []neighbor {
	byUser := make(map[int]map[int]int)
	for _, r := range others {
		if byUser[r.UserID] == nil {
			byUser[r.UserID] = make(map[int]int)
		}
		byUser[r.UserID][r.AnimeID] = r.Rating
	}

	neighbors := make([]neighbor, 0, len(byUser))
	for uid, ratings := range byUser {
		sim := cosineSimilarity(myRatings, ratings)
		if sim > 0 {
			neighbors = append(neighbors, neighbor{userID: uid, similarity: sim})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].userID < neighbors[j].userID
	})
	if len(neighbors) > maxNeighbors {
		neighbors = neighbors[:maxNeighbors]
	}
	return neighbors
}

// collectCandidates 收集相似用户的高分动画并打分
// 推荐分 = 邻居评分 × 相似度，同一部动画取相似度最高的邻居
func (s *RecommendationService) collectCandidates(neighbors []neighbor, excludeAnimeIDs []int, limit int) ([]Recommendation, error) {
	simByUser := make(map[int]float64, len(neighbors))
	userIDs := make([]int, 0, len(neighbors))
	for _, n := range neighbors {
		simByUser[n.userID] = n.similarity
		userIDs = append(userIDs, n.userID)
	}

	entries, err := s.ratings.HighRatedByUsers(userIDs, excludeAnimeIDs, minCandidateScore)
	if err != nil {
		return nil, err
	}

	// HighRatedByUsers 不保证邻居顺序，按相似度高的邻居优先去重
	sort.SliceStable(entries, func(i, j int) bool {
		return simByUser[entries[i].UserID] > simByUser[entries[j].UserID]
	})

	seen := make(map[int]bool, len(entries))
	recs := make([]Recommendation, 0, 2*limit)
	for _, e := range entries {
		if seen[e.AnimeID] || e.Score == nil || e.Anime == nil {
			continue
		}
		seen[e.AnimeID] = true
		recs = append(recs, Recommendation{
			Anime: e.Anime.ForAPI(),
			Score: float64(*e.Score) * simByUser[e.UserID],
		})
		if len(recs) >= 2*limit {
			break
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	return recs, nil
}

// popularityFallback 热门榜兜底
func (s *RecommendationService) popularityFallback(limit int) ([]Recommendation, error) {
	top, err := s.anime.TopByPopularity(limit)
	if err != nil {
		return nil, err
	}
	recs := make([]Recommendation, 0, len(top))
	for i := range top {
		recs = append(recs, Recommendation{Anime: top[i].ForAPI(), Score: 0})
	}
	log.Printf("[Recommendation] 冷启动回退到热门榜，返回 %d 条", len(recs))
	return recs, nil
}

// cosineSimilarity 只在两个用户共同评分的动画上计算余弦相似度
func cosineSimilarity(a, b map[int]int) float64 {
	var dot, normA, normB float64
	for animeID, ra := range a {
		rb, ok := b[animeID]
		if !ok {
			continue
		}
		dot += float64(ra) * float64(rb)
		normA += float64(ra) * float64(ra)
		normB += float64(rb) * float64(rb)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
