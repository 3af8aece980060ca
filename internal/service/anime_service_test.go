package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/user/anitrack/internal/apperr"
	"github.com/user/anitrack/internal/model"
)

type fakeCatalog struct {
	media *AniListMedia
	err   error
	calls int
}

func (f *fakeCatalog) GetAnimeByID(_ context.Context, id int) (*AniListMedia, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.media, nil
}

type fakeAnimeStore struct {
	found     *model.Anime
	findErr   error
	upsertErr error
	upserted  *model.Anime
}

func (f *fakeAnimeStore) FindByID(id int) (*model.Anime, error) {
	return f.found, f.findErr
}

func (f *fakeAnimeStore) Upsert(anime *model.Anime) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = anime
	return nil
}

// fakeEpisodeBackfill 需要并发安全：补录在后台 goroutine 里跑
type fakeEpisodeBackfill struct {
	mu           sync.Mutex
	episodes     []model.Episode
	streaming    []model.Episode
	placeholders []model.Episode
}

func (f *fakeEpisodeBackfill) CountByAnime(animeID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.episodes) + len(f.streaming), nil
}

func (f *fakeEpisodeBackfill) ListByAnime(animeID int) ([]model.Episode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.episodes, nil
}

func (f *fakeEpisodeBackfill) UpsertStreaming(ep *model.Episode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streaming = append(f.streaming, *ep)
	return nil
}

func (f *fakeEpisodeBackfill) CreatePlaceholders(episodes []model.Episode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placeholders = append(f.placeholders, episodes...)
	return nil
}

func testMedia(id, episodes int) *AniListMedia {
	return &AniListMedia{
		ID:       id,
		Title:    model.TitleSet{Romaji: "Test Anime"},
		Episodes: episodes,
	}
}

func TestGetAnimeFreshMirror(t *testing.T) {
	fresh := testAnime(20, 220)
	fresh.CachedAt = time.Now().Add(-1 * time.Hour)
	fresh.EpisodeList = []model.Episode{{AnimeID: 20, Number: 1, IsFiller: true}}

	catalog := &fakeCatalog{}
	svc := NewAnimeService(catalog, &fakeAnimeStore{found: fresh}, &fakeEpisodeBackfill{})

	anime, source, err := svc.GetAnime(context.Background(), 20)
	if err != nil {
		t.Fatal(err)
	}
	if source != SourceMirror {
		t.Errorf("新鲜镜像应返回 SourceMirror, 得到 %s", source)
	}
	if catalog.calls != 0 {
		t.Error("镜像命中时不应触达上游")
	}
	// 返回前要补派生类型
	if anime.EpisodeList[0].EpisodeType != model.EpisodeFiller {
		t.Error("返回的单集应带派生类型")
	}
}

func TestGetAnimeStaleMirrorRefetches(t *testing.T) {
	stale := testAnime(20, 220)
	stale.CachedAt = time.Now().Add(-48 * time.Hour)

	store := &fakeAnimeStore{found: stale}
	catalog := &fakeCatalog{media: testMedia(20, 220)}
	svc := NewAnimeService(catalog, store, &fakeEpisodeBackfill{})

	_, source, err := svc.GetAnime(context.Background(), 20)
	if err != nil {
		t.Fatal(err)
	}
	if source != SourceUpstream {
		t.Errorf("过期镜像应回源, 得到 %s", source)
	}
	if catalog.calls != 1 {
		t.Errorf("应触达上游 1 次, 实际 %d 次", catalog.calls)
	}
	if store.upserted == nil {
		t.Error("回源结果应写入镜像")
	}
}

func TestGetAnimeUpstreamErrorPropagates(t *testing.T) {
	catalog := &fakeCatalog{err: apperr.Upstreamf("AniList 挂了")}
	svc := NewAnimeService(catalog, &fakeAnimeStore{}, &fakeEpisodeBackfill{})

	_, _, err := svc.GetAnime(context.Background(), 20)
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("上游错误应向上传播, 得到 %v", err)
	}
}

func TestGetAnimeMirrorWriteFailure(t *testing.T) {
	store := &fakeAnimeStore{upsertErr: errors.New("磁盘满了")}
	catalog := &fakeCatalog{media: testMedia(20, 220)}
	svc := NewAnimeService(catalog, store, &fakeEpisodeBackfill{})

	anime, source, err := svc.GetAnime(context.Background(), 20)
	if err != nil {
		t.Fatalf("镜像写失败不应拦截响应: %v", err)
	}
	if source != SourceUpstreamUncommitted {
		t.Errorf("写失败应标记 SourceUpstreamUncommitted, 得到 %s", source)
	}
	if anime == nil || anime.ID != 20 {
		t.Error("写失败时应原样返回上游数据")
	}
}

func TestGetAnimeMirrorReadFailureFallsThrough(t *testing.T) {
	store := &fakeAnimeStore{findErr: errors.New("连接中断")}
	catalog := &fakeCatalog{media: testMedia(20, 220)}
	svc := NewAnimeService(catalog, store, &fakeEpisodeBackfill{})

	_, source, err := svc.GetAnime(context.Background(), 20)
	if err != nil {
		t.Fatalf("镜像读失败应降级回源: %v", err)
	}
	if source != SourceUpstream {
		t.Errorf("读失败降级后应为 SourceUpstream, 得到 %s", source)
	}
}

func TestBackfillEpisodesFromStreaming(t *testing.T) {
	episodes := &fakeEpisodeBackfill{}
	svc := NewAnimeService(&fakeCatalog{}, &fakeAnimeStore{}, episodes)

	media := testMedia(20, 220)
	media.StreamingEpisodes = []StreamingEpisode{
		{Title: "Episode 1 - Enter: Naruto Uzumaki!", URL: "https://example.com/1"},
		{Title: "Episode 2 - My Name is Konohamaru!", URL: "https://example.com/2"},
		{Title: "Recap Special", URL: "https://example.com/sp"},
	}

	if err := svc.BackfillEpisodes(20, media); err != nil {
		t.Fatal(err)
	}

	if len(episodes.streaming) != 2 {
		t.Fatalf("标题能解析出集数的应有 2 条, 得到 %d", len(episodes.streaming))
	}
	if episodes.streaming[0].Number != 1 || episodes.streaming[1].Number != 2 {
		t.Errorf("集数解析错误: %d, %d", episodes.streaming[0].Number, episodes.streaming[1].Number)
	}
	if len(episodes.placeholders) != 0 {
		t.Error("已有流媒体单集时不应补占位")
	}
}

func TestBackfillEpisodesPlaceholders(t *testing.T) {
	episodes := &fakeEpisodeBackfill{}
	svc := NewAnimeService(&fakeCatalog{}, &fakeAnimeStore{}, episodes)

	if err := svc.BackfillEpisodes(7, testMedia(7, 5)); err != nil {
		t.Fatal(err)
	}

	if len(episodes.placeholders) != 5 {
		t.Fatalf("应补 5 条占位单集, 得到 %d", len(episodes.placeholders))
	}
	if episodes.placeholders[0].Title != "Episode 1" || episodes.placeholders[4].Title != "Episode 5" {
		t.Errorf("占位标题错误: %q, %q", episodes.placeholders[0].Title, episodes.placeholders[4].Title)
	}
}

func TestBackfillEpisodesUnknownTotal(t *testing.T) {
	episodes := &fakeEpisodeBackfill{}
	svc := NewAnimeService(&fakeCatalog{}, &fakeAnimeStore{}, episodes)

	// 总集数未知（连载中）时不补占位
	if err := svc.BackfillEpisodes(7, testMedia(7, 0)); err != nil {
		t.Fatal(err)
	}
	if len(episodes.placeholders) != 0 {
		t.Errorf("总集数未知时不应补占位, 得到 %d 条", len(episodes.placeholders))
	}
}
