package service

import (
	"context"
	"errors"
	"testing"

	"github.com/user/anitrack/internal/apperr"
	"github.com/user/anitrack/internal/model"
)

type fakeEpisodeStore struct {
	episodes     map[int][]model.Episode
	flags        map[[2]int][2]bool
	streaming    []model.Episode
	placeholders []model.Episode
	upsertErr    error
}

func newFakeEpisodeStore() *fakeEpisodeStore {
	return &fakeEpisodeStore{
		episodes: make(map[int][]model.Episode),
		flags:    make(map[[2]int][2]bool),
	}
}

func (f *fakeEpisodeStore) ListByAnime(animeID int) ([]model.Episode, error) {
	return f.episodes[animeID], nil
}

func (f *fakeEpisodeStore) FindByNumber(animeID, number int) (*model.Episode, error) {
	for _, ep := range f.episodes[animeID] {
		if ep.Number == number {
			cp := ep
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeEpisodeStore) CountByAnime(animeID int) (int, error) {
	return len(f.episodes[animeID]), nil
}

func (f *fakeEpisodeStore) UpsertStreaming(ep *model.Episode) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.streaming = append(f.streaming, *ep)
	return nil
}

func (f *fakeEpisodeStore) UpsertFlags(animeID, number int, isFiller, isManga bool) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.flags[[2]int{animeID, number}] = [2]bool{isFiller, isManga}
	return nil
}

func (f *fakeEpisodeStore) CreatePlaceholders(episodes []model.Episode) error {
	f.placeholders = append(f.placeholders, episodes...)
	return nil
}

type fakeMirrorStore struct {
	found      *model.Anime
	nextAiring *model.AiringPointer
}

func (f *fakeMirrorStore) FindByID(id int) (*model.Anime, error) {
	return f.found, nil
}

func (f *fakeMirrorStore) UpdateNextAiring(id int, next *model.AiringPointer) error {
	f.nextAiring = next
	return nil
}

type fakeFillerSource struct {
	data []FillerEpisode
}

func (f *fakeFillerSource) GetFillerEpisodes(_ context.Context, animeSlug string) []FillerEpisode {
	return f.data
}

func TestListByAnimeClassifies(t *testing.T) {
	episodes := newFakeEpisodeStore()
	episodes.episodes[20] = []model.Episode{
		{AnimeID: 20, Number: 1},
		{AnimeID: 20, Number: 26, IsFiller: true},
	}
	svc := NewEpisodeService(episodes, &fakeMirrorStore{}, &fakeCatalog{}, &fakeFillerSource{})

	got, err := svc.ListByAnime(20)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].EpisodeType != model.EpisodeCanon || got[1].EpisodeType != model.EpisodeFiller {
		t.Errorf("单集应带派生类型: %+v", got)
	}
}

func TestGetByNumberNotFound(t *testing.T) {
	svc := NewEpisodeService(newFakeEpisodeStore(), &fakeMirrorStore{}, &fakeCatalog{}, &fakeFillerSource{})

	_, err := svc.GetByNumber(20, 999)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("不存在的单集应返回 ErrNotFound, 得到 %v", err)
	}
}

func TestNextAiring(t *testing.T) {
	anime := testAnime(20, 0)
	anime.NextAiring = &model.AiringPointer{Episode: 1090, AiringAt: 1756684800}
	svc := NewEpisodeService(newFakeEpisodeStore(), &fakeMirrorStore{found: anime}, &fakeCatalog{}, &fakeFillerSource{})

	next, err := svc.NextAiring(20)
	if err != nil {
		t.Fatal(err)
	}
	if next == nil || next.Episode != 1090 {
		t.Errorf("放送指针错误: %+v", next)
	}
}

func TestNextAiringMissingAnime(t *testing.T) {
	svc := NewEpisodeService(newFakeEpisodeStore(), &fakeMirrorStore{}, &fakeCatalog{}, &fakeFillerSource{})

	_, err := svc.NextAiring(20)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("镜像里没有的动画应返回 ErrNotFound, 得到 %v", err)
	}
}

func TestSyncFillerData(t *testing.T) {
	episodes := newFakeEpisodeStore()
	filler := &fakeFillerSource{data: []FillerEpisode{
		{EpisodeNumber: 1, IsFiller: false, IsManga: true},
		{EpisodeNumber: 26, IsFiller: true},
	}}
	svc := NewEpisodeService(episodes, &fakeMirrorStore{}, &fakeCatalog{}, filler)

	result, err := svc.SyncFillerData(context.Background(), 20, "naruto")
	if err != nil {
		t.Fatal(err)
	}
	if result.Synced != 2 {
		t.Errorf("应同步 2 集, 得到 %d", result.Synced)
	}
	if got := episodes.flags[[2]int{20, 26}]; !got[0] {
		t.Error("第 26 集应写入 filler 标记")
	}
	if got := episodes.flags[[2]int{20, 1}]; got[0] || !got[1] {
		t.Error("第 1 集应写入 manga 标记")
	}
}

func TestSyncFillerDataEmpty(t *testing.T) {
	svc := NewEpisodeService(newFakeEpisodeStore(), &fakeMirrorStore{}, &fakeCatalog{}, &fakeFillerSource{})

	result, err := svc.SyncFillerData(context.Background(), 20, "unknown-show")
	if err != nil {
		t.Fatal(err)
	}
	if result.Synced != 0 {
		t.Errorf("没有数据时 synced 应为 0, 得到 %d", result.Synced)
	}
}

func TestSyncFromCatalogStreaming(t *testing.T) {
	episodes := newFakeEpisodeStore()
	media := testMedia(20, 220)
	media.StreamingEpisodes = []StreamingEpisode{
		{Title: "Episode 1 - Enter: Naruto Uzumaki!"},
		{Title: "Episode 2 - My Name is Konohamaru!"},
	}
	media.NextAiringEpisode = &model.AiringPointer{Episode: 221, AiringAt: 1756684800}

	mirror := &fakeMirrorStore{}
	svc := NewEpisodeService(episodes, mirror, &fakeCatalog{media: media}, &fakeFillerSource{})

	result, err := svc.SyncFromCatalog(context.Background(), 20)
	if err != nil {
		t.Fatal(err)
	}
	if result.Synced != 2 {
		t.Errorf("应同步 2 集, 得到 %d", result.Synced)
	}
	if mirror.nextAiring == nil || mirror.nextAiring.Episode != 221 {
		t.Error("应更新下一集放送指针")
	}
}

func TestSyncFromCatalogPlaceholders(t *testing.T) {
	episodes := newFakeEpisodeStore()
	svc := NewEpisodeService(episodes, &fakeMirrorStore{}, &fakeCatalog{media: testMedia(7, 13)}, &fakeFillerSource{})

	result, err := svc.SyncFromCatalog(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if result.Synced != 13 {
		t.Errorf("没有流媒体单集时应按总集数补占位, 得到 %d", result.Synced)
	}
	if len(episodes.placeholders) != 13 {
		t.Errorf("应有 13 条占位, 得到 %d", len(episodes.placeholders))
	}
}

func TestSyncFromCatalogUpstreamError(t *testing.T) {
	svc := NewEpisodeService(newFakeEpisodeStore(), &fakeMirrorStore{}, &fakeCatalog{err: apperr.Upstreamf("超时")}, &fakeFillerSource{})

	_, err := svc.SyncFromCatalog(context.Background(), 20)
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("上游错误应向上传播, 得到 %v", err)
	}
}
