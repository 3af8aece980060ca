package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/anitrack/internal/apperr"
	"github.com/user/anitrack/internal/cache"
	"github.com/user/anitrack/internal/model"
)

// fakeCache 进程内假缓存，记录删除过的键
type fakeCache struct {
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) bool {
	b, ok := f.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(b, dest) == nil
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	f.data[key] = b
}

func (f *fakeCache) Delete(_ context.Context, key string) {
	delete(f.data, key)
	f.deleted = append(f.deleted, key)
}

func (f *fakeCache) InvalidatePattern(_ context.Context, pattern string) {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
			f.deleted = append(f.deleted, key)
		}
	}
}

// fakeListStore 内存追番存储
type fakeListStore struct {
	entries map[[2]int]*model.AnimeList
	findErr error
}

func newFakeListStore() *fakeListStore {
	return &fakeListStore{entries: make(map[[2]int]*model.AnimeList)}
}

func (f *fakeListStore) Find(userID, animeID int) (*model.AnimeList, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	entry, ok := f.entries[[2]int{userID, animeID}]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (f *fakeListStore) Create(entry *model.AnimeList) error {
	cp := *entry
	f.entries[[2]int{entry.UserID, entry.AnimeID}] = &cp
	return nil
}

func (f *fakeListStore) Save(entry *model.AnimeList) error {
	return f.Create(entry)
}

func (f *fakeListStore) Delete(userID, animeID int) error {
	delete(f.entries, [2]int{userID, animeID})
	return nil
}

func (f *fakeListStore) ListByUser(userID int, status model.ListStatus) ([]model.AnimeList, error) {
	var out []model.AnimeList
	for _, e := range f.entries {
		if e.UserID == userID && (status == "" || e.Status == status) {
			out = append(out, *e)
		}
	}
	return out, nil
}

// fakeActivityStore 记录发出的动态
type fakeActivityStore struct {
	recorded []model.Activity
}

func (f *fakeActivityStore) Record(userID int, typ model.ActivityType, metadata model.JSONMap) error {
	f.recorded = append(f.recorded, model.Activity{UserID: userID, Type: typ, Metadata: metadata})
	return nil
}

func (f *fakeActivityStore) countOf(typ model.ActivityType) int {
	n := 0
	for _, a := range f.recorded {
		if a.Type == typ {
			n++
		}
	}
	return n
}

// fakeAnimeProvider 固定返回同一部动画
type fakeAnimeProvider struct {
	anime *model.Anime
	err   error
}

func (f *fakeAnimeProvider) GetAnime(_ context.Context, id int) (*model.Anime, FetchSource, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.anime, SourceMirror, nil
}

func testAnime(id, episodes int) *model.Anime {
	return &model.Anime{
		ID:           id,
		TitleRomaji:  "Test Anime",
		EpisodeCount: episodes,
		CachedAt:     time.Now(),
	}
}

func newTestListService(lists *fakeListStore, activities *fakeActivityStore, anime *model.Anime) (*ListService, *fakeCache) {
	fc := newFakeCache()
	svc := NewListService(lists, activities, &fakeAnimeProvider{anime: anime}, fc)
	return svc, fc
}

func seedEntry(lists *fakeListStore, userID int, anime *model.Anime, status model.ListStatus, progress int) {
	lists.entries[[2]int{userID, anime.ID}] = &model.AnimeList{
		UserID:   userID,
		AnimeID:  anime.ID,
		Status:   status,
		Progress: progress,
		Anime:    anime,
	}
}

func TestCreateDuplicateConflict(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	anime := testAnime(20, 220)
	svc, _ := newTestListService(lists, activities, anime)

	seedEntry(lists, 1, anime, model.StatusWatching, 5)

	_, err := svc.Create(context.Background(), 1, CreateListInput{AnimeID: 20, Status: model.StatusWatching})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("重复添加应返回 ErrConflict, 得到 %v", err)
	}
}

func TestCreateWatchingSetsStartedAt(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	anime := testAnime(20, 220)
	svc, _ := newTestListService(lists, activities, anime)

	entry, err := svc.Create(context.Background(), 1, CreateListInput{AnimeID: 20, Status: model.StatusWatching})
	if err != nil {
		t.Fatal(err)
	}
	if entry.StartedAt == nil {
		t.Error("WATCHING 状态创建时应记 startedAt")
	}
	if entry.CompletedAt != nil {
		t.Error("非 COMPLETED 状态不应记 completedAt")
	}
	if activities.countOf(model.ActivityListUpdate) != 1 {
		t.Error("创建条目应发一条 LIST_UPDATE 动态")
	}
}

func TestCreateCompletedSetsCompletedAt(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	anime := testAnime(1, 26)
	svc, _ := newTestListService(lists, activities, anime)

	entry, err := svc.Create(context.Background(), 1, CreateListInput{AnimeID: 1, Status: model.StatusCompleted})
	if err != nil {
		t.Fatal(err)
	}
	if entry.CompletedAt == nil {
		t.Error("COMPLETED 状态创建时应记 completedAt")
	}
}

func TestSetProgressClampsToTotal(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	anime := testAnime(100, 12)
	svc, _ := newTestListService(lists, activities, anime)
	seedEntry(lists, 1, anime, model.StatusWatching, 10)

	entry, err := svc.SetProgress(1, 100, 15)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Progress != 12 {
		t.Errorf("进度应夹取到 12, 得到 %d", entry.Progress)
	}
	if entry.Status != model.StatusCompleted {
		t.Errorf("追平总集数应转 COMPLETED, 得到 %s", entry.Status)
	}
	if entry.CompletedAt == nil {
		t.Error("转 COMPLETED 时应记 completedAt")
	}
	if activities.countOf(model.ActivityAnimeCompleted) != 1 {
		t.Error("完结应发一条 ANIME_COMPLETED 动态")
	}
}

func TestSetProgressClampsNegative(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	anime := testAnime(100, 12)
	svc, _ := newTestListService(lists, activities, anime)
	seedEntry(lists, 1, anime, model.StatusWatching, 5)

	entry, err := svc.SetProgress(1, 100, -3)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Progress != 0 {
		t.Errorf("负进度应夹取到 0, 得到 %d", entry.Progress)
	}
	if entry.StartedAt != nil {
		t.Error("进度为 0 不应补记 startedAt")
	}
}

func TestSetProgressPlanToWatchBecomesWatching(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	anime := testAnime(100, 12)
	svc, _ := newTestListService(lists, activities, anime)
	seedEntry(lists, 1, anime, model.StatusPlanToWatch, 0)

	entry, err := svc.SetProgress(1, 100, 3)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Status != model.StatusWatching {
		t.Errorf("有进度的 PLAN_TO_WATCH 应转 WATCHING, 得到 %s", entry.Status)
	}
	if entry.StartedAt == nil {
		t.Error("首次产生进度应记 startedAt")
	}
}

func TestSetProgressUnknownTotalNoCompletion(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	// 连载中动画总集数未知
	anime := testAnime(100, 0)
	svc, _ := newTestListService(lists, activities, anime)
	seedEntry(lists, 1, anime, model.StatusWatching, 100)

	entry, err := svc.SetProgress(1, 100, 500)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Progress != 500 {
		t.Errorf("总集数未知时不应做上限夹取, 得到 %d", entry.Progress)
	}
	if entry.Status != model.StatusWatching {
		t.Errorf("总集数未知时不应自动完结, 得到 %s", entry.Status)
	}
}

func TestSetProgressIdempotent(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	anime := testAnime(100, 12)
	svc, _ := newTestListService(lists, activities, anime)
	seedEntry(lists, 1, anime, model.StatusWatching, 0)

	first, err := svc.SetProgress(1, 100, 5)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.SetProgress(1, 100, 5)
	if err != nil {
		t.Fatal(err)
	}

	if second.Progress != first.Progress || second.Status != first.Status {
		t.Errorf("重复设置同一进度应得到相同状态: 第一次 %s/%d, 第二次 %s/%d",
			first.Status, first.Progress, second.Status, second.Progress)
	}
	if first.StartedAt == nil || second.StartedAt == nil || !second.StartedAt.Equal(*first.StartedAt) {
		t.Error("startedAt 一旦记下就不应再变")
	}
	// 未完结的进度更新不发任何动态
	if len(activities.recorded) != 0 {
		t.Errorf("未完结的进度更新不应发动态, 发了 %d 条", len(activities.recorded))
	}
}

func TestSetProgressMissingEntry(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	svc, _ := newTestListService(lists, activities, testAnime(100, 12))

	_, err := svc.SetProgress(1, 100, 3)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("条目不存在应返回 ErrNotFound, 得到 %v", err)
	}
}

func TestUpdateStatusCompleted(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	anime := testAnime(100, 12)
	svc, _ := newTestListService(lists, activities, anime)
	seedEntry(lists, 1, anime, model.StatusWatching, 8)

	completed := model.StatusCompleted
	entry, err := svc.Update(1, 100, UpdateListInput{Status: &completed})
	if err != nil {
		t.Fatal(err)
	}
	if entry.CompletedAt == nil {
		t.Error("改成 COMPLETED 应记 completedAt")
	}
	if activities.countOf(model.ActivityAnimeCompleted) != 1 {
		t.Error("应发一条 ANIME_COMPLETED 动态")
	}

	// 改回 WATCHING 要清掉 completedAt
	watching := model.StatusWatching
	entry, err = svc.Update(1, 100, UpdateListInput{Status: &watching})
	if err != nil {
		t.Fatal(err)
	}
	if entry.CompletedAt != nil {
		t.Error("改回非 COMPLETED 状态应清掉 completedAt")
	}
}

func TestUpdateScoreInvalidatesRecommendations(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	anime := testAnime(100, 12)
	svc, fc := newTestListService(lists, activities, anime)
	seedEntry(lists, 1, anime, model.StatusCompleted, 12)

	score := 9
	if _, err := svc.Update(1, 100, UpdateListInput{Score: &score}); err != nil {
		t.Fatal(err)
	}

	want := cache.KeyRecommendations(1)
	found := false
	for _, key := range fc.deleted {
		if key == want {
			found = true
		}
	}
	if !found {
		t.Errorf("评分变更应删除推荐缓存键 %s, 实际删除 %v", want, fc.deleted)
	}
}

func TestCreateActivityTitleFallback(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	// 只有英文标题的条目
	anime := &model.Anime{ID: 50, TitleEnglish: "Attack on Titan", EpisodeCount: 25}
	svc, _ := newTestListService(lists, activities, anime)

	if _, err := svc.Create(context.Background(), 1, CreateListInput{AnimeID: 50, Status: model.StatusWatching}); err != nil {
		t.Fatal(err)
	}

	if len(activities.recorded) != 1 {
		t.Fatalf("应发 1 条动态, 得到 %d", len(activities.recorded))
	}
	if got := activities.recorded[0].Metadata["animeTitle"]; got != "Attack on Titan" {
		t.Errorf("罗马字为空时标题应回退到英文, 得到 %v", got)
	}
}

func TestDeleteMissingNotFound(t *testing.T) {
	lists := newFakeListStore()
	activities := &fakeActivityStore{}
	svc, _ := newTestListService(lists, activities, testAnime(100, 12))

	err := svc.Delete(1, 100)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("删除不存在的条目应返回 ErrNotFound, 得到 %v", err)
	}
}
