package service

import (
	"errors"
	"testing"

	"github.com/user/anitrack/internal/apperr"
	"github.com/user/anitrack/internal/model"
)

type fakeClubStore struct {
	clubs   map[int]*model.Club
	members map[[2]int]string
	posts   []model.ClubPost
	nextID  int
}

func newFakeClubStore() *fakeClubStore {
	return &fakeClubStore{
		clubs:   make(map[int]*model.Club),
		members: make(map[[2]int]string),
		nextID:  1,
	}
}

func (f *fakeClubStore) Create(club *model.Club) error {
	club.ID = f.nextID
	f.nextID++
	f.clubs[club.ID] = club
	return nil
}

func (f *fakeClubStore) FindByID(id int) (*model.Club, error) {
	return f.clubs[id], nil
}

func (f *fakeClubStore) FindBrief(id int) (*model.Club, error) {
	return f.clubs[id], nil
}

func (f *fakeClubStore) ListPublic() ([]model.Club, error) {
	var out []model.Club
	for _, c := range f.clubs {
		if c.IsPublic {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeClubStore) FindMember(clubID, userID int) (*model.ClubMember, error) {
	role, ok := f.members[[2]int{clubID, userID}]
	if !ok {
		return nil, nil
	}
	return &model.ClubMember{ClubID: clubID, UserID: userID, Role: role}, nil
}

func (f *fakeClubStore) AddMember(clubID, userID int, role string) error {
	f.members[[2]int{clubID, userID}] = role
	return nil
}

func (f *fakeClubStore) CreatePost(post *model.ClubPost) error {
	post.ID = len(f.posts) + 1
	f.posts = append(f.posts, *post)
	return nil
}

func TestCreateClubOwnerMembership(t *testing.T) {
	clubs := newFakeClubStore()
	svc := NewClubService(clubs, &fakeActivityStore{})

	club, err := svc.Create(1, CreateClubInput{Name: "Shonen Fans"})
	if err != nil {
		t.Fatal(err)
	}
	if !club.IsPublic {
		t.Error("默认应是公开俱乐部")
	}
	if role := clubs.members[[2]int{club.ID, 1}]; role != model.ClubRoleOwner {
		t.Errorf("创建者应自动成为 OWNER, 得到 %q", role)
	}
}

func TestJoinClub(t *testing.T) {
	clubs := newFakeClubStore()
	activities := &fakeActivityStore{}
	svc := NewClubService(clubs, activities)

	club, err := svc.Create(1, CreateClubInput{Name: "Shonen Fans"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Join(club.ID, 2); err != nil {
		t.Fatal(err)
	}
	if role := clubs.members[[2]int{club.ID, 2}]; role != model.ClubRoleMember {
		t.Errorf("加入后应为 MEMBER, 得到 %q", role)
	}
	if activities.countOf(model.ActivityClubJoined) != 1 {
		t.Error("加入俱乐部应发一条 CLUB_JOINED 动态")
	}

	// 重复加入
	err = svc.Join(club.ID, 2)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("重复加入应返回 ErrConflict, 得到 %v", err)
	}
}

func TestJoinMissingClub(t *testing.T) {
	svc := NewClubService(newFakeClubStore(), &fakeActivityStore{})

	err := svc.Join(999, 1)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("不存在的俱乐部应返回 ErrNotFound, 得到 %v", err)
	}
}

func TestCreatePostRequiresMembership(t *testing.T) {
	clubs := newFakeClubStore()
	activities := &fakeActivityStore{}
	svc := NewClubService(clubs, activities)

	club, err := svc.Create(1, CreateClubInput{Name: "Shonen Fans"})
	if err != nil {
		t.Fatal(err)
	}

	// 非成员发帖
	_, err = svc.CreatePost(club.ID, 2, "大家好")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("非成员发帖应返回 ErrForbidden, 得到 %v", err)
	}

	// 成员发帖
	if err := svc.Join(club.ID, 2); err != nil {
		t.Fatal(err)
	}
	post, err := svc.CreatePost(club.ID, 2, "大家好")
	if err != nil {
		t.Fatal(err)
	}
	if post.ID == 0 {
		t.Error("帖子应有 ID")
	}
	if activities.countOf(model.ActivityClubPost) != 1 {
		t.Error("发帖应发一条 CLUB_POST 动态")
	}
}

func TestGetMissingClub(t *testing.T) {
	svc := NewClubService(newFakeClubStore(), &fakeActivityStore{})

	_, err := svc.Get(42)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("不存在的俱乐部应返回 ErrNotFound, 得到 %v", err)
	}
}
