package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"Confizz/internal/model"
	redisrepo "Confizz/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memDB 内存版存储，错误语义与 gorm 仓储保持一致
type memDB struct {
	mu          sync.Mutex
	seq         uint64
	users       map[uint64]model.User
	communities map[uint64]model.Community
	confessions map[uint64]model.Confession
	comments    map[uint64]model.Comment
	failDelete  error
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[uint64]model.User{},
		communities: map[uint64]model.Community{},
		confessions: map[uint64]model.Confession{},
		comments:    map[uint64]model.Comment{},
	}
}

func (m *memDB) nextID() uint64 {
	m.seq++
	return m.seq
}

type memCommunities struct{ *memDB }

func (s memCommunities) Create(_ context.Context, c *model.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.communities {
		if x.Name == c.Name || x.Slug == c.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = s.nextID()
	s.communities[c.ID] = *c
	return nil
}

func (s memCommunities) FindBySlug(_ context.Context, slug string) (*model.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.communities {
		if x.Slug == slug {
			return &x, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s memCommunities) NameExists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.communities {
		if x.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s memCommunities) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.FindBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s memCommunities) List(_ context.Context) ([]model.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]model.Community, 0, len(s.communities))
	for _, x := range s.communities {
		list = append(list, x)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (s memCommunities) DeleteCascade(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	if _, ok := s.communities[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for cid, conf := range s.confessions {
		if conf.CommunityID == nil || *conf.CommunityID != id {
			continue
		}
		for mid, cm := range s.comments {
			if cm.ConfessionID == cid {
				delete(s.comments, mid)
			}
		}
		delete(s.confessions, cid)
	}
	delete(s.communities, id)
	return nil
}

type memConfessions struct{ *memDB }

func (s memConfessions) Create(_ context.Context, c *model.Confession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID()
	s.confessions[c.ID] = *c
	return nil
}

func (s memConfessions) FindByID(_ context.Context, id uint64) (*model.Confession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (s memConfessions) List(_ context.Context, f model.ConfessionFilter) ([]model.Confession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.Confession
	for _, c := range s.confessions {
		if f.AuthorID != 0 && (c.AuthorID == nil || *c.AuthorID != f.AuthorID) {
			continue
		}
		if f.CommunityID != 0 && (c.CommunityID == nil || *c.CommunityID != f.CommunityID) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Content), strings.ToLower(f.Search)) {
			continue
		}
		if !f.Since.IsZero() && c.CreatedAt.Before(f.Since) {
			continue
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

type memComments struct{ *memDB }

func (s memComments) Create(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID()
	s.comments[c.ID] = *c
	return nil
}

func (s memComments) ListByConfession(_ context.Context, confessionID uint64) ([]model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.Comment
	for _, c := range s.comments {
		if c.ConfessionID == confessionID {
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

type memUsers struct{ *memDB }

func (s memUsers) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.users {
		if x.Username == u.Username || x.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = s.nextID()
	s.users[u.ID] = *u
	return nil
}

func (s memUsers) find(match func(model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.users {
		if match(x) {
			return &x, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s memUsers) FindByLogin(_ context.Context, login string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Username == login || u.Email == login })
}

func (s memUsers) FindByID(_ context.Context, id uint64) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

func (s memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Email == email })
}

func (s memUsers) Exists(_ context.Context, username, email string) (bool, error) {
	_, err := s.find(func(u model.User) bool { return u.Username == username || u.Email == email })
	return err == nil, nil
}

func (s memUsers) UpdatePassword(_ context.Context, userID uint64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hash
	s.users[userID] = u
	return nil
}

// fixedClock 供 now 注入
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fakeMailer struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (m *fakeMailer) Send(to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[to] = body
	return nil
}

type fakeGateway struct {
	calls int
	reply string
	err   error
}

func (g *fakeGateway) Summarize(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.reply, g.err
}

func newRedisStores(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *redisrepo.TokenRepository, *redisrepo.ResetCodeRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := redisrepo.NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, redisrepo.NewTokenRepository(rdb, ttl, 24*time.Hour), redisrepo.NewResetCodeRepository(rdb)
}

func zapNop() *zap.Logger {
	return zap.NewNop()
}
