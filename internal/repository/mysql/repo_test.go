package mysql

import (
	"context"
	"testing"
	"time"

	"Confizz/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func ptr(v uint64) *uint64 { return &v }

func seedConfession(t *testing.T, repo *ConfessionRepository, content string, at time.Time, author, community *uint64) *model.Confession {
	t.Helper()
	c := &model.Confession{Content: content, CreatedAt: at, AuthorID: author, CommunityID: community}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestCommunityRepository_Uniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Community{Name: "Books", Slug: "books", CreatorID: 1}))

	ok, err := repo.NameExists(ctx, "Books")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.SlugExists(ctx, "books-2")
	require.NoError(t, err)
	assert.False(t, ok)

	err = repo.Create(ctx, &model.Community{Name: "Books", Slug: "books-2", CreatorID: 2})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	_, err = repo.FindBySlug(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommunityRepository_NameCaseSensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Community{Name: "Books", Slug: "books", CreatorID: 1}))

	ok, err := repo.NameExists(ctx, "books")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Create(ctx, &model.Community{Name: "books", Slug: "books-2", CreatorID: 2}))
}

func TestCommunityRepository_ListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Community{Name: "Old", Slug: "old", CreatorID: 1, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &model.Community{Name: "New", Slug: "new", CreatorID: 1, CreatedAt: base.Add(time.Hour)}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Slug)
	assert.Equal(t, "old", list[1].Slug)
}

func TestCommunityRepository_DeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	communities := NewCommunityRepository(db)
	confessions := NewConfessionRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	books := &model.Community{Name: "Books", Slug: "books", CreatorID: 1}
	films := &model.Community{Name: "Films", Slug: "films", CreatorID: 1}
	require.NoError(t, communities.Create(ctx, books))
	require.NoError(t, communities.Create(ctx, films))

	inBooks := seedConfession(t, confessions, "I never finished it", base, nil, &books.ID)
	inFilms := seedConfession(t, confessions, "I cried", base, nil, &films.ID)
	global := seedConfession(t, confessions, "global", base, nil, nil)
	for _, id := range []uint64{inBooks.ID, inFilms.ID, global.ID} {
		require.NoError(t, comments.Create(ctx, &model.Comment{ConfessionID: id, Content: "same", CreatedAt: base}))
	}

	require.NoError(t, communities.DeleteCascade(ctx, books.ID))

	_, err := communities.FindBySlug(ctx, "books")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = confessions.FindByID(ctx, inBooks.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var orphanComments int64
	require.NoError(t, db.Model(&model.Comment{}).Where("confession_id = ?", inBooks.ID).Count(&orphanComments).Error)
	assert.Zero(t, orphanComments)

	for _, id := range []uint64{inFilms.ID, global.ID} {
		_, err := confessions.FindByID(ctx, id)
		assert.NoError(t, err)
		list, err := comments.ListByConfession(ctx, id)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}

	assert.ErrorIs(t, communities.DeleteCascade(ctx, books.ID), gorm.ErrRecordNotFound)
}

func TestConfessionRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConfessionRepository(db)
	ctx := context.Background()

	books := &model.Community{Name: "Books", Slug: "books", CreatorID: 1}
	require.NoError(t, NewCommunityRepository(db).Create(ctx, books))

	a := seedConfession(t, repo, "I ate the LAST cookie", base.Add(-48*time.Hour), ptr(1), nil)
	b := seedConfession(t, repo, "100% honest: cookies are overrated", base.Add(-time.Hour), ptr(2), &books.ID)
	c := seedConfession(t, repo, "snake_case forever", base, nil, &books.ID)

	list, err := repo.List(ctx, model.ConfessionFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint64{c.ID, b.ID, a.ID}, ids(list))

	list, err = repo.List(ctx, model.ConfessionFilter{Search: "COOKIE"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{b.ID, a.ID}, ids(list))

	list, err = repo.List(ctx, model.ConfessionFilter{Search: "cookie", Since: base.Add(-2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, []uint64{b.ID}, ids(list))

	list, err = repo.List(ctx, model.ConfessionFilter{AuthorID: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint64{a.ID}, ids(list))

	list, err = repo.List(ctx, model.ConfessionFilter{CommunityID: books.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint64{c.ID, b.ID}, ids(list))
}

func TestConfessionRepository_SearchEscapesWildcards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConfessionRepository(db)
	ctx := context.Background()

	pct := seedConfession(t, repo, "100% honest", base, nil, nil)
	seedConfession(t, repo, "1000 honest people", base, nil, nil)
	under := seedConfession(t, repo, "snake_case", base.Add(time.Second), nil, nil)
	seedConfession(t, repo, "snakeXcase", base, nil, nil)
	bang := seedConfession(t, repo, "wow! really", base, nil, nil)

	list, err := repo.List(ctx, model.ConfessionFilter{Search: "0%"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{pct.ID}, ids(list))

	list, err = repo.List(ctx, model.ConfessionFilter{Search: "e_c"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{under.ID}, ids(list))

	list, err = repo.List(ctx, model.ConfessionFilter{Search: "w!"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{bang.ID}, ids(list))
}

func TestForeignKeys(t *testing.T) {
	db := setupTestDB(t)
	communities := NewCommunityRepository(db)
	confessions := NewConfessionRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	err := comments.Create(ctx, &model.Comment{ConfessionID: 404, Content: "lost", CreatedAt: base})
	assert.Error(t, err)
	err = confessions.Create(ctx, &model.Confession{Content: "nowhere", CreatedAt: base, CommunityID: ptr(404)})
	assert.Error(t, err)

	// 绕过 DeleteCascade 直接删社区，数据库自己级联
	books := &model.Community{Name: "Books", Slug: "books", CreatorID: 1}
	require.NoError(t, communities.Create(ctx, books))
	conf := seedConfession(t, confessions, "I never finished it", base, nil, &books.ID)
	require.NoError(t, comments.Create(ctx, &model.Comment{ConfessionID: conf.ID, Content: "same", CreatedAt: base}))

	require.NoError(t, db.Exec("DELETE FROM communities WHERE id = ?", books.ID).Error)

	_, err = confessions.FindByID(ctx, conf.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	var left int64
	require.NoError(t, db.Model(&model.Comment{}).Where("confession_id = ?", conf.ID).Count(&left).Error)
	assert.Zero(t, left)
}

func TestCommentRepository_OldestFirst(t *testing.T) {
	db := setupTestDB(t)
	confessions := NewConfessionRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	conf := seedConfession(t, confessions, "hi", base, nil, nil)
	require.NoError(t, comments.Create(ctx, &model.Comment{ConfessionID: conf.ID, Content: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, comments.Create(ctx, &model.Comment{ConfessionID: conf.ID, Content: "first", CreatedAt: base}))

	list, err := comments.ListByConfession(ctx, conf.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "second", list[1].Content)
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &model.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))

	byName, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	byEmail, err := repo.FindByLogin(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byEmail.ID)

	exists, err := repo.Exists(ctx, "bob", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, &model.User{Username: "alice", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "new-hash"))
	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.Password)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func ids(list []model.Confession) []uint64 {
	out := make([]uint64, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}
