package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quillhub/quill/internal/cache"
	"github.com/quillhub/quill/internal/db"
	"github.com/quillhub/quill/internal/models"
	"github.com/quillhub/quill/pkg/config"
)

type testServer struct {
	engine *gin.Engine
	router *Router
	gdb    *gorm.DB
	repo   *db.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	cfg := &config.Config{
		App: config.AppConfig{
			PageSize:      10,
			IndexCacheTTL: 200 * time.Millisecond,
		},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
	}

	router := NewRouter(gdb, cache.NewMemory(), cfg)
	engine := gin.New()
	router.SetupRoutes(engine)

	return &testServer{
		engine: engine,
		router: router,
		gdb:    gdb,
		repo:   db.NewRepository(gdb),
	}
}

func (s *testServer) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.NewUserRepository(s.repo).Create(context.Background(), user))
	return user
}

func (s *testServer) createPost(t *testing.T, author *models.User, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	require.NoError(t, db.NewPostRepository(s.repo).Create(context.Background(), post))
	return post
}

func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := s.router.Tokens().Issue(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) postForm(path, token string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) postCount(t *testing.T) int64 {
	t.Helper()
	count, err := db.NewPostRepository(s.repo).Count(context.Background(), db.PostFilter{})
	require.NoError(t, err)
	return count
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestUnknownPathNotFound(t *testing.T) {
	s := newTestServer(t)
	w := s.get("/definitely/not/a/route", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostCreateRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.postForm("/create", "", url.Values{"text": {"anonymous post"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login"),
		"expected redirect to login, got %q", w.Header().Get("Location"))
	require.EqualValues(t, 0, s.postCount(t))
}

func TestPostCreate(t *testing.T) {
	s := newTestServer(t)
	leo := s.createUser(t, "leo")

	w := s.postForm("/create", s.token(t, leo), url.Values{"text": {"hello world"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/profile/leo", w.Header().Get("Location"))
	require.EqualValues(t, 1, s.postCount(t))

	posts, err := db.NewPostRepository(s.repo).List(context.Background(), db.PostFilter{}, 0, 0)
	require.NoError(t, err)
	require.Equal(t, "hello world", posts[0].Text)
	require.Equal(t, leo.ID, posts[0].AuthorID)
	require.False(t, posts[0].PubDate.IsZero())
}

func TestPostCreateValidation(t *testing.T) {
	s := newTestServer(t)
	leo := s.createUser(t, "leo")

	w := s.postForm("/create", s.token(t, leo), url.Values{"text": {""}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	errs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok, "expected field errors in response")
	require.Contains(t, errs, "text")
	require.EqualValues(t, 0, s.postCount(t))
}

func TestPostCreateUnknownGroup(t *testing.T) {
	s := newTestServer(t)
	leo := s.createUser(t, "leo")

	w := s.postForm("/create", s.token(t, leo), url.Values{
		"text":  {"hello"},
		"group": {"999"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.EqualValues(t, 0, s.postCount(t))
}

func TestPostEditByNonAuthor(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	bob := s.createUser(t, "bob")
	post := s.createPost(t, alice, "alice's words")

	w := s.postForm("/posts/1/edit", s.token(t, bob), url.Values{"text": {"bob's words"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/posts/1", w.Header().Get("Location"))

	got, err := db.NewPostRepository(s.repo).GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	require.Equal(t, "alice's words", got.Text)
}

func TestPostEditByAuthor(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	post := s.createPost(t, alice, "draft")
	originalPubDate := post.PubDate

	w := s.postForm("/posts/1/edit", s.token(t, alice), url.Values{"text": {"final"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/posts/1", w.Header().Get("Location"))

	got, err := db.NewPostRepository(s.repo).GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	require.Equal(t, "final", got.Text)
	require.Equal(t, alice.ID, got.AuthorID)
	require.True(t, got.PubDate.Equal(originalPubDate), "pub_date must not change on edit")
}

func TestAddComment(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	bob := s.createUser(t, "bob")
	post := s.createPost(t, alice, "a post")

	// Invalid submission: redirect anyway, nothing persisted
	w := s.postForm("/posts/1/comment", s.token(t, bob), url.Values{"text": {""}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/posts/1", w.Header().Get("Location"))

	comments, err := db.NewCommentRepository(s.repo).ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Empty(t, comments)

	// Valid submission persists
	w = s.postForm("/posts/1/comment", s.token(t, bob), url.Values{"text": {"nice one"}})
	require.Equal(t, http.StatusFound, w.Code)

	comments, err = db.NewCommentRepository(s.repo).ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "nice one", comments[0].Text)
	require.Equal(t, bob.ID, comments[0].AuthorID)
}

func TestAddCommentUnknownPost(t *testing.T) {
	s := newTestServer(t)
	bob := s.createUser(t, "bob")

	w := s.postForm("/posts/999/comment", s.token(t, bob), url.Values{"text": {"hello?"}})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostDetail(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	s.createPost(t, alice, "first")
	s.createPost(t, alice, "second")

	w := s.get("/posts/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	post := body["post"].(map[string]interface{})
	require.Equal(t, "first", post["text"])
	require.EqualValues(t, 2, body["author_post_count"])
	require.Contains(t, body, "form")
	require.Contains(t, body, "comments")
}

func TestGroupDetail(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	group := &models.Group{Title: "Go", Slug: "golang"}
	require.NoError(t, db.NewGroupRepository(s.repo).Create(context.Background(), group))

	post := &models.Post{Text: "grouped", AuthorID: alice.ID}
	post.GroupID.Int64 = group.ID
	post.GroupID.Valid = true
	require.NoError(t, db.NewPostRepository(s.repo).Create(context.Background(), post))
	s.createPost(t, alice, "ungrouped")

	w := s.get("/group/golang", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 1)

	w = s.get("/group/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileFollowingFlag(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	bob := s.createUser(t, "bob")

	// Anonymous visitors never see following=true
	body := decode(t, s.get("/profile/alice", ""))
	require.Equal(t, false, body["following"])

	// Before following
	body = decode(t, s.get("/profile/alice", s.token(t, bob)))
	require.Equal(t, false, body["following"])

	w := s.postForm("/profile/alice/follow", s.token(t, bob), nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/profile/alice", w.Header().Get("Location"))

	body = decode(t, s.get("/profile/alice", s.token(t, bob)))
	require.Equal(t, true, body["following"])

	// Own profile is never "following"
	body = decode(t, s.get("/profile/alice", s.token(t, alice)))
	require.Equal(t, false, body["following"])

	// Unfollow brings it back down
	w = s.postForm("/profile/alice/unfollow", s.token(t, bob), nil)
	require.Equal(t, http.StatusFound, w.Code)

	body = decode(t, s.get("/profile/alice", s.token(t, bob)))
	require.Equal(t, false, body["following"])
}

func TestProfileUnknownUser(t *testing.T) {
	s := newTestServer(t)
	w := s.get("/profile/ghost", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowIsIdempotentAndSelfFollowIgnored(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	bob := s.createUser(t, "bob")

	for i := 0; i < 2; i++ {
		w := s.postForm("/profile/alice/follow", s.token(t, bob), nil)
		require.Equal(t, http.StatusFound, w.Code)
	}

	var count int64
	require.NoError(t, s.gdb.Model(&models.Follow{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Following yourself redirects without creating an edge
	w := s.postForm("/profile/alice/follow", s.token(t, alice), nil)
	require.Equal(t, http.StatusFound, w.Code)

	require.NoError(t, s.gdb.Model(&models.Follow{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFollowFeed(t *testing.T) {
	s := newTestServer(t)
	u1 := s.createUser(t, "u1")
	u2 := s.createUser(t, "u2")
	u3 := s.createUser(t, "u3")
	u4 := s.createUser(t, "u4")

	require.Equal(t, http.StatusFound, s.postForm("/profile/u2/follow", s.token(t, u1), nil).Code)
	require.Equal(t, http.StatusFound, s.postForm("/profile/u2/follow", s.token(t, u3), nil).Code)

	s.createPost(t, u2, "a new post by u2")

	for _, follower := range []*models.User{u1, u3} {
		body := decode(t, s.get("/follow", s.token(t, follower)))
		posts := body["posts"].([]interface{})
		require.Len(t, posts, 1, "feed of %s", follower.Username)
	}

	body := decode(t, s.get("/follow", s.token(t, u4)))
	require.Empty(t, body["posts"].([]interface{}))
}

func TestFeedRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	w := s.get("/follow", "")
	require.Equal(t, http.StatusFound, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login"))
}

func TestProfilePagination(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	for i := 0; i < 13; i++ {
		s.createPost(t, alice, "a post")
	}

	body := decode(t, s.get("/profile/alice", ""))
	require.Len(t, body["posts"].([]interface{}), 10)

	body = decode(t, s.get("/profile/alice?page=2", ""))
	require.Len(t, body["posts"].([]interface{}), 3)

	// Out-of-range pages clamp to the last page instead of erroring
	body = decode(t, s.get("/profile/alice?page=99", ""))
	require.Len(t, body["posts"].([]interface{}), 3)
}

func TestIndexCacheWindow(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")

	// Prime the cache with an empty listing
	first := s.get("/", "")
	require.Equal(t, http.StatusOK, first.Code)
	require.Empty(t, decode(t, first)["posts"])

	// A write does not evict: readers still see the stale page
	s.createPost(t, alice, "brand new")
	stale := s.get("/", "")
	require.Equal(t, first.Body.String(), stale.Body.String())

	// After the TTL the new post shows up
	time.Sleep(250 * time.Millisecond)
	fresh := decode(t, s.get("/", ""))
	require.Len(t, fresh["posts"].([]interface{}), 1)
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.postForm("/auth/signup", "", url.Values{
		"username": {"leo"},
		"password": {"hunter2hunter2"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEmpty(t, decode(t, w)["token"])

	// Duplicate username is rejected
	w = s.postForm("/auth/signup", "", url.Values{
		"username": {"leo"},
		"password": {"hunter2hunter2"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Login with the right password
	w = s.postForm("/auth/login", "", url.Values{
		"username": {"leo"},
		"password": {"hunter2hunter2"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	// The issued token opens authenticated pages
	require.Equal(t, http.StatusOK, s.get("/create", token).Code)

	// Wrong password is rejected
	w = s.postForm("/auth/login", "", url.Values{
		"username": {"leo"},
		"password": {"wrong"},
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginFormRendered(t *testing.T) {
	s := newTestServer(t)
	w := s.get("/auth/login?next=/create", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Contains(t, body, "form")
	require.Equal(t, "/create", body["next"])
}
