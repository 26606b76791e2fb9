package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/database"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv wires both services against one database and one signing secret,
// the way they are deployed.
type testEnv struct {
	authSrv  *httptest.Server
	booksSrv *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	tokens := auth.NewTokenManager("test-secret")
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, eventService)
	bookService := services.NewBookService(db, eventService)

	env := &testEnv{
		authSrv:  httptest.NewServer(NewAuthRouter(tokens, userService, "http://localhost:3000")),
		booksSrv: httptest.NewServer(NewBooksRouter(tokens, bookService, eventService, "http://localhost:3000")),
	}
	t.Cleanup(env.authSrv.Close)
	t.Cleanup(env.booksSrv.Close)
	return env
}

// do sends a JSON request and decodes the JSON response body into a map.
func do(t *testing.T, method, url, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	} else if len(raw) > 0 && raw[0] == '[' {
		var list []interface{}
		require.NoError(t, json.Unmarshal(raw, &list))
		decoded["items"] = list
	}
	return resp.StatusCode, decoded
}

func signup(t *testing.T, env *testEnv, username, password string) string {
	t.Helper()
	status, body := do(t, http.MethodPost, env.authSrv.URL+"/auth/signup", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusCreated, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSignupLoginMe(t *testing.T) {
	env := newTestEnv(t)

	signup(t, env, "alice", "secret1")

	// A login with the same credentials issues a token whose verified
	// principal matches the signup.
	status, body := do(t, http.MethodPost, env.authSrv.URL+"/auth/login", "", map[string]string{
		"username": "alice", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	token := body["token"].(string)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "passwordHash")

	status, body = do(t, http.MethodGet, env.authSrv.URL+"/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, user["id"], body["id"])
}

func TestSignup_Errors(t *testing.T) {
	env := newTestEnv(t)

	// Validation failures.
	for _, payload := range []map[string]string{
		{"username": "ab", "password": "secret1"},
		{"username": "alice", "password": "12345"},
	} {
		status, _ := do(t, http.MethodPost, env.authSrv.URL+"/auth/signup", "", payload)
		assert.Equal(t, http.StatusBadRequest, status)
	}

	// Duplicate username.
	signup(t, env, "alice", "secret1")
	status, _ := do(t, http.MethodPost, env.authSrv.URL+"/auth/signup", "", map[string]string{
		"username": "alice", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)
}

func TestLogin_Errors(t *testing.T) {
	env := newTestEnv(t)
	signup(t, env, "alice", "secret1")

	status, _ := do(t, http.MethodPost, env.authSrv.URL+"/auth/login", "", map[string]string{
		"username": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Unknown user and wrong password produce the same response.
	for _, payload := range []map[string]string{
		{"username": "nobody", "password": "secret1"},
		{"username": "alice", "password": "wrong"},
	} {
		status, body := do(t, http.MethodPost, env.authSrv.URL+"/auth/login", "", payload)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid credentials", body["error"])
	}
}

func TestBooks_RequireBearer(t *testing.T) {
	env := newTestEnv(t)

	status, _ := do(t, http.MethodGet, env.booksSrv.URL+"/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, http.MethodGet, env.booksSrv.URL+"/books", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBookLifecycleScenario(t *testing.T) {
	env := newTestEnv(t)
	token := signup(t, env, "alice", "secret1")

	// Create.
	status, book := do(t, http.MethodPost, env.booksSrv.URL+"/books", token, map[string]string{
		"title": "1984", "author": "Orwell", "description": "desc", "cover": "cover-uri",
	})
	require.Equal(t, http.StatusCreated, status)
	bookID := book["id"].(string)
	assert.Equal(t, "alice", book["createdByUsername"])
	assert.NotEmpty(t, book["createdAt"])

	// Detail starts with no reviews.
	status, detail := do(t, http.MethodGet, env.booksSrv.URL+"/books/"+bookID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1984", detail["title"])
	assert.Equal(t, "Orwell", detail["author"])
	assert.Empty(t, detail["reviews"])

	// Search finds it case-insensitively.
	status, list := do(t, http.MethodGet, env.booksSrv.URL+"/books?q=19", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list["items"], 1)

	// Review it.
	status, review := do(t, http.MethodPost, env.booksSrv.URL+"/books/"+bookID+"/reviews", token, map[string]interface{}{
		"rating": 5, "comment": "great",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "alice", review["reviewerUsername"])

	// Re-fetch shows the review.
	status, detail = do(t, http.MethodGet, env.booksSrv.URL+"/books/"+bookID, token, nil)
	require.Equal(t, http.StatusOK, status)
	reviews := detail["reviews"].([]interface{})
	require.Len(t, reviews, 1)
	assert.Equal(t, "alice", reviews[0].(map[string]interface{})["reviewerUsername"])

	// The activity feed picked the actions up.
	status, feed := do(t, http.MethodGet, env.booksSrv.URL+"/events", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, feed["items"])
}

func TestBookOwnership(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := signup(t, env, "alice", "secret1")
	bobToken := signup(t, env, "bobby", "secret2")

	status, book := do(t, http.MethodPost, env.booksSrv.URL+"/books", aliceToken, map[string]string{
		"title": "Dune", "author": "Herbert", "description": "desc", "cover": "cover-uri",
	})
	require.Equal(t, http.StatusCreated, status)
	bookID := book["id"].(string)

	// Non-owner mutations are forbidden.
	status, _ = do(t, http.MethodPut, env.booksSrv.URL+"/books/"+bookID, bobToken, map[string]string{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = do(t, http.MethodDelete, env.booksSrv.URL+"/books/"+bookID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// But anyone authenticated can review.
	status, _ = do(t, http.MethodPost, env.booksSrv.URL+"/books/"+bookID+"/reviews", bobToken, map[string]interface{}{
		"rating": 1, "comment": "not for me",
	})
	assert.Equal(t, http.StatusCreated, status)

	// The owner's mutations succeed.
	status, updated := do(t, http.MethodPut, env.booksSrv.URL+"/books/"+bookID, aliceToken, map[string]string{"title": "Dune Messiah"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Dune Messiah", updated["title"])

	status, _ = do(t, http.MethodDelete, env.booksSrv.URL+"/books/"+bookID, aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, http.MethodGet, env.booksSrv.URL+"/books/"+bookID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBookUpdate_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	token := signup(t, env, "alice", "secret1")

	status, book := do(t, http.MethodPost, env.booksSrv.URL+"/books", token, map[string]string{
		"title": "Dune", "author": "Herbert", "description": "desc", "cover": "cover-uri",
	})
	require.Equal(t, http.StatusCreated, status)
	bookID := book["id"].(string)

	// An empty patch is a 400 no matter the target.
	status, _ = do(t, http.MethodPut, env.booksSrv.URL+"/books/"+bookID, token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, http.MethodPut, env.booksSrv.URL+"/books/00000000-0000-0000-0000-000000000000", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	// So is a supplied-but-empty field and a malformed id.
	status, _ = do(t, http.MethodPut, env.booksSrv.URL+"/books/"+bookID, token, map[string]string{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, http.MethodPut, env.booksSrv.URL+"/books/not-a-uuid", token, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReview_RatingBounds(t *testing.T) {
	env := newTestEnv(t)
	token := signup(t, env, "alice", "secret1")

	status, book := do(t, http.MethodPost, env.booksSrv.URL+"/books", token, map[string]string{
		"title": "Dune", "author": "Herbert", "description": "desc", "cover": "cover-uri",
	})
	require.Equal(t, http.StatusCreated, status)
	bookID := book["id"].(string)
	reviewsURL := env.booksSrv.URL + "/books/" + bookID + "/reviews"

	for _, rating := range []interface{}{0, 6, 3.5} {
		status, _ := do(t, http.MethodPost, reviewsURL, token, map[string]interface{}{
			"rating": rating, "comment": "great",
		})
		assert.Equal(t, http.StatusBadRequest, status, "rating %v should be rejected", rating)
	}

	for _, rating := range []interface{}{1, 5} {
		status, _ := do(t, http.MethodPost, reviewsURL, token, map[string]interface{}{
			"rating": rating, "comment": "great",
		})
		assert.Equal(t, http.StatusCreated, status, "rating %v should be accepted", rating)
	}

	// Unknown book is a 404, not a validation error, when the payload is fine.
	status, _ = do(t, http.MethodPost, env.booksSrv.URL+"/books/00000000-0000-0000-0000-000000000000/reviews", token, map[string]interface{}{
		"rating": 3, "comment": "great",
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	status, body := do(t, http.MethodGet, env.authSrv.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "auth", body["service"])

	status, body = do(t, http.MethodGet, env.booksSrv.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "books", body["service"])
}
