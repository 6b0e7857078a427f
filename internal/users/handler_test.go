package users_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekeep/gatekeep/internal/platform/httpx"
	"github.com/gatekeep/gatekeep/internal/shared"
	"github.com/gatekeep/gatekeep/internal/users"
)

// stubGuard authenticates every request as principal, or rejects it when principal is nil.
type stubGuard struct {
	principal *shared.Principal
}

func (g stubGuard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.principal == nil {
			httpx.RespondError(w, nil, shared.ErrInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), *g.principal)))
	})
}

func (g stubGuard) RequireAdmin(next http.Handler) http.Handler {
	return g.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.principal.IsAdmin() {
			httpx.RespondError(w, nil, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newRouter(t *testing.T, repo *stubRepo, guard users.Guard, store users.DocumentStore, uploads bool) http.Handler {
	t.Helper()
	svc := users.NewService(repo, store, users.ServiceConfig{DocumentUploads: uploads}, nil)
	h := users.NewHandler(nil, svc, guard, users.HandlerConfig{DocumentField: "aadhaarImage"})
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegisterEndpoint(t *testing.T) {
	repo := newStubRepo()
	router := newRouter(t, repo, stubGuard{}, nil, false)

	body := `{"name":"Asha","email":"asha@example.com","mobile":"9876543210"}`
	rr, env := do(t, router, jsonRequest(http.MethodPost, "/register", body))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "ok", env.Status)
	assert.JSONEq(t, `"User Created"`, string(env.Data))

	rr, env = do(t, router, jsonRequest(http.MethodPost, "/register", body))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "error", env.Status)
	assert.JSONEq(t, `"User already exists!!"`, string(env.Data))
}

func TestRegisterEndpointMultipartDocument(t *testing.T) {
	repo := newStubRepo()
	store := &recordingStore{}
	router := newRouter(t, repo, stubGuard{}, store, true)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Asha"))
	require.NoError(t, mw.WriteField("email", "asha@example.com"))
	require.NoError(t, mw.WriteField("mobile", "9876543210"))
	part, err := mw.CreateFormFile("aadhaarImage", "card.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr, _ := do(t, router, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	require.Len(t, store.saved, 1)
	assert.Equal(t, "card.jpg", store.saved[0].Filename)
	user, err := repo.FindByEmail(req.Context(), "asha@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.DocumentPath)
}

func TestRegisterEndpointRejectsInvalidJSON(t *testing.T) {
	router := newRouter(t, newStubRepo(), stubGuard{}, nil, false)

	rr, env := do(t, router, jsonRequest(http.MethodPost, "/register", `{"name":`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "error", env.Status)
	assert.NotEmpty(t, env.Data)
}

func TestRegisterEndpointValidationReasonInData(t *testing.T) {
	router := newRouter(t, newStubRepo(), stubGuard{}, nil, false)

	rr, env := do(t, router, jsonRequest(http.MethodPost, "/register", `{"name":"Asha","email":"not-an-email","mobile":"9876543210"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "error", env.Status)
	var reason string
	require.NoError(t, json.Unmarshal(env.Data, &reason))
	assert.NotEmpty(t, reason)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	repo := newStubRepo(users.User{ID: 2, Name: "Asha", Email: "asha@example.com"})

	anon := newRouter(t, repo, stubGuard{}, nil, false)
	rr, _ := do(t, anon, httptest.NewRequest(http.MethodGet, "/get-all-user", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	member := newRouter(t, repo, stubGuard{principal: &shared.Principal{UserID: 2, Email: "asha@example.com", Role: shared.RoleUser}}, nil, false)
	rr, _ = do(t, member, httptest.NewRequest(http.MethodGet, "/get-all-user", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestListUsersHidesHashes(t *testing.T) {
	repo := newStubRepo(
		users.User{ID: 1, Name: "Root", Email: "root@example.com", IsAdmin: true},
		users.User{ID: 2, Name: "Asha", Email: "asha@example.com", PasswordHash: strPtr("$2a$10$secret")},
		users.User{ID: 3, Name: "Ravi", Email: "ravi@example.com"},
	)
	admin := &shared.Principal{UserID: 1, Email: "root@example.com", Role: shared.RoleAdmin}
	router := newRouter(t, repo, stubGuard{principal: admin}, nil, false)

	rr, env := do(t, router, httptest.NewRequest(http.MethodGet, "/get-all-user", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "$2a$10$secret")

	var list []users.View
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.True(t, list[0].Verified)
	assert.False(t, list[1].Verified)
}

func TestUserDetails(t *testing.T) {
	repo := newStubRepo(users.User{ID: 2, Name: "Asha", Email: "asha@example.com", Mobile: "9876543210"})
	admin := &shared.Principal{UserID: 1, Email: "root@example.com", Role: shared.RoleAdmin}
	router := newRouter(t, repo, stubGuard{principal: admin}, nil, false)

	rr, env := do(t, router, httptest.NewRequest(http.MethodGet, "/get-user-details/2", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var view users.View
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "asha@example.com", view.Email)
	first := rr.Body.String()

	rr, _ = do(t, router, httptest.NewRequest(http.MethodGet, "/get-user-details/2", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, first, rr.Body.String())

	rr, _ = do(t, router, httptest.NewRequest(http.MethodGet, "/get-user-details/99", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = do(t, router, httptest.NewRequest(http.MethodGet, "/get-user-details/abc", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateUserEndpoint(t *testing.T) {
	repo := newStubRepo(users.User{ID: 2, Name: "Asha", Email: "asha@example.com", Mobile: "9876543210"})
	self := &shared.Principal{UserID: 2, Email: "asha@example.com", Role: shared.RoleUser}
	router := newRouter(t, repo, stubGuard{principal: self}, nil, false)

	body := `{"name":"Asha Rao","email":"asha@example.com","password":"","mobile":"9000000000"}`
	rr, env := do(t, router, jsonRequest(http.MethodPost, "/updateuser", body))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `"Updated"`, string(env.Data))

	stored, err := repo.FindByID(t.Context(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", stored.Name)
	assert.Nil(t, stored.PasswordHash)

	other := `{"name":"Xavier","email":"ravi@example.com","password":"","mobile":"9000000000"}`
	rr, _ = do(t, router, jsonRequest(http.MethodPost, "/updateuser", other))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
