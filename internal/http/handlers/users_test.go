package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/userhub/internal/apperr"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake store implementation of handlers.UserStore

type fakeUsersStore struct {
	listFn       func(ctx context.Context) ([]user.User, error)
	getFn        func(ctx context.Context, id string) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	createFn     func(ctx context.Context, u user.User) (user.User, error)
	updateFn     func(ctx context.Context, id string, p user.Patch) (user.User, error)
	deleteFn     func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUsersStore) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeUsersStore) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersStore) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	u.ID = "generated"
	return u, nil
}

func (f *fakeUsersStore) Update(ctx context.Context, id string, p user.Patch) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, p)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersStore) Delete(ctx context.Context, id string) (user.User, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

// fakeHasher "hashes" by prefixing, so tests can see what reached the store.
type fakeHasher struct {
	err    error
	rehash bool
}

func (h fakeHasher) Hash(plain string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plain, nil
}

func (h fakeHasher) Verify(plain, hash string) bool {
	return hash == "hashed:"+plain
}

func (h fakeHasher) NeedsRehash(hash string) bool {
	return h.rehash
}

type errorBody struct {
	Error middlewares.APIError `json:"error"`
}

func newUsersRouter(store handlers.UserStore, hasher handlers.PasswordHasher, mode string) *gin.Engine {
	policy := apperr.NewStatusPolicy(mode)
	h := handlers.NewUsersHandler(store, hasher, policy, time.Second)

	r := gin.New()
	r.Use(middlewares.ErrorTranslator(policy, nil, nil))
	r.GET("/users", h.ListUsers)
	r.GET("/user/:id", h.GetUserByID)
	r.POST("/user", h.CreateUser)
	r.PUT("/user/:id", h.UpdateUser)
	r.DELETE("/user/:id", h.DeleteUser)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middlewares.APIError {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal error body: %v, body=%s", err, w.Body.String())
	}
	return body.Error
}

func sampleUser() user.User {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return user.User{
		ID:        "u1",
		Email:     "a@x.com",
		Password:  "hashed:p",
		FirstName: "A",
		LastName:  "B",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestListUsers_EmptyIsArray(t *testing.T) {
	r := newUsersRouter(&fakeUsersStore{}, fakeHasher{}, "strict")

	w := serve(r, http.MethodGet, "/users", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestListUsers_StoreFailure_StrictIs500(t *testing.T) {
	store := &fakeUsersStore{
		listFn: func(ctx context.Context) ([]user.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	r := newUsersRouter(store, fakeHasher{}, "strict")

	w := serve(r, http.MethodGet, "/users", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	e := decodeError(t, w)
	if e.Code != "store_error" {
		t.Fatalf("expected store_error, got %s", e.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("store cause must not leak to the client: %s", w.Body.String())
	}
}

func TestListUsers_StoreFailure_CompatIs404(t *testing.T) {
	store := &fakeUsersStore{
		listFn: func(ctx context.Context) ([]user.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	r := newUsersRouter(store, fakeHasher{}, "compat")

	w := serve(r, http.MethodGet, "/users", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	r := newUsersRouter(&fakeUsersStore{}, fakeHasher{}, "strict")

	w := serve(r, http.MethodGet, "/user/missing", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if e := decodeError(t, w); e.Message != "User Not Found" {
		t.Fatalf("unexpected message %q", e.Message)
	}
}

func TestCreateUser_StoresHashNotPlaintext(t *testing.T) {
	var stored user.User
	store := &fakeUsersStore{
		createFn: func(ctx context.Context, u user.User) (user.User, error) {
			stored = u
			u.ID = "new-id"
			return u, nil
		},
	}
	r := newUsersRouter(store, fakeHasher{}, "strict")

	w := serve(r, http.MethodPost, "/user", `{"email":"a@x.com","password":"p","firstName":"A","lastName":"B"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d, body=%s", http.StatusCreated, w.Code, w.Body.String())
	}
	if stored.Password != "hashed:p" {
		t.Fatalf("expected hashed password to reach the store, got %q", stored.Password)
	}

	var got user.User
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if got.ID != "new-id" || got.Password == "p" {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestCreateUser_CompatRespondsOK(t *testing.T) {
	r := newUsersRouter(&fakeUsersStore{}, fakeHasher{}, "compat")

	w := serve(r, http.MethodPost, "/user", `{"email":"a@x.com","password":"p","firstName":"A","lastName":"B"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d, body=%s", http.StatusOK, w.Code, w.Body.String())
	}
}

func TestCreateUser_Validation(t *testing.T) {
	r := newUsersRouter(&fakeUsersStore{}, fakeHasher{}, "strict")

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"missing fields", `{"email":"a@x.com","password":"p"}`, "missing parameters"},
		{"empty body", ``, "missing parameters"},
		{"bad email", `{"email":"nope","password":"p","firstName":"A","lastName":"B"}`, "Invalid request body"},
		{"bad json", `{"email":`, "Invalid request body"},
		{"wrong type", `{"email":"a@x.com","password":1,"firstName":"A","lastName":"B"}`, "Invalid request body"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, "/user", tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d, body=%s", http.StatusBadRequest, w.Code, w.Body.String())
			}
			e := decodeError(t, w)
			if e.Code != "invalid_request" || e.Message != tc.message {
				t.Fatalf("unexpected error %+v", e)
			}
		})
	}
}

func TestCreateUser_ReportsJSONFieldNames(t *testing.T) {
	r := newUsersRouter(&fakeUsersStore{}, fakeHasher{}, "strict")

	w := serve(r, http.MethodPost, "/user", `{"email":"a@x.com","password":"p","lastName":"B"}`)

	if !strings.Contains(w.Body.String(), `"field":"firstName"`) {
		t.Fatalf("expected firstName in details, got %s", w.Body.String())
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := &fakeUsersStore{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return sampleUser(), nil
		},
		createFn: func(ctx context.Context, u user.User) (user.User, error) {
			t.Fatalf("create must not be called for a taken email")
			return user.User{}, nil
		},
	}

	for mode, want := range map[string]int{"strict": http.StatusConflict, "compat": http.StatusNotFound} {
		r := newUsersRouter(store, fakeHasher{}, mode)

		w := serve(r, http.MethodPost, "/user", `{"email":"a@x.com","password":"p","firstName":"A","lastName":"B"}`)

		if w.Code != want {
			t.Fatalf("%s: expected status %d, got %d", mode, want, w.Code)
		}
	}
}

func TestCreateUser_RaceLostAtStoreIsConflict(t *testing.T) {
	store := &fakeUsersStore{
		createFn: func(ctx context.Context, u user.User) (user.User, error) {
			return user.User{}, user.ErrEmailTaken
		},
	}
	r := newUsersRouter(store, fakeHasher{}, "strict")

	w := serve(r, http.MethodPost, "/user", `{"email":"a@x.com","password":"p","firstName":"A","lastName":"B"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestCreateUser_HasherFailureIs500(t *testing.T) {
	r := newUsersRouter(&fakeUsersStore{}, fakeHasher{err: errors.New("boom")}, "compat")

	w := serve(r, http.MethodPost, "/user", `{"email":"a@x.com","password":"p","firstName":"A","lastName":"B"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestUpdateUser_PassesOnlySuppliedFields(t *testing.T) {
	var gotPatch user.Patch
	store := &fakeUsersStore{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return sampleUser(), nil
		},
		updateFn: func(ctx context.Context, id string, p user.Patch) (user.User, error) {
			gotPatch = p
			u := sampleUser()
			p.Apply(&u, time.Now())
			return u, nil
		},
	}
	r := newUsersRouter(store, fakeHasher{}, "strict")

	w := serve(r, http.MethodPut, "/user/u1", `{"firstName":"Z","password":"new"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d, body=%s", http.StatusOK, w.Code, w.Body.String())
	}
	if gotPatch.FirstName == nil || *gotPatch.FirstName != "Z" {
		t.Fatalf("expected firstName in patch, got %+v", gotPatch)
	}
	if gotPatch.PasswordHash == nil || *gotPatch.PasswordHash != "hashed:new" {
		t.Fatalf("expected hashed password in patch, got %+v", gotPatch)
	}
	if gotPatch.Email != nil || gotPatch.LastName != nil {
		t.Fatalf("unexpected fields in patch %+v", gotPatch)
	}
}

func TestUpdateUser_IgnoresID(t *testing.T) {
	store := &fakeUsersStore{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return sampleUser(), nil
		},
		updateFn: func(ctx context.Context, id string, p user.Patch) (user.User, error) {
			t.Fatalf("an id-only body must not reach the store")
			return user.User{}, nil
		},
	}
	r := newUsersRouter(store, fakeHasher{}, "strict")

	w := serve(r, http.MethodPut, "/user/u1", `{"id":"other"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var got user.User
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.ID != "u1" {
		t.Fatalf("id must be immutable, got %q", got.ID)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	r := newUsersRouter(&fakeUsersStore{}, fakeHasher{}, "strict")

	w := serve(r, http.MethodPut, "/user/missing", `{"firstName":"Z"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestUpdateUser_EmailTakenByAnotherUser(t *testing.T) {
	store := &fakeUsersStore{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return sampleUser(), nil
		},
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			other := sampleUser()
			other.ID = "u2"
			other.Email = email
			return other, nil
		},
	}
	r := newUsersRouter(store, fakeHasher{}, "strict")

	w := serve(r, http.MethodPut, "/user/u1", `{"email":"b@x.com"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestDeleteUser_ReturnsPriorRecord(t *testing.T) {
	store := &fakeUsersStore{
		deleteFn: func(ctx context.Context, id string) (user.User, error) {
			return sampleUser(), nil
		},
	}
	r := newUsersRouter(store, fakeHasher{}, "strict")

	w := serve(r, http.MethodDelete, "/user/u1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var got user.User
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Email != "a@x.com" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}
