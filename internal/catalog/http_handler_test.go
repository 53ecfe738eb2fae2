package catalog

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookshelf/internal/httpx"
	"bookshelf/internal/testutil"
)

func newTestRouter(repo Repository, res Resolver) http.Handler {
	h := NewHTTPHandler(NewService(repo, res))
	authed := httpx.AuthMiddleware(testutil.Secret)

	mux := http.NewServeMux()
	mux.Handle("POST /books", authed(http.HandlerFunc(h.Add)))
	mux.Handle("GET /books", authed(http.HandlerFunc(h.List)))
	mux.Handle("POST /books/{id}/toggle", authed(http.HandlerFunc(h.Toggle)))
	return mux
}

func TestHTTPHandler_Add(t *testing.T) {
	t.Run("created with owner from token", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		router := newTestRouter(repo, res)

		repo.On("GetByISBN", mock.Anything, "9780134685991").Return(Book{}, ErrNotFound)
		res.On("Resolve", mock.Anything, "9780134685991").
			Return(Resolution{Candidate: Candidate{ISBN: "9780134685991", Title: "Effective Java"}}, nil)
		repo.On("Insert", mock.Anything, mock.Anything, "alice").
			Return(Book{ID: "id-1", ISBN: "9780134685991", Title: "Effective Java", Owner: "alice", InLibrary: true}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/books",
			map[string]string{"isbn": "9780134685991"}, testutil.Token("alice", "USER")))

		resp := testutil.Record(w)
		assert.Equal(t, http.StatusCreated, resp.Code)
		assert.Equal(t, true, resp.Body["success"])
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		router := newTestRouter(new(mockRepo), new(mockResolver))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequest(http.MethodPost, "/books", map[string]string{"isbn": "9780134685991"}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("duplicate is a conflict", func(t *testing.T) {
		repo := new(mockRepo)
		router := newTestRouter(repo, new(mockResolver))

		repo.On("GetByISBN", mock.Anything, "9780134685991").Return(Book{ISBN: "9780134685991"}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/books",
			map[string]string{"isbn": "9780134685991"}, testutil.Token("bob", "USER")))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown upstream ISBN is not found", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		router := newTestRouter(repo, res)

		repo.On("GetByISBN", mock.Anything, "0000000000").Return(Book{}, ErrNotFound)
		res.On("Resolve", mock.Anything, "0000000000").Return(Resolution{}, ErrUpstreamNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/books",
			map[string]string{"isbn": "0000000000"}, testutil.Token("alice", "USER")))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("resolver outage is a bad gateway", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		router := newTestRouter(repo, res)

		repo.On("GetByISBN", mock.Anything, "9780134685991").Return(Book{}, ErrNotFound)
		res.On("Resolve", mock.Anything, "9780134685991").
			Return(Resolution{}, errors.New("lookup isbn: connection refused"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/books",
			map[string]string{"isbn": "9780134685991"}, testutil.Token("alice", "USER")))

		resp := testutil.Record(w)
		assert.Equal(t, http.StatusBadGateway, resp.Code)
		assert.Equal(t, "RESOLVER_ERROR", resp.ErrorCode())
	})

	t.Run("storage failure is an internal error, not a bad gateway", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		router := newTestRouter(repo, res)

		repo.On("GetByISBN", mock.Anything, "9780134685991").Return(Book{}, errors.New("connection closed"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/books",
			map[string]string{"isbn": "9780134685991"}, testutil.Token("alice", "USER")))

		resp := testutil.Record(w)
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.Equal(t, "INTERNAL_ERROR", resp.ErrorCode())
		res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("malformed ISBN is a bad request", func(t *testing.T) {
		router := newTestRouter(new(mockRepo), new(mockResolver))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/books",
			map[string]string{"isbn": "nope"}, testutil.Token("alice", "USER")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_List(t *testing.T) {
	t.Run("non-admin gets own records only", func(t *testing.T) {
		repo := new(mockRepo)
		router := newTestRouter(repo, new(mockResolver))

		repo.On("List", mock.Anything, Query{Owner: "alice"}).Return([]Book{{Owner: "alice"}}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodGet, "/books", nil, testutil.Token("alice", "USER")))

		assert.Equal(t, http.StatusOK, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("admin lists across owners", func(t *testing.T) {
		repo := new(mockRepo)
		router := newTestRouter(repo, new(mockResolver))

		repo.On("List", mock.Anything, Query{}).Return([]Book{{Owner: "alice"}, {Owner: "bob"}}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodGet, "/books", nil, testutil.Token("admin", "ADMIN")))

		assert.Equal(t, http.StatusOK, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("in_library filter", func(t *testing.T) {
		repo := new(mockRepo)
		router := newTestRouter(repo, new(mockResolver))

		repo.On("List", mock.Anything, Query{Owner: "alice", InLibraryOnly: true}).Return(nil, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodGet, "/books?in_library=true", nil, testutil.Token("alice", "USER")))

		assert.Equal(t, http.StatusOK, w.Code)
		repo.AssertExpectations(t)
	})
}

func TestHTTPHandler_Toggle(t *testing.T) {
	t.Run("flips and returns the record", func(t *testing.T) {
		repo := new(mockRepo)
		router := newTestRouter(repo, new(mockResolver))

		repo.On("Toggle", mock.Anything, "id-1").Return(Book{ID: "id-1", InLibrary: false}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/books/id-1/toggle", nil, testutil.Token("alice", "USER")))

		resp := testutil.Record(w)
		assert.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].(map[string]interface{})
		assert.Equal(t, false, data["in_library"])
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo := new(mockRepo)
		router := newTestRouter(repo, new(mockResolver))

		repo.On("Toggle", mock.Anything, "missing").Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodPost, "/books/missing/toggle", nil, testutil.Token("alice", "USER")))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
