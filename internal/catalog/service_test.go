package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Insert(ctx context.Context, c Candidate, owner string) (Book, error) {
	args := m.Called(ctx, c, owner)
	return args.Get(0).(Book), args.Error(1)
}

func (m *mockRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(Book), args.Error(1)
}

func (m *mockRepo) Toggle(ctx context.Context, id string) (Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Book), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, q Query) ([]Book, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Book), args.Error(1)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, isbn string) (Resolution, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(Resolution), args.Error(1)
}

func TestService_AddBook(t *testing.T) {
	ctx := context.Background()
	const isbn = "9780134685991"

	t.Run("adds a resolved book with ownership attached", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		s := NewService(repo, res)

		repo.On("GetByISBN", ctx, isbn).Return(Book{}, ErrNotFound)
		res.On("Resolve", ctx, isbn).Return(Resolution{Candidate: Candidate{
			ISBN:    isbn,
			Title:   "Effective Java",
			Authors: "Joshua Bloch",
		}}, nil)
		repo.On("Insert", ctx, mock.MatchedBy(func(c Candidate) bool {
			return c.ISBN == isbn && c.Title == "Effective Java"
		}), "alice").Return(Book{
			ID:        "id-1",
			ISBN:      isbn,
			Title:     "Effective Java",
			Authors:   "Joshua Bloch",
			InLibrary: true,
			Owner:     "alice",
		}, nil)

		book, err := s.AddBook(ctx, isbn, "alice")
		assert.NoError(t, err)
		assert.Equal(t, "Effective Java", book.Title)
		assert.Equal(t, "Joshua Bloch", book.Authors)
		assert.Equal(t, "alice", book.Owner)
		assert.True(t, book.InLibrary)
		repo.AssertExpectations(t)
		res.AssertExpectations(t)
	})

	t.Run("normalizes hyphenated ISBN before lookup", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		s := NewService(repo, res)

		repo.On("GetByISBN", ctx, isbn).Return(Book{}, ErrNotFound)
		res.On("Resolve", ctx, isbn).Return(Resolution{Candidate: Candidate{ISBN: isbn}}, nil)
		repo.On("Insert", ctx, mock.Anything, "alice").Return(Book{ISBN: isbn}, nil)

		_, err := s.AddBook(ctx, "978-0-13-468599-1", "alice")
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects malformed ISBN before any I/O", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		s := NewService(repo, res)

		_, err := s.AddBook(ctx, "not-an-isbn", "alice")
		assert.ErrorIs(t, err, ErrInvalidISBN)
		_, err = s.AddBook(ctx, "", "alice")
		assert.ErrorIs(t, err, ErrInvalidISBN)

		repo.AssertNotCalled(t, "GetByISBN", mock.Anything, mock.Anything)
		res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("declines duplicate without calling the resolver", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		s := NewService(repo, res)

		repo.On("GetByISBN", ctx, isbn).Return(Book{ISBN: isbn, Owner: "alice"}, nil)

		_, err := s.AddBook(ctx, isbn, "bob")
		assert.ErrorIs(t, err, ErrDuplicateISBN)
		res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("maps provider no-items to upstream not found, no record created", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		s := NewService(repo, res)

		const unknown = "0000000000"
		repo.On("GetByISBN", ctx, unknown).Return(Book{}, ErrNotFound)
		res.On("Resolve", ctx, unknown).Return(Resolution{}, ErrUpstreamNotFound)

		_, err := s.AddBook(ctx, unknown, "alice")
		assert.ErrorIs(t, err, ErrUpstreamNotFound)
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("marks transient resolver failure as a resolver error", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		s := NewService(repo, res)

		repo.On("GetByISBN", ctx, isbn).Return(Book{}, ErrNotFound)
		res.On("Resolve", ctx, isbn).Return(Resolution{}, fmt.Errorf("lookup isbn: connection refused"))

		_, err := s.AddBook(ctx, isbn, "alice")
		assert.ErrorIs(t, err, ErrResolver)
		assert.False(t, errors.Is(err, ErrUpstreamNotFound))
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure is not a resolver error", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		s := NewService(repo, res)

		repo.On("GetByISBN", ctx, isbn).Return(Book{}, errors.New("connection closed"))

		_, err := s.AddBook(ctx, isbn, "alice")
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrResolver))
		res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("racing insert loses as duplicate", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		s := NewService(repo, res)

		repo.On("GetByISBN", ctx, isbn).Return(Book{}, ErrNotFound)
		res.On("Resolve", ctx, isbn).Return(Resolution{Candidate: Candidate{ISBN: isbn}}, nil)
		repo.On("Insert", ctx, mock.Anything, "bob").Return(Book{}, ErrDuplicateISBN)

		_, err := s.AddBook(ctx, isbn, "bob")
		assert.ErrorIs(t, err, ErrDuplicateISBN)
	})

	t.Run("cover failure does not fail the add", func(t *testing.T) {
		repo := new(mockRepo)
		res := new(mockResolver)
		s := NewService(repo, res)

		repo.On("GetByISBN", ctx, isbn).Return(Book{}, ErrNotFound)
		res.On("Resolve", ctx, isbn).Return(Resolution{
			Candidate: Candidate{ISBN: isbn, Title: "Effective Java"},
			CoverErr:  errors.New("download failed"),
		}, nil)
		repo.On("Insert", ctx, mock.MatchedBy(func(c Candidate) bool {
			return c.CoverPath == nil
		}), "alice").Return(Book{ISBN: isbn, Title: "Effective Java", InLibrary: true}, nil)

		book, err := s.AddBook(ctx, isbn, "alice")
		assert.NoError(t, err)
		assert.Nil(t, book.CoverPath)
	})
}

func TestService_ListFor(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin is restricted to own records", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, nil)

		repo.On("List", ctx, Query{Owner: "alice"}).Return([]Book{{Owner: "alice"}}, nil)

		books, err := s.ListFor(ctx, "alice", "USER", false)
		assert.NoError(t, err)
		for _, b := range books {
			assert.Equal(t, "alice", b.Owner)
		}
		repo.AssertExpectations(t)
	})

	t.Run("admin sees all owners", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, nil)

		repo.On("List", ctx, Query{}).Return([]Book{{Owner: "alice"}, {Owner: "bob"}}, nil)

		books, err := s.ListFor(ctx, "admin", RoleAdmin, false)
		assert.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("in-library filter is carried through", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, nil)

		repo.On("List", ctx, Query{Owner: "alice", InLibraryOnly: true}).Return(nil, nil)

		_, err := s.ListFor(ctx, "alice", "USER", true)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestService_Toggle(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	s := NewService(repo, nil)

	repo.On("Toggle", ctx, "missing").Return(Book{}, ErrNotFound)

	_, err := s.Toggle(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
