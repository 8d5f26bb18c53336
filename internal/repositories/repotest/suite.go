// Package repotest содержит общий набор тестов, который должна проходить
// каждая реализация хранилища ссылок.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/tinylink/internal/models"
	"github.com/fsdevblog/tinylink/internal/repositories"
)

// LinkRepository контракт хранилища, который проверяет LinkRepoSuite.
type LinkRepository interface {
	Insert(ctx context.Context, link *models.Link) error
	GetByCode(ctx context.Context, code string) (*models.Link, error)
	GetByCodeAndOwner(ctx context.Context, code, ownerID string) (*models.Link, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error)
	DeleteByCodeAndOwner(ctx context.Context, code, ownerID string) (bool, error)
	RecordClick(ctx context.Context, id string) error
}

// LinkRepoSuite набор тестов контракта. NewRepo вызывается перед каждым тестом
// и должен возвращать пустое хранилище.
type LinkRepoSuite struct {
	suite.Suite
	NewRepo func() LinkRepository
	repo    LinkRepository
}

func (s *LinkRepoSuite) SetupTest() {
	s.repo = s.NewRepo()
}

// NewLink собирает ссылку с уникальным id. Время округляется до микросекунд,
// чтобы сравнение не зависело от точности хранения в БД.
func NewLink(code, ownerID string, createdAt time.Time) *models.Link {
	return &models.Link{
		ID:          uuid.NewString(),
		Code:        code,
		OriginalURL: "https://example.com/" + code,
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
		OwnerID:     ownerID,
	}
}

func (s *LinkRepoSuite) TestInsertAndGetByCode() {
	ctx := s.T().Context()
	link := NewLink("abc1234", "owner-a", time.Now())
	s.Require().NoError(s.repo.Insert(ctx, link))

	got, err := s.repo.GetByCode(ctx, "abc1234")
	s.Require().NoError(err)
	s.Equal(link.ID, got.ID)
	s.Equal(link.OriginalURL, got.OriginalURL)
	s.Equal(link.OwnerID, got.OwnerID)
	s.EqualValues(0, got.ClickCount)
	s.Nil(got.LastClicked)
	s.True(link.CreatedAt.Equal(got.CreatedAt), "created_at %s != %s", link.CreatedAt, got.CreatedAt)

	_, err = s.repo.GetByCode(ctx, "zzz9999")
	s.Require().ErrorIs(err, repositories.ErrNotFound)
}

func (s *LinkRepoSuite) TestInsertDuplicateCode() {
	ctx := s.T().Context()
	first := NewLink("dup0001", "owner-a", time.Now())
	s.Require().NoError(s.repo.Insert(ctx, first))

	second := NewLink("dup0001", "owner-b", time.Now())
	err := s.repo.Insert(ctx, second)
	s.Require().ErrorIs(err, repositories.ErrDuplicateKey)

	got, err := s.repo.GetByCode(ctx, "dup0001")
	s.Require().NoError(err)
	s.Equal(first.ID, got.ID)
	s.Equal("owner-a", got.OwnerID)
}

func (s *LinkRepoSuite) TestConcurrentInsertSameCode() {
	ctx := s.T().Context()
	const workers = 10

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.repo.Insert(ctx, NewLink("race001", fmt.Sprintf("owner-%d", i), time.Now()))
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, repositories.ErrDuplicateKey)
	}
	s.Equal(1, succeeded)
}

func (s *LinkRepoSuite) TestGetByCodeAndOwner() {
	ctx := s.T().Context()
	s.Require().NoError(s.repo.Insert(ctx, NewLink("own0001", "owner-a", time.Now())))

	got, err := s.repo.GetByCodeAndOwner(ctx, "own0001", "owner-a")
	s.Require().NoError(err)
	s.Equal("own0001", got.Code)

	_, err = s.repo.GetByCodeAndOwner(ctx, "own0001", "owner-b")
	s.Require().ErrorIs(err, repositories.ErrNotFound)

	_, err = s.repo.GetByCodeAndOwner(ctx, "nope000", "owner-a")
	s.Require().ErrorIs(err, repositories.ErrNotFound)
}

func (s *LinkRepoSuite) TestListByOwnerNewestFirst() {
	ctx := s.T().Context()
	base := time.Now().Add(-time.Hour)
	s.Require().NoError(s.repo.Insert(ctx, NewLink("list001", "owner-a", base)))
	s.Require().NoError(s.repo.Insert(ctx, NewLink("list003", "owner-a", base.Add(2*time.Minute))))
	s.Require().NoError(s.repo.Insert(ctx, NewLink("list002", "owner-a", base.Add(time.Minute))))
	s.Require().NoError(s.repo.Insert(ctx, NewLink("othr001", "owner-b", base.Add(3*time.Minute))))

	links, err := s.repo.ListByOwner(ctx, "owner-a")
	s.Require().NoError(err)
	s.Require().Len(links, 3)
	s.Equal([]string{"list003", "list002", "list001"}, []string{links[0].Code, links[1].Code, links[2].Code})

	empty, err := s.repo.ListByOwner(ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *LinkRepoSuite) TestDeleteByCodeAndOwner() {
	ctx := s.T().Context()
	s.Require().NoError(s.repo.Insert(ctx, NewLink("del0001", "owner-a", time.Now())))

	deleted, err := s.repo.DeleteByCodeAndOwner(ctx, "del0001", "owner-b")
	s.Require().NoError(err)
	s.False(deleted)

	_, err = s.repo.GetByCode(ctx, "del0001")
	s.Require().NoError(err, "foreign delete must leave the link in place")

	deleted, err = s.repo.DeleteByCodeAndOwner(ctx, "del0001", "owner-a")
	s.Require().NoError(err)
	s.True(deleted)

	_, err = s.repo.GetByCode(ctx, "del0001")
	s.Require().ErrorIs(err, repositories.ErrNotFound)

	deleted, err = s.repo.DeleteByCodeAndOwner(ctx, "del0001", "owner-a")
	s.Require().NoError(err)
	s.False(deleted)
}

func (s *LinkRepoSuite) TestRecordClick() {
	ctx := s.T().Context()
	link := NewLink("clk0001", "owner-a", time.Now())
	s.Require().NoError(s.repo.Insert(ctx, link))

	before := time.Now().Add(-time.Second)
	s.Require().NoError(s.repo.RecordClick(ctx, link.ID))
	s.Require().NoError(s.repo.RecordClick(ctx, link.ID))

	got, err := s.repo.GetByCode(ctx, "clk0001")
	s.Require().NoError(err)
	s.EqualValues(2, got.ClickCount)
	s.Require().NotNil(got.LastClicked)
	s.True(got.LastClicked.After(before))

	err = s.repo.RecordClick(ctx, uuid.NewString())
	s.Require().ErrorIs(err, repositories.ErrNotFound)
}

func (s *LinkRepoSuite) TestRecordClickConcurrent() {
	ctx := s.T().Context()
	link := NewLink("conc001", "owner-a", time.Now())
	s.Require().NoError(s.repo.Insert(ctx, link))

	const clicks = 25
	var wg sync.WaitGroup
	for range clicks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.repo.RecordClick(ctx, link.ID))
		}()
	}
	wg.Wait()

	got, err := s.repo.GetByCode(ctx, "conc001")
	s.Require().NoError(err)
	s.EqualValues(clicks, got.ClickCount)
}
