package memory

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shorty/internal/entity"
)

type RecordRepositoryTestSuite struct {
	suite.Suite
	repo *RecordRepository
}

func (suite *RecordRepositoryTestSuite) SetupSubTest() {
	suite.repo = NewRecordRepository()
}

func (suite *RecordRepositoryTestSuite) TestGet() {
	suite.Run("not found", func() {
		value, err := suite.repo.Get(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrRecordNotFound)
		suite.Empty(value)
	})

	suite.Run("canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := suite.repo.Get(ctx, "abc123")

		suite.ErrorIs(err, context.Canceled)
	})

	suite.Run("success", func() {
		suite.Require().NoError(suite.repo.Set(context.Background(), "abc123", "value"))

		value, err := suite.repo.Get(context.Background(), "abc123")

		suite.NoError(err)
		suite.Equal("value", value)
	})
}

func (suite *RecordRepositoryTestSuite) TestExists() {
	suite.Run("absent", func() {
		ok, err := suite.repo.Exists(context.Background(), "abc123")

		suite.NoError(err)
		suite.False(ok)
	})

	suite.Run("present", func() {
		suite.Require().NoError(suite.repo.Set(context.Background(), "abc123", "value"))

		ok, err := suite.repo.Exists(context.Background(), "abc123")

		suite.NoError(err)
		suite.True(ok)
	})
}

func (suite *RecordRepositoryTestSuite) TestSetNX() {
	suite.Run("key exists", func() {
		suite.Require().NoError(suite.repo.Set(context.Background(), "abc123", "first"))

		ok, err := suite.repo.SetNX(context.Background(), "abc123", "second")

		suite.NoError(err)
		suite.False(ok)

		value, _ := suite.repo.Get(context.Background(), "abc123")
		suite.Equal("first", value)
	})

	suite.Run("concurrent writers", func() {
		const n = 50

		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			won int
		)

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				ok, err := suite.repo.SetNX(context.Background(), "abc123", strconv.Itoa(i))
				suite.NoError(err)

				if ok {
					mu.Lock()
					won++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		suite.Equal(1, won)
	})
}

func (suite *RecordRepositoryTestSuite) TestUpdate() {
	suite.Run("not found", func() {
		_, err := suite.repo.Update(context.Background(), "abc123", func(s string) (string, error) {
			return s, nil
		})

		suite.ErrorIs(err, entity.ErrRecordNotFound)
	})

	suite.Run("fn error keeps value", func() {
		errFn := errors.New("fn error")
		suite.Require().NoError(suite.repo.Set(context.Background(), "abc123", "value"))

		_, err := suite.repo.Update(context.Background(), "abc123", func(string) (string, error) {
			return "", errFn
		})

		suite.ErrorIs(err, errFn)
		value, _ := suite.repo.Get(context.Background(), "abc123")
		suite.Equal("value", value)
	})

	suite.Run("concurrent increments", func() {
		const n = 100

		suite.Require().NoError(suite.repo.Set(context.Background(), "abc123", "0"))

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, err := suite.repo.Update(context.Background(), "abc123", func(s string) (string, error) {
					v, err := strconv.Atoi(s)
					if err != nil {
						return "", err
					}
					return strconv.Itoa(v + 1), nil
				})
				suite.NoError(err)
			}()
		}
		wg.Wait()

		value, err := suite.repo.Get(context.Background(), "abc123")
		suite.NoError(err)
		suite.Equal(strconv.Itoa(n), value)
	})
}

func TestRecordRepository(t *testing.T) {
	suite.Run(t, new(RecordRepositoryTestSuite))
}
