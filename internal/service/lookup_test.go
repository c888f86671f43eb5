package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Feaman/elven-keep-server/internal/models"
	"github.com/Feaman/elven-keep-server/internal/service"
)

func TestStatuses_LoadsOnce(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	statuses := service.NewStatuses(func(context.Context) ([]models.Status, error) {
		calls.Add(1)
		<-release
		return []models.Status{{ID: 1, Name: "active"}, {ID: 2, Name: "inactive"}}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := statuses.Active(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, int64(1), s.ID)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	inactive, err := statuses.Inactive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), inactive.ID)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLookup_FailedLoadIsRetried(t *testing.T) {
	var calls int
	types := service.NewTypes(func(context.Context) ([]models.Type, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("db down")
		}
		return []models.Type{{ID: 1, Name: "list"}, {ID: 2, Name: "plain"}}, nil
	})

	_, err := types.Default(context.Background())
	require.Error(t, err)

	def, err := types.Default(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "list", def.Name)
	assert.Equal(t, 2, calls)
}

func TestLookup_FindByNameMissing(t *testing.T) {
	types := service.NewTypes(func(context.Context) ([]models.Type, error) {
		return []models.Type{{ID: 2, Name: "plain"}}, nil
	})

	_, err := types.FindByName(context.Background(), "kanban")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
