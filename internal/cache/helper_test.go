package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedQuestion struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func setupCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestGetSetJSON(t *testing.T) {
	setupCache(t)
	ctx := context.Background()

	q := cachedQuestion{ID: 1, Title: "How do I test this?"}
	require.NoError(t, SetJSON(ctx, QuestionKey(1), q, QuestionTTL))

	var got cachedQuestion
	found, err := GetJSON(ctx, QuestionKey(1), &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, q, got)

	found, err = GetJSON(ctx, QuestionKey(2), &got)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestAside(t *testing.T) {
	t.Run("Miss Then Hit", func(t *testing.T) {
		setupCache(t)
		ctx := context.Background()

		calls := 0
		fetch := func(dest *cachedQuestion) func() error {
			return func() error {
				calls++
				*dest = cachedQuestion{ID: 7, Title: "Cached on miss"}
				return nil
			}
		}

		var first cachedQuestion
		require.NoError(t, Aside(ctx, QuestionKey(7), &first, time.Minute, fetch(&first)))
		assert.Equal(t, 1, calls)
		assert.Equal(t, uint(7), first.ID)

		var second cachedQuestion
		require.NoError(t, Aside(ctx, QuestionKey(7), &second, time.Minute, fetch(&second)))
		assert.Equal(t, 1, calls, "second read should be served from cache")
		assert.Equal(t, first, second)
	})

	t.Run("Expiry Refetches", func(t *testing.T) {
		mr := setupCache(t)
		ctx := context.Background()

		calls := 0
		var dest cachedQuestion
		fetch := func() error {
			calls++
			dest = cachedQuestion{ID: 9, Title: "Refetched"}
			return nil
		}

		require.NoError(t, Aside(ctx, QuestionKey(9), &dest, time.Minute, fetch))
		mr.FastForward(2 * time.Minute)
		require.NoError(t, Aside(ctx, QuestionKey(9), &dest, time.Minute, fetch))
		assert.Equal(t, 2, calls)
	})

	t.Run("Nil Client Falls Through", func(t *testing.T) {
		SetClient(nil)
		ctx := context.Background()

		calls := 0
		var dest cachedQuestion
		fetch := func() error {
			calls++
			dest = cachedQuestion{ID: 3}
			return nil
		}

		require.NoError(t, Aside(ctx, QuestionKey(3), &dest, time.Minute, fetch))
		require.NoError(t, Aside(ctx, QuestionKey(3), &dest, time.Minute, fetch))
		assert.Equal(t, 2, calls)
	})
}

func TestInvalidate(t *testing.T) {
	setupCache(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, QuestionKey(5), cachedQuestion{ID: 5}, time.Minute))
	InvalidateQuestion(ctx, 5)

	var got cachedQuestion
	found, err := GetJSON(ctx, QuestionKey(5), &got)
	assert.NoError(t, err)
	assert.False(t, found)
}
