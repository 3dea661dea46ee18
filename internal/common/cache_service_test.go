package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedCountry struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestCacheServiceRoundTripsTypedValues(t *testing.T) {
	c := NewCacheService(60, 120)

	c.Set("gazetteer:country:1", cachedCountry{ID: 1, Name: "Canada"}, time.Minute)

	var got cachedCountry
	require.True(t, c.Get("gazetteer:country:1", &got))
	assert.Equal(t, cachedCountry{ID: 1, Name: "Canada"}, got)

	assert.False(t, c.Get("gazetteer:country:2", &got))
}

func TestCacheServiceDeletePrefix(t *testing.T) {
	c := NewCacheService(60, 120)
	c.Set("gazetteer:country:1", 1, time.Minute)
	c.Set("gazetteer:city:1", 1, time.Minute)
	c.Set("other:key", 1, time.Minute)

	c.DeletePrefix("gazetteer:")

	var v int
	assert.False(t, c.Get("gazetteer:country:1", &v))
	assert.False(t, c.Get("gazetteer:city:1", &v))
	assert.True(t, c.Get("other:key", &v))
}

func TestGetOrSetLoadsOnce(t *testing.T) {
	c := NewCacheService(60, 120)
	calls := 0
	loader := func() ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrSet(c, "k", time.Minute, loader)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
	}
	assert.Equal(t, 1, calls)
}

func TestGetOrSetDoesNotCacheErrors(t *testing.T) {
	c := NewCacheService(60, 120)
	boom := errors.New("boom")

	_, err := GetOrSet(c, "k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	var v int
	assert.False(t, c.Get("k", &v))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 100))
	assert.Equal(t, 1, TotalPages(100, 100))
	assert.Equal(t, 2, TotalPages(101, 100))
}
