package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusphere/timetable-api/internal/models"
)

func TestProposalStoreTakeConsumesEntry(t *testing.T) {
	store := newProposalStore(time.Hour)

	p := store.Put("class-1", 3, 1, []models.Lesson{{ClassID: "class-1"}})
	require.NotEmpty(t, p.ID)

	taken, ok := store.Take(p.ID)
	require.True(t, ok)
	assert.Equal(t, "class-1", taken.ClassID)
	assert.Equal(t, 3, taken.Week)

	_, ok = store.Take(p.ID)
	assert.False(t, ok)
}

func TestProposalStoreExpiry(t *testing.T) {
	store := newProposalStore(time.Minute)
	now := time.Date(2024, time.September, 23, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	p := store.Put("class-1", 3, 1, nil)

	now = now.Add(2 * time.Minute)
	_, ok := store.Take(p.ID)
	assert.False(t, ok, "expired proposals are purged on access")
}

func TestProposalStoreUnknownID(t *testing.T) {
	store := newProposalStore(time.Hour)
	_, ok := store.Take("missing")
	assert.False(t, ok)
}
