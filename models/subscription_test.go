package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewSubscription(t *testing.T) {
	before := time.Now().UTC()

	sub := NewSubscription("ursula@example.com", "ursula")

	assert.NotEqual(t, uuid.Nil, sub.ID)
	assert.Equal(t, "ursula@example.com", sub.Email)
	assert.Equal(t, "ursula", sub.Name)
	assert.False(t, sub.SubscribedAt.Before(before))
	assert.Equal(t, time.UTC, sub.SubscribedAt.Location())
}

func TestNewSubscription_UniqueIDs(t *testing.T) {
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 1000; i++ {
		sub := NewSubscription("ursula@example.com", "ursula")
		assert.False(t, seen[sub.ID], "duplicate id %s", sub.ID)
		seen[sub.ID] = true
	}
}
