package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is a newsletter subscriber record. It is created once, when a
// subscription request is accepted, and never mutated afterwards.
type Subscription struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// NewSubscription creates a Subscription with a fresh ID, accepted now.
func NewSubscription(email, name string) *Subscription {
	return &Subscription{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		SubscribedAt: time.Now().UTC(),
	}
}
