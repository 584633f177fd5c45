// Package business provides per-tenant business profiles: display info,
// timezone, and notification preferences consulted after bookings.
package business

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NotificationPrefs holds notification preferences for a tenant.
type NotificationPrefs struct {
	EmailEnabled    bool     `json:"email_enabled"`
	EmailRecipients []string `json:"email_recipients,omitempty"`

	WhatsAppEnabled    bool     `json:"whatsapp_enabled"`
	WhatsAppRecipients []string `json:"whatsapp_recipients,omitempty"`

	NotifyOnBooking      bool `json:"notify_on_booking"`
	NotifyOnCancellation bool `json:"notify_on_cancellation"`
}

// Profile holds tenant-level configuration.
type Profile struct {
	TenantID      string            `json:"tenant_id"`
	Name          string            `json:"name"`
	Timezone      string            `json:"timezone"`
	Notifications NotificationPrefs `json:"notifications"`
}

// DefaultProfile returns a sensible default profile.
func DefaultProfile(tenantID string) *Profile {
	return &Profile{
		TenantID: tenantID,
		Name:     "Business",
		Timezone: "UTC",
		Notifications: NotificationPrefs{
			EmailEnabled:         false,
			WhatsAppEnabled:      false,
			NotifyOnBooking:      true,
			NotifyOnCancellation: true,
		},
	}
}

// Store provides persistence for business profiles.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new profile store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(tenantID string) string {
	return fmt.Sprintf("business:profile:%s", tenantID)
}

// Get retrieves a tenant profile, returning the default if not found.
func (s *Store) Get(ctx context.Context, tenantID string) (*Profile, error) {
	data, err := s.redis.Get(ctx, s.key(tenantID)).Bytes()
	if err == redis.Nil {
		return DefaultProfile(tenantID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("business: get profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("business: unmarshal profile: %w", err)
	}
	return &p, nil
}

// Set saves a tenant profile.
func (s *Store) Set(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("business: marshal profile: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(p.TenantID), data, 0).Err(); err != nil {
		return fmt.Errorf("business: set profile: %w", err)
	}
	return nil
}
