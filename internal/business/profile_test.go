package business

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client)
}

func TestStore_DefaultWhenMissing(t *testing.T) {
	store := newTestStore(t)

	p, err := store.Get(context.Background(), "tenant-a")
	require.NoError(t, err)

	assert.Equal(t, "tenant-a", p.TenantID)
	assert.Equal(t, "UTC", p.Timezone)
	assert.False(t, p.Notifications.EmailEnabled)
	assert.True(t, p.Notifications.NotifyOnBooking)
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	p := &Profile{
		TenantID: "tenant-a",
		Name:     "Glow Studio",
		Timezone: "Europe/Madrid",
		Notifications: NotificationPrefs{
			EmailEnabled:         true,
			EmailRecipients:      []string{"owner@glow.example"},
			WhatsAppEnabled:      true,
			WhatsAppRecipients:   []string{"+34600111222"},
			NotifyOnBooking:      true,
			NotifyOnCancellation: false,
		},
	}
	require.NoError(t, store.Set(context.Background(), p))

	got, err := store.Get(context.Background(), "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// Other tenants still get the default.
	other, err := store.Get(context.Background(), "tenant-b")
	require.NoError(t, err)
	assert.Equal(t, "tenant-b", other.TenantID)
	assert.Empty(t, other.Notifications.EmailRecipients)
}
