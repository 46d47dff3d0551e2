package notify

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/spycat-agency/src/CatAPI/agency"
)

func TestRedisStream(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	p := NewRedisStream(rdb, "")
	cat := uint64(7)
	at := time.Unix(1700000000, 0)

	require.NoError(t, p.Publish(ctx, agency.Event{Type: agency.EventMissionAssigned, MissionID: 3, CatID: &cat, At: at}))
	require.NoError(t, p.Publish(ctx, agency.Event{Type: agency.EventMissionDeleted, MissionID: 4, At: at}))

	entries, err := rdb.XRange(ctx, "spycat.missions", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, agency.EventMissionAssigned, entries[0].Values["type"])
	assert.Equal(t, "3", entries[0].Values["mission_id"])
	assert.Equal(t, "7", entries[0].Values["cat_id"])
	assert.Equal(t, strconv.FormatInt(at.Unix(), 10), entries[0].Values["time"])

	_, hasCat := entries[1].Values["cat_id"]
	assert.False(t, hasCat)
}

func TestParseWebhookURL(t *testing.T) {
	id, token, err := parseWebhookURL("https://discord.com/api/webhooks/123456/abc-DEF")
	require.NoError(t, err)
	assert.Equal(t, "123456", id)
	assert.Equal(t, "abc-DEF", token)

	_, _, err = parseWebhookURL("https://discord.com/api/channels/1")
	assert.Error(t, err)
}

func TestDiscordOnlyAnnouncesCompletion(t *testing.T) {
	sent := make(chan string, 4)
	d := &Discord{
		log: slog.Default(),
		send: func(_ context.Context, content string) error {
			sent <- content
			return nil
		},
	}
	ctx := context.Background()

	require.NoError(t, d.Publish(ctx, agency.Event{Type: agency.EventMissionCreated, MissionID: 1}))
	cat := uint64(2)
	require.NoError(t, d.Publish(ctx, agency.Event{Type: agency.EventMissionCompleted, MissionID: 1, CatID: &cat}))

	select {
	case msg := <-sent:
		assert.Contains(t, msg, "Mission #1 is complete")
		assert.Contains(t, msg, "#2")
	case <-time.After(2 * time.Second):
		t.Fatal("completion was not sent")
	}
	assert.Len(t, sent, 0)
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, agency.Event) error { return f.err }

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	var got []string
	rec := publisherFunc(func(_ context.Context, ev agency.Event) error {
		got = append(got, ev.Type)
		return nil
	})

	m := Multi{failingPublisher{err: boom}, nil, rec}
	err := m.Publish(context.Background(), agency.Event{Type: agency.EventMissionCreated})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{agency.EventMissionCreated}, got)
}

type publisherFunc func(context.Context, agency.Event) error

func (f publisherFunc) Publish(ctx context.Context, ev agency.Event) error { return f(ctx, ev) }
