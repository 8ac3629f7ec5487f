package discord

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyche-voyage/launchpad/pkg/utils"
)

func newTestBot(eventsURL, prefix string) *Bot {
	return &Bot{
		eventsURL: eventsURL,
		prefix:    prefix,
		client:    &http.Client{Timeout: time.Second},
		logger:    utils.GetLogger(),
	}
}

func messageCreate(content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "1290148492847243429",
		ChannelID: "1290148492847243430",
		Content:   content,
		Author:    &discordgo.User{ID: "444", Username: "alice"},
	}}
}

func TestOnMessageCreateForwards(t *testing.T) {
	var requests int32
	var body []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"event_id":"evt-1"}`))
	}))
	defer server.Close()

	bot := newTestBot(server.URL, "!")
	bot.onMessageCreate(nil, messageCreate("hello there"))

	require.Equal(t, int32(1), atomic.LoadInt32(&requests))

	var payload map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&payload))

	assert.Equal(t, json.Number("1290148492847243430"), payload["channel_id"])
	assert.Equal(t, "hello there", payload["content"])
}

func TestOnMessageCreateSkipsCommands(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	bot := newTestBot(server.URL, "!")
	bot.onMessageCreate(nil, messageCreate("!help"))

	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}
