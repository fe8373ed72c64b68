package slack

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

type post struct {
	channelID string
	options   int
}

type fakePoster struct {
	mu    sync.Mutex
	posts []post
	err   error
}

func (f *fakePoster) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, post{channelID: channelID, options: len(options)})
	return channelID, "1700000000.000100", f.err
}

type stubGenerator struct {
	prompts []string
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Generate(_ context.Context, prompt string) relay.Result {
	g.prompts = append(g.prompts, prompt)
	return relay.Success("answer")
}

type fakeAcker struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeAcker) Ack(req socketmode.Request, _ ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, req.EnvelopeID)
}

// blockingGenerator holds every generation until release is closed.
type blockingGenerator struct {
	started chan string
	release chan struct{}
}

func (g *blockingGenerator) Name() string { return "blocking" }

func (g *blockingGenerator) Generate(_ context.Context, prompt string) relay.Result {
	g.started <- prompt
	<-g.release
	return relay.Success("answer to " + prompt)
}

func eventsAPIEnvelope(id, text string, retry int) socketmode.Event {
	return socketmode.Event{
		Type:    socketmode.EventTypeEventsAPI,
		Data:    messageEvent(&slackevents.MessageEvent{User: "U1", Channel: "C1", Text: text}),
		Request: &socketmode.Request{EnvelopeID: id, RetryAttempt: retry},
	}
}

func newTestConnector(t *testing.T, gen relay.Generator, opts ...relay.HandlerOption) (*Connector, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.NewLogger(logger.Config{Level: logger.DebugLevel, Output: &buf})
	c, err := NewConnector(Config{BotToken: "xoxb-test", AppToken: "xapp-test"}, relay.NewHandler(gen, log, opts...), log)
	require.NoError(t, err)
	c.botUserID = "UBOT"
	return c, &buf
}

func messageEvent(ev *slackevents.MessageEvent) slackevents.EventsAPIEvent {
	return slackevents.EventsAPIEvent{
		Type:       slackevents.CallbackEvent,
		InnerEvent: slackevents.EventsAPIInnerEvent{Type: "message", Data: ev},
	}
}

func TestNewConnector_TokenValidation(t *testing.T) {
	log := logger.NewLogger(logger.Config{Output: &bytes.Buffer{}})
	h := relay.NewHandler(&stubGenerator{}, log)

	tests := []struct {
		name    string
		cfg     Config
		handler *relay.Handler
		wantErr bool
	}{
		{name: "valid", cfg: Config{BotToken: "xoxb-1", AppToken: "xapp-1"}, handler: h},
		{name: "bad bot token", cfg: Config{BotToken: "abc", AppToken: "xapp-1"}, handler: h, wantErr: true},
		{name: "bad app token", cfg: Config{BotToken: "xoxb-1", AppToken: "abc"}, handler: h, wantErr: true},
		{name: "no handler", cfg: Config{BotToken: "xoxb-1", AppToken: "xapp-1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.handler == nil {
				_, err = NewConnector(tt.cfg, nil, log)
			} else {
				_, err = NewConnector(tt.cfg, tt.handler, log)
			}
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestHandleEvent_RelaysChannelMessage(t *testing.T) {
	gen := &stubGenerator{}
	c, _ := newTestConnector(t, gen)
	poster := &fakePoster{}

	out := c.handleEvent(context.Background(), poster, messageEvent(&slackevents.MessageEvent{
		User: "U1", Channel: "C1", Text: "?status of prod",
	}))

	assert.Equal(t, relay.OutcomeReplied, out)
	assert.Equal(t, []string{"status of prod"}, gen.prompts)
	require.Len(t, poster.posts, 1)
	assert.Equal(t, "C1", poster.posts[0].channelID)
	assert.Equal(t, 1, poster.posts[0].options)
}

func TestHandleEvent_ThreadReplyStaysInThread(t *testing.T) {
	c, _ := newTestConnector(t, &stubGenerator{})
	poster := &fakePoster{}

	c.handleEvent(context.Background(), poster, messageEvent(&slackevents.MessageEvent{
		User: "U1", Channel: "C1", Text: "?hi", ThreadTimeStamp: "1700000000.000001",
	}))

	require.Len(t, poster.posts, 1)
	assert.Equal(t, 2, poster.posts[0].options)
}

func TestHandleEvent_Ignored(t *testing.T) {
	gen := &stubGenerator{}

	tests := []struct {
		name  string
		event slackevents.EventsAPIEvent
	}{
		{name: "own message", event: messageEvent(&slackevents.MessageEvent{User: "UBOT", Channel: "C1", Text: "?hi"})},
		{name: "edited message", event: messageEvent(&slackevents.MessageEvent{User: "U1", Channel: "C1", Text: "?hi", SubType: "message_changed"})},
		{name: "not a command", event: messageEvent(&slackevents.MessageEvent{User: "U1", Channel: "C1", Text: "hi"})},
		{name: "non callback", event: slackevents.EventsAPIEvent{Type: slackevents.URLVerification}},
		{name: "mention event", event: slackevents.EventsAPIEvent{
			Type:       slackevents.CallbackEvent,
			InnerEvent: slackevents.EventsAPIInnerEvent{Data: &slackevents.AppMentionEvent{Text: "?hi"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConnector(t, gen)
			poster := &fakePoster{}
			assert.Equal(t, relay.OutcomeIgnored, c.handleEvent(context.Background(), poster, tt.event))
			assert.Empty(t, poster.posts)
		})
	}
	assert.Empty(t, gen.prompts)
}

func TestHandleEvent_IgnoreOtherBots(t *testing.T) {
	gen := &stubGenerator{}
	c, _ := newTestConnector(t, gen, relay.WithOptions(relay.Options{IgnoreBots: true}))
	poster := &fakePoster{}

	out := c.handleEvent(context.Background(), poster, messageEvent(&slackevents.MessageEvent{
		BotID: "B2", Channel: "C1", Text: "?hi", SubType: "bot_message",
	}))

	assert.Equal(t, relay.OutcomeIgnored, out)
	assert.Empty(t, gen.prompts)
}

func TestHandleEvent_PostErrorIsLogged(t *testing.T) {
	c, buf := newTestConnector(t, &stubGenerator{})
	poster := &fakePoster{err: errors.New("not_in_channel")}

	c.handleEvent(context.Background(), poster, messageEvent(&slackevents.MessageEvent{User: "U1", Channel: "C1", Text: "?hi"}))

	assert.Contains(t, buf.String(), "not_in_channel")
}

func TestCommandRegistry(t *testing.T) {
	c, _ := newTestConnector(t, &stubGenerator{})

	resp := c.commands.Handle(slack.SlashCommand{Command: "/help"})
	assert.Equal(t, relay.UsageText("?"), resp["text"])

	resp = c.commands.Handle(slack.SlashCommand{Command: "/nope"})
	assert.Equal(t, "Unknown command: /nope", resp["text"])
}

func TestHandleEvent_UnescapesEntities(t *testing.T) {
	gen := &stubGenerator{}
	c, _ := newTestConnector(t, gen)

	c.handleEvent(context.Background(), &fakePoster{}, messageEvent(&slackevents.MessageEvent{
		User: "U1", Channel: "C1", Text: "?is 1 &lt; 2 &amp;&amp; 3 &gt; 2, and &amp;lt; stays literal",
	}))

	assert.Equal(t, []string{"is 1 < 2 && 3 > 2, and &lt; stays literal"}, gen.prompts)
}

func TestRelayEvent_AcksBeforeGenerating(t *testing.T) {
	gen := &blockingGenerator{started: make(chan string, 2), release: make(chan struct{})}
	c, _ := newTestConnector(t, gen)
	ack := &fakeAcker{}
	poster := &fakePoster{}

	c.relayEvent(context.Background(), ack, poster, eventsAPIEnvelope("env-a", "?first", 0))
	c.relayEvent(context.Background(), ack, poster, eventsAPIEnvelope("env-b", "?second", 0))

	// Both envelopes are acked while neither generation has finished.
	assert.Equal(t, []string{"env-a", "env-b"}, ack.ids)

	var prompts []string
	for range 2 {
		select {
		case p := <-gen.started:
			prompts = append(prompts, p)
		case <-time.After(2 * time.Second):
			t.Fatal("second envelope waited for the first generation")
		}
	}
	assert.ElementsMatch(t, []string{"first", "second"}, prompts)

	close(gen.release)
	c.inflight.Wait()
	assert.Len(t, poster.posts, 2)
}

func TestRelayEvent_DropsRedelivery(t *testing.T) {
	gen := &stubGenerator{}
	c, buf := newTestConnector(t, gen)
	ack := &fakeAcker{}
	poster := &fakePoster{}

	c.relayEvent(context.Background(), ack, poster, eventsAPIEnvelope("env-a", "?first", 1))
	c.inflight.Wait()

	assert.Equal(t, []string{"env-a"}, ack.ids)
	assert.Empty(t, gen.prompts)
	assert.Empty(t, poster.posts)
	assert.Contains(t, buf.String(), "Dropping redelivered event")
}

func TestRelayEvent_IgnoresMalformedPayload(t *testing.T) {
	c, _ := newTestConnector(t, &stubGenerator{})
	ack := &fakeAcker{}

	c.relayEvent(context.Background(), ack, &fakePoster{}, socketmode.Event{
		Type:    socketmode.EventTypeEventsAPI,
		Data:    "not an event",
		Request: &socketmode.Request{EnvelopeID: "env-x"},
	})
	c.inflight.Wait()

	assert.Empty(t, ack.ids)
}
