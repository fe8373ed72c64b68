package telegram

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

type fakeSender struct {
	sent []*bot.SendMessageParams
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, params)
	return &models.Message{}, f.err
}

type stubGenerator struct {
	prompts []string
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Generate(_ context.Context, prompt string) relay.Result {
	g.prompts = append(g.prompts, prompt)
	return relay.Success("answer")
}

func newTestConnector(t *testing.T, gen relay.Generator) (*Connector, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.NewLogger(logger.Config{Level: logger.DebugLevel, Output: &buf})
	c, err := NewConnector(Config{BotToken: "123:abc"}, relay.NewHandler(gen, log), log)
	require.NoError(t, err)
	c.botID = "999"
	return c, &buf
}

func update(fromID int64, isBot bool, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			Text: text,
			From: &models.User{ID: fromID, IsBot: isBot},
			Chat: models.Chat{ID: -100},
		},
	}
}

func TestNewConnector_Validation(t *testing.T) {
	log := logger.NewLogger(logger.Config{Output: &bytes.Buffer{}})

	_, err := NewConnector(Config{}, relay.NewHandler(&stubGenerator{}, log), log)
	assert.Error(t, err)

	_, err = NewConnector(Config{BotToken: "t"}, nil, log)
	assert.Error(t, err)
}

func TestDispatch_RelaysToSameChat(t *testing.T) {
	gen := &stubGenerator{}
	c, _ := newTestConnector(t, gen)
	sender := &fakeSender{}

	out := c.dispatch(context.Background(), sender, update(1, false, "?  hi there "))

	assert.Equal(t, relay.OutcomeReplied, out)
	assert.Equal(t, []string{"hi there"}, gen.prompts)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(-100), sender.sent[0].ChatID)
	assert.Equal(t, "answer", sender.sent[0].Text)
}

func TestDispatch_IgnoresSelfAndPlainText(t *testing.T) {
	gen := &stubGenerator{}
	c, _ := newTestConnector(t, gen)
	sender := &fakeSender{}

	assert.Equal(t, relay.OutcomeIgnored, c.dispatch(context.Background(), sender, update(999, true, "?hi")))
	assert.Equal(t, relay.OutcomeIgnored, c.dispatch(context.Background(), sender, update(1, false, "hi")))
	assert.Equal(t, relay.OutcomeIgnored, c.dispatch(context.Background(), sender, &models.Update{}))
	assert.Empty(t, sender.sent)
	assert.Empty(t, gen.prompts)
}

func TestDispatch_HelpCommand(t *testing.T) {
	gen := &stubGenerator{}
	c, _ := newTestConnector(t, gen)
	sender := &fakeSender{}

	out := c.dispatch(context.Background(), sender, update(1, false, "/help@relay_bot"))

	assert.Equal(t, relay.OutcomeInstructed, out)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, relay.UsageText("?"), sender.sent[0].Text)
	assert.Empty(t, gen.prompts)
}

func TestDispatch_UnknownCommandIsNotACommandReply(t *testing.T) {
	c, _ := newTestConnector(t, &stubGenerator{})
	sender := &fakeSender{}

	out := c.dispatch(context.Background(), sender, update(1, false, "/weather"))

	assert.Equal(t, relay.OutcomeIgnored, out)
	assert.Empty(t, sender.sent)
}

func TestDispatch_SendErrorIsLogged(t *testing.T) {
	c, buf := newTestConnector(t, &stubGenerator{})
	sender := &fakeSender{err: errors.New("chat not found")}

	c.dispatch(context.Background(), sender, update(1, false, "?hi"))

	assert.Contains(t, buf.String(), "chat not found")
}

func TestCommandRegistry(t *testing.T) {
	r := NewCommandRegistry()
	r.Register("/echo", func(args string) string { return args })

	reply, ok := r.Handle("/echo hello world")
	assert.True(t, ok)
	assert.Equal(t, "hello world", reply)

	_, ok = r.Handle("/missing")
	assert.False(t, ok)

	assert.True(t, r.IsCommand("/echo"))
	assert.False(t, r.IsCommand("?echo"))
}
