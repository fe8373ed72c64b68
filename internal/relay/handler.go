package relay

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// Outcome is what Handle did with one message.
type Outcome string

const (
	OutcomeIgnored    Outcome = "ignored"
	OutcomeInstructed Outcome = "instructed"
	OutcomeReplied    Outcome = "replied"
	OutcomeFailed     Outcome = "failed"
)

// Recorder receives per-message measurements. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordOutcome(platform, outcome string)
	RecordGeneration(provider string, d time.Duration, failed bool)
	RecordSendFailure()
}

type noopRecorder struct{}

func (noopRecorder) RecordOutcome(string, string)                  {}
func (noopRecorder) RecordGeneration(string, time.Duration, bool) {}
func (noopRecorder) RecordSendFailure()                            {}

// Handler maps one inbound message to zero or one outbound message.
// It keeps no state between calls and is safe for concurrent use.
type Handler struct {
	generator Generator
	opts      Options
	log       logger.Logger
	recorder  Recorder
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithOptions sets trigger and bot filtering options.
func WithOptions(opts Options) HandlerOption {
	return func(h *Handler) {
		h.opts = opts
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) HandlerOption {
	return func(h *Handler) {
		if r != nil {
			h.recorder = r
		}
	}
}

// NewHandler creates a Handler around generator.
func NewHandler(generator Generator, log logger.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		generator: generator,
		log:       log,
		recorder:  noopRecorder{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes msg on behalf of the bot identified by botID.
// platform only labels logs and metrics.
func (h *Handler) Handle(ctx context.Context, platform, botID string, msg Message) Outcome {
	decision := Decide(botID, msg, h.opts)
	if decision.Action == ActionIgnore {
		h.recorder.RecordOutcome(platform, string(OutcomeIgnored))
		return OutcomeIgnored
	}

	ctx, correlationID := logger.EnsureCorrelationID(ctx)
	log := h.log.WithFields(
		logger.PlatformField(platform),
		logger.ChannelField(msg.Channel.ID()),
		logger.AuthorField(msg.AuthorID),
		logger.CorrelationIDField(correlationID),
	)

	var (
		outcome Outcome
		text    string
	)
	switch decision.Action {
	case ActionInstruct:
		outcome, text = OutcomeInstructed, InstructionText(h.opts.trigger())
		log.Debug("Command without payload")
	case ActionGenerate:
		log.Debug("Generating reply", logger.IntField("prompt_len", len(decision.Prompt)))

		start := time.Now()
		result := h.generate(ctx, log, decision.Prompt)
		h.recorder.RecordGeneration(h.generator.Name(), time.Since(start), !result.OK())

		if result.OK() {
			outcome, text = OutcomeReplied, result.Text
		} else {
			outcome, text = OutcomeFailed, FailureText(result.Failure)
			log.Error(text, logger.ProviderField(h.generator.Name()))
		}
	}

	if err := msg.Channel.Send(ctx, text); err != nil {
		h.recorder.RecordSendFailure()
		log.Error("Failed to send reply", logger.ErrorField(err), logger.StringField("outcome", string(outcome)))
	}

	h.recorder.RecordOutcome(platform, string(outcome))
	return outcome
}

// generate calls the generator once. A panic inside a client library is
// turned into a failure so one bad message cannot stop the bot.
func (h *Handler) generate(ctx context.Context, log logger.Logger, prompt string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic in generator",
				logger.StringField("panic", fmt.Sprint(r)),
				logger.StringField("stack", string(debug.Stack())))
			result = Failedf("internal error: %v", r)
		}
	}()
	return h.generator.Generate(ctx, prompt)
}
