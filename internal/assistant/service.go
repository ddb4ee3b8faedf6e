package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sisemasexp/portal/internal/ctxutil"
	"github.com/sisemasexp/portal/internal/logger"
)

// Reply sources reported in Response.Source and metrics.
const (
	SourceLocal = "local"
	SourceQuick = "quick"
	SourceLLM   = "llm"
)

// Augmenter generates a free-text answer from a message and local context.
type Augmenter interface {
	Generate(ctx context.Context, message, contextText string) (string, error)
}

// Limiter gates augmenter calls per client key.
type Limiter interface {
	Allow(key string) bool
}

// Recorder receives one observation per answered message.
type Recorder interface {
	RecordChat(intent, source string, duration time.Duration)
}

// Response is the final answer to a chat message.
type Response struct {
	Reply  string
	Intent Intent
	Source string
}

// Service runs the full chat pipeline: local composition, quick answers and
// optional augmentation for messages no rule understood.
type Service struct {
	composer   *Composer
	clock      *Clock
	dir        Directory
	augmenter  Augmenter
	llmLimiter Limiter
	recorder   Recorder
	logger     *logger.Logger
	llmTimeout time.Duration
}

// ServiceConfig holds the dependencies of a Service. Augmenter, LLMLimiter
// and Recorder are optional.
type ServiceConfig struct {
	Directory  Directory
	Mission    string
	Vision     string
	Clock      *Clock
	Augmenter  Augmenter
	LLMLimiter Limiter
	Recorder   Recorder
	Logger     *logger.Logger
	LLMTimeout time.Duration
}

// NewService creates the chat service.
func NewService(cfg ServiceConfig) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = NewClock(nil)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.New("info")
	}
	return &Service{
		composer:   NewComposer(cfg.Directory, cfg.Mission, cfg.Vision),
		clock:      clock,
		dir:        cfg.Directory,
		augmenter:  cfg.Augmenter,
		llmLimiter: cfg.LLMLimiter,
		recorder:   cfg.Recorder,
		logger:     log.WithModule("assistant"),
		llmTimeout: cfg.LLMTimeout,
	}
}

// AugmentationEnabled reports whether unmatched messages may reach the augmenter.
func (s *Service) AugmentationEnabled() bool {
	return s.augmenter != nil
}

// Respond answers one message. It never fails: every error path degrades to
// a locally composed reply.
func (s *Service) Respond(ctx context.Context, message string) Response {
	start := time.Now()
	resp := s.respond(ctx, message)
	if s.recorder != nil {
		s.recorder.RecordChat(resp.Intent.String(), resp.Source, time.Since(start))
	}
	return resp
}

func (s *Service) respond(ctx context.Context, message string) Response {
	var (
		reply Reply
		quick []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reply = s.composer.Compose(gctx, message)
		return nil
	})
	g.Go(func() error {
		quick = s.quickAnswers(message)
		return nil
	})
	_ = g.Wait()

	if reply.Err != nil {
		s.logger.WithError(reply.Err).
			WithField("intent", reply.Intent.String()).
			ErrorContext(ctx, "Program directory unavailable")
	}

	if reply.Intent != IntentNone || Normalize(message) == "" {
		return Response{Reply: reply.Text, Intent: reply.Intent, Source: SourceLocal}
	}

	if text, ok := s.augment(ctx, message, quick); ok {
		return Response{Reply: text, Intent: IntentNone, Source: SourceLLM}
	}
	if len(quick) > 0 {
		return Response{Reply: quick[0], Intent: IntentNone, Source: SourceQuick}
	}
	return Response{Reply: reply.Text, Intent: IntentNone, Source: SourceLocal}
}

// quickAnswers runs the intent-independent extractors, arithmetic first.
func (s *Service) quickAnswers(message string) []string {
	var out []string
	if r, ok := ExtractArithmetic(message); ok {
		out = append(out, r)
	}
	if r, ok := s.clock.Answer(message); ok {
		out = append(out, r)
	}
	return out
}

func (s *Service) augment(ctx context.Context, message string, quick []string) (string, bool) {
	if s.augmenter == nil {
		return "", false
	}
	if s.llmLimiter != nil {
		if !s.llmLimiter.Allow(ctxutil.GetClientIP(ctx)) {
			s.logger.DebugContext(ctx, "LLM quota exhausted, using local reply")
			return "", false
		}
	}

	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	text, err := s.augmenter.Generate(ctx, message, s.buildContext(ctx, quick))
	if err != nil {
		s.logger.WithError(err).WarnContext(ctx, "Augmentation failed, using local reply")
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}

// buildContext summarizes programs, current time and quick answers for the
// augmenter. A directory failure only drops the program section.
func (s *Service) buildContext(ctx context.Context, quick []string) string {
	var b strings.Builder

	programs, err := s.dir.ListPrograms(ctx)
	switch {
	case err != nil:
		s.logger.WithError(err).WarnContext(ctx, "Programs omitted from augmentation context")
	case len(programs) == 0:
		b.WriteString("Programas: ninguno registrado.\n")
	default:
		b.WriteString("Programas: ")
		b.WriteString(FormatPrograms(programs, "; "))
		b.WriteString("\n")
	}

	now := s.clock.LocalNow()
	fmt.Fprintf(&b, "Fecha y hora local: %s %s\n", now.Format(time.DateOnly), now.Format("15:04"))

	for _, q := range quick {
		b.WriteString("Respuesta calculada: ")
		b.WriteString(q)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
