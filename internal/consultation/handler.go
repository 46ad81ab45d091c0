// Package consultation turns a filled-in consultation form into a generated renovation report.
package consultation

import (
	"context"
	"time"

	"renovation_consult_server/internal/ai"
	"renovation_consult_server/internal/ai/prompts"
	"renovation_consult_server/internal/metrics"
	"renovation_consult_server/internal/types"
	"renovation_consult_server/pkg/logger"

	"go.uber.org/zap"
)

// ReportGenerator is the outbound text-generation capability.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, prompt string) (string, error)
}

// ClientFactory builds a generator bound to one submission's credential.
type ClientFactory func(credential string) (ReportGenerator, error)

// NewClientFactory returns a factory producing go-openai backed generators.
func NewClientFactory(opts ai.Options) ClientFactory {
	return func(credential string) (ReportGenerator, error) {
		g, err := ai.NewGenerator(credential, opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

// Handler runs one submission at a time per call; it holds no per-submission state, so
// concurrent calls do not interact.
type Handler struct {
	newClient ClientFactory
	logger    *zap.Logger
}

func NewHandler(newClient ClientFactory, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{newClient: newClient, logger: log}
}

// Submit builds the prompt from req, makes exactly one generation call, and returns the reply
// unmodified. Failures are *Error values; nothing is retried. Once started, the call runs to
// completion even if ctx is cancelled; only ctx's values are used.
func (h *Handler) Submit(ctx context.Context, req types.ConsultationRequest) (types.ReportText, error) {
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx, h.logger).With(
		zap.String("project_type", string(req.ProjectType)),
		zap.String("location", req.Location),
		zap.Int("size_ping", req.SizePing),
		zap.Int("house_age", req.HouseAgeYears),
	)

	if req.Credential == "" {
		log.Info("consultation rejected: missing credential")
		return "", h.fail(req, &Error{Kind: KindMissingCredential, Err: ErrMissingCredential})
	}

	client, err := h.newClient(req.Credential)
	if err != nil {
		log.Warn("generation client init failed", zap.Error(err))
		return "", h.fail(req, &Error{Kind: KindClientInit, Err: err})
	}

	prompt := prompts.GetConsultationPrompt(req)

	start := time.Now()
	text, err := client.GenerateReport(ctx, prompt)
	elapsed := time.Since(start)
	metrics.GenerationDuration.Observe(elapsed.Seconds())
	if err != nil {
		log.Warn("report generation failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return "", h.fail(req, &Error{Kind: KindGeneration, Err: err})
	}

	metrics.ConsultationsTotal.WithLabelValues(string(req.ProjectType), "ok").Inc()
	log.Info("report generated", zap.Duration("elapsed", elapsed), zap.Int("report_bytes", len(text)))
	return types.ReportText(text), nil
}

func (h *Handler) fail(req types.ConsultationRequest, err *Error) error {
	metrics.ConsultationsTotal.WithLabelValues(string(req.ProjectType), string(err.Kind)).Inc()
	return err
}
