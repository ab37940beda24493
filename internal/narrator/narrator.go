// Package narrator produces the optional in-character commentary of Desland,
// the old gardener, from an OpenAI-compatible chat completions endpoint.
package narrator

import (
	"context"

	"github.com/sirupsen/logrus"

	"cluedo-custom/internal/config"
)

// Prompt is one narration request.
type Prompt struct {
	System string
	User   string
}

// Narrator turns a prompt into a short text.
type Narrator interface {
	Narrate(ctx context.Context, p Prompt) (string, error)
}

// Noop never narrates.
type Noop struct{}

func (Noop) Narrate(context.Context, Prompt) (string, error) { return "", nil }

// New returns the OpenAI narrator when narration is configured, otherwise Noop.
func New(s config.Settings, logger *logrus.Logger) Narrator {
	if !s.NarrationEnabled() {
		logger.Info("Narration disabled")
		return Noop{}
	}
	logger.Infof("Narration enabled with model %s", s.OpenAIModel)
	return NewOpenAI(s.OpenAIBaseURL, s.OpenAIKey, s.OpenAIModel)
}
