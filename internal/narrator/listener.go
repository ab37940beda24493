package narrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"cluedo-custom/internal/events"
)

// Annotator stores narration back on a game.
type Annotator interface {
	AttachComment(code string, turnIndex int, comment string) error
	SetScenario(code, scenario string) error
}

// Listener narrates game events in the background. Outcomes are already
// decided when an event arrives; narration only decorates them.
type Listener struct {
	narrator  Narrator
	annotator Annotator
	timeout   time.Duration
	log       *logrus.Logger
	wg        sync.WaitGroup
}

func NewListener(n Narrator, a Annotator, timeout time.Duration, logger *logrus.Logger) *Listener {
	return &Listener{narrator: n, annotator: a, timeout: timeout, log: logger}
}

// HandleEvent starts narration for events of games that asked for it.
// It never blocks the publisher.
func (l *Listener) HandleEvent(e events.Event) {
	switch ev := e.(type) {
	case events.GameCreated:
		if !ev.UseNarration {
			return
		}
		l.run(ev.Code, ScenarioPrompt(ev.Rooms, ev.Suspects, ev.Tone), func(text string) error {
			return l.annotator.SetScenario(ev.Code, text)
		})
	case events.SuggestionResolved:
		if !ev.UseNarration {
			return
		}
		p := SuggestionPrompt(ev.PlayerName, ev.Suspect, ev.Weapon, ev.Room, ev.DisproverName != "", ev.Tone)
		l.run(ev.Code, p, func(text string) error {
			return l.annotator.AttachComment(ev.Code, ev.TurnIndex, text)
		})
	case events.AccusationResolved:
		if !ev.UseNarration {
			return
		}
		p := AccusationPrompt(ev.PlayerName, ev.Suspect, ev.Weapon, ev.Room, ev.Correct, ev.Tone)
		l.run(ev.Code, p, func(text string) error {
			return l.annotator.AttachComment(ev.Code, ev.TurnIndex, text)
		})
	}
}

// Wait blocks until all narrations in flight have finished.
func (l *Listener) Wait() {
	l.wg.Wait()
}

func (l *Listener) run(code string, p Prompt, store func(text string) error) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		text, err := l.narrator.Narrate(ctx, p)
		if err != nil {
			l.log.Debugf("Narration for game %s dropped: %v", code, err)
			return
		}
		if text == "" {
			return
		}
		if err := store(text); err != nil {
			l.log.Debugf("Narration for game %s not stored: %v", code, err)
		}
	}()
}
