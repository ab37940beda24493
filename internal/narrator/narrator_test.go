package narrator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cluedo-custom/internal/config"
	"cluedo-custom/internal/events"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestOpenAINarrate(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Je suis Leland... euh, Desland.  "}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL+"/v1/", "secret", "gpt-test")
	text, err := o.Narrate(context.Background(), Prompt{System: "sys", User: "usr"})
	require.NoError(t, err)

	assert.Equal(t, "Je suis Leland... euh, Desland.", text)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, float32(temperature), got.Temperature)
	assert.Equal(t, maxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "usr", got.Messages[1].Content)
}

func TestOpenAIFailures(t *testing.T) {
	respond := func(status int, body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(body))
		}))
	}

	t.Run("api error", func(t *testing.T) {
		srv := respond(http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
		defer srv.Close()

		_, err := NewOpenAI(srv.URL, "k", "m").Narrate(context.Background(), Prompt{})
		var apiErr *openai.APIError
		require.True(t, errors.As(err, &apiErr), "got %v", err)
		assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
		assert.Equal(t, "bad key", apiErr.Message)
	})

	t.Run("not json", func(t *testing.T) {
		srv := respond(http.StatusBadGateway, `<html>`)
		defer srv.Close()

		_, err := NewOpenAI(srv.URL, "k", "m").Narrate(context.Background(), Prompt{})
		var reqErr *openai.RequestError
		require.True(t, errors.As(err, &reqErr), "got %v", err)
		assert.Equal(t, http.StatusBadGateway, reqErr.HTTPStatusCode)
	})

	cases := map[string]struct {
		body string
		want string
	}{
		"no choices": {`{"choices":[]}`, "no choices"},
		"empty text": {`{"choices":[{"message":{"content":"  "}}]}`, "empty content"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := respond(http.StatusOK, tc.body)
			defer srv.Close()

			_, err := NewOpenAI(srv.URL, "k", "m").Narrate(context.Background(), Prompt{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestOpenAIHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewOpenAI(srv.URL, "k", "m").Narrate(ctx, Prompt{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewFallsBackToNoop(t *testing.T) {
	s := config.Defaults()
	assert.IsType(t, Noop{}, New(s, quietLogger()))

	s.UseAI = true
	assert.IsType(t, Noop{}, New(s, quietLogger()), "no key")

	s.OpenAIKey = "k"
	assert.IsType(t, &OpenAI{}, New(s, quietLogger()))
}

func TestPrompts(t *testing.T) {
	p := ScenarioPrompt([]string{"Kitchen", "Hall"}, []string{"Pierre"}, "")
	assert.Contains(t, p.User, "Kitchen, Hall")
	assert.Contains(t, p.User, "Pierre")
	assert.Contains(t, p.User, DefaultTone)
	assert.Contains(t, p.System, "Desland")

	p = SuggestionPrompt("Ann", "Pierre", "Rope", "Hall", true, "Thriller")
	assert.Contains(t, p.User, "Pierre avec Rope dans Hall")
	assert.Contains(t, p.User, "Résultat: réfutée")
	assert.Contains(t, p.User, "Thriller")

	p = SuggestionPrompt("Ann", "Pierre", "Rope", "Hall", false, "")
	assert.Contains(t, p.User, "pas réfutée")

	assert.Contains(t, AccusationPrompt("Ann", "Pierre", "Rope", "Hall", true, "").User, "Gagnant: Ann")
	assert.Contains(t, AccusationPrompt("Ann", "Pierre", "Rope", "Hall", false, "").User, "Résultat: fausse")
}

type fakeNarrator struct {
	mu      sync.Mutex
	prompts []Prompt
	reply   string
	err     error
}

func (f *fakeNarrator) Narrate(ctx context.Context, p Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	return f.reply, f.err
}

type fakeAnnotator struct {
	mu        sync.Mutex
	comments  map[int]string
	scenarios map[string]string
}

func newFakeAnnotator() *fakeAnnotator {
	return &fakeAnnotator{comments: map[int]string{}, scenarios: map[string]string{}}
}

func (f *fakeAnnotator) AttachComment(code string, turnIndex int, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[turnIndex] = comment
	return nil
}

func (f *fakeAnnotator) SetScenario(code, scenario string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scenarios[code] = scenario
	return nil
}

func TestListener(t *testing.T) {
	t.Run("narrates games that asked for it", func(t *testing.T) {
		n := &fakeNarrator{reply: "Koikoubaiseyyyyy"}
		a := newFakeAnnotator()
		l := NewListener(n, a, time.Second, quietLogger())

		l.HandleEvent(events.GameCreated{Base: events.Base{Code: "AB12"}, Rooms: []string{"Hall"}, UseNarration: true})
		l.HandleEvent(events.SuggestionResolved{Base: events.Base{Code: "AB12"}, TurnIndex: 2, PlayerName: "Ann", UseNarration: true})
		l.HandleEvent(events.AccusationResolved{Base: events.Base{Code: "AB12"}, TurnIndex: 3, PlayerName: "Ann", Correct: true, UseNarration: true})
		l.Wait()

		assert.Equal(t, "Koikoubaiseyyyyy", a.scenarios["AB12"])
		assert.Equal(t, "Koikoubaiseyyyyy", a.comments[2])
		assert.Equal(t, "Koikoubaiseyyyyy", a.comments[3])
		assert.Len(t, n.prompts, 3)
	})

	t.Run("ignores games without narration and other events", func(t *testing.T) {
		n := &fakeNarrator{reply: "x"}
		l := NewListener(n, newFakeAnnotator(), time.Second, quietLogger())

		l.HandleEvent(events.SuggestionResolved{Base: events.Base{Code: "AB12"}})
		l.HandleEvent(events.TurnPassed{Base: events.Base{Code: "AB12"}})
		l.Wait()

		assert.Empty(t, n.prompts)
	})

	t.Run("failures are dropped", func(t *testing.T) {
		n := &fakeNarrator{err: errors.New("timeout")}
		a := newFakeAnnotator()
		l := NewListener(n, a, time.Second, quietLogger())

		l.HandleEvent(events.SuggestionResolved{Base: events.Base{Code: "AB12"}, UseNarration: true})
		l.Wait()

		assert.Empty(t, a.comments)
	})

	t.Run("slow narrators are cut off", func(t *testing.T) {
		a := newFakeAnnotator()
		slow := narratorFunc(func(ctx context.Context, p Prompt) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
		l := NewListener(slow, a, 20*time.Millisecond, quietLogger())

		l.HandleEvent(events.GameCreated{Base: events.Base{Code: "AB12"}, UseNarration: true})
		l.Wait()

		assert.Empty(t, a.scenarios)
	})
}

type narratorFunc func(ctx context.Context, p Prompt) (string, error)

func (f narratorFunc) Narrate(ctx context.Context, p Prompt) (string, error) { return f(ctx, p) }

func TestNoop(t *testing.T) {
	text, err := Noop{}.Narrate(context.Background(), Prompt{User: strings.Repeat("x", 10)})
	assert.NoError(t, err)
	assert.Empty(t, text)
}
