package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/w-h-a/ragchat"
)

const (
	Banner = "Welcome to the country information chatbot! Ask about capitals, populations or areas.\n" +
		"Commands: /refresh, /history, /clear, /reset, /help. Type 'exit' to quit."

	userPrompt = "You: "
	botPrompt  = "Chatbot: "
	goodbye    = "Goodbye!"
)

// Source hands out the current RAGChat. *ragchat.Loader satisfies it.
type Source interface {
	Get(ctx context.Context) (*ragchat.RAGChat, error)
	Reset() error
}

type Shell struct {
	source    Source
	sessionId string
	in        *bufio.Reader
	out       io.Writer
}

// Run reads questions until an exit word or end of input. A failing
// question never ends the loop.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, Banner)

	for {
		fmt.Fprint(s.out, userPrompt)

		line, err := s.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}

		eof := errors.Is(err, io.EOF)
		input := strings.TrimSpace(line)

		if isExit(input) {
			fmt.Fprintln(s.out, goodbye)
			return nil
		}

		if len(input) > 0 {
			s.handle(ctx, input)
		}

		if eof {
			fmt.Fprintln(s.out)
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (s *Shell) handle(ctx context.Context, input string) {
	switch strings.ToLower(input) {
	case "/help":
		fmt.Fprintln(s.out, Banner)
	case "/refresh":
		s.refresh(ctx)
	case "/history":
		s.history(ctx)
	case "/clear":
		s.clear(ctx)
	case "/reset":
		if err := s.source.Reset(); err != nil {
			slog.ErrorContext(ctx, "failed to reset pipeline", "error", err)
		}
		fmt.Fprintln(s.out, "Pipeline reset.")
	default:
		s.ask(ctx, input)
	}
}

func (s *Shell) ask(ctx context.Context, input string) {
	r, err := s.current(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build pipeline", "error", err)
		fmt.Fprintln(s.out, botPrompt+"The chatbot is not configured correctly. Check the logs for details.")
		return
	}

	answer, err := r.Chat(ctx, s.sessionId, input)
	if err != nil {
		slog.ErrorContext(ctx, "failed to chat", "error", err)
		fmt.Fprintln(s.out, botPrompt+"Sorry, something went wrong.")
		return
	}

	fmt.Fprintln(s.out, botPrompt+answer)
}

func (s *Shell) refresh(ctx context.Context) {
	r, err := s.current(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build pipeline", "error", err)
		fmt.Fprintln(s.out, "error retrieving data")
		return
	}

	fmt.Fprintln(s.out, "Scraping and storing data...")

	n, err := r.Refresh(ctx)
	switch {
	case err != nil:
		fmt.Fprintln(s.out, "error retrieving data")
	case n == 0:
		fmt.Fprintln(s.out, "No countries found; keeping the existing data.")
	default:
		fmt.Fprintf(s.out, "Successfully scraped and stored %d countries!\n", n)
	}
}

func (s *Shell) history(ctx context.Context) {
	r, err := s.current(ctx)
	if err != nil {
		return
	}

	turns, err := r.History(ctx, s.sessionId)
	if err != nil || len(turns) == 0 {
		fmt.Fprintln(s.out, "No messages yet.")
		return
	}

	for _, turn := range turns {
		prefix := userPrompt
		if turn.Role == ragchat.RoleAssistant {
			prefix = botPrompt
		}
		fmt.Fprintln(s.out, prefix+turn.Text)
	}
}

func (s *Shell) clear(ctx context.Context) {
	r, err := s.current(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build pipeline", "error", err)
		return
	}

	if err := r.ClearHistory(ctx, s.sessionId); err != nil {
		slog.ErrorContext(ctx, "failed to clear history", "error", err)
		return
	}

	fmt.Fprintln(s.out, "Chat history cleared.")
}

// current returns the live RAGChat with this shell's session attached.
func (s *Shell) current(ctx context.Context) (*ragchat.RAGChat, error) {
	r, err := s.source.Get(ctx)
	if err != nil {
		return nil, err
	}

	id, err := r.CreateSession(ctx, s.sessionId)
	if err != nil {
		return nil, err
	}

	s.sessionId = id

	return r, nil
}

func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit":
		return true
	default:
		return false
	}
}

func New(source Source, in io.Reader, out io.Writer, sessionId string) *Shell {
	if source == nil {
		panic("shell requires a source")
	}

	return &Shell{
		source:    source,
		sessionId: sessionId,
		in:        bufio.NewReader(in),
		out:       out,
	}
}
