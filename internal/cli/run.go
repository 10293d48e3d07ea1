package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/domain"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Engine EngineOptions
	// Messages are dispatched in order. When empty, messages are read from In,
	// one per line, until EOF or a line reading "exit" or "quit".
	Messages []string
	// JSON prints one JSON object per dispatch instead of text.
	JSON  bool
	Quiet bool

	In  io.Reader
	Out io.Writer
}

// dispatchRecord is the JSON line printed per dispatch.
type dispatchRecord struct {
	domain.Result
	Current domain.StateID `json:"current"`
	Error   string         `json:"error,omitempty"`
}

// Run builds an engine from opts.Engine and drives it.
func Run(ctx context.Context, opts RunOptions) error {
	engine, closer, err := CreateEngine(ctx, opts.Engine)
	defer func() { _ = closer() }()
	if err != nil {
		return err
	}
	return Drive(ctx, engine, opts)
}

// Drive dispatches the messages of opts to engine and prints every result.
// Hook faults are reported and do not stop the loop.
func Drive(ctx context.Context, engine *waypoint.Engine, opts RunOptions) error {
	out := opts.Out
	quiet := opts.Quiet || opts.JSON

	if !quiet {
		printSystemMessage(out, "Machine '%s' at '%s' state.", engine.Name, engine.Current())
	}

	var enc *json.Encoder
	if opts.JSON {
		enc = json.NewEncoder(out)
	}

	messages, readErr := messageSource(ctx, opts)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var msg string
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok = <-messages:
		}
		if !ok {
			// The reader reports before closing messages.
			select {
			case err := <-readErr:
				return fmt.Errorf("failed to read messages: %w", err)
			default:
			}
			break
		}

		res, err := engine.Dispatch(ctx, domain.MessageID(msg))
		if enc != nil {
			rec := dispatchRecord{Result: res, Current: engine.Current()}
			if err != nil {
				rec.Error = err.Error()
			}
			if encErr := enc.Encode(rec); encErr != nil {
				return encErr
			}
			continue
		}
		fmt.Fprintln(out, FormatResult(res))
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}

	if !quiet {
		printSystemMessage(out, "Finished at '%s' state.", engine.Current())
	}
	return nil
}

// FormatResult renders a dispatch result on one line.
func FormatResult(res domain.Result) string {
	if !res.Found() {
		return fmt.Sprintf("%s --%s [%s]", res.From, res.Message, res.Outcome)
	}
	label := string(res.Message)
	if res.Action != "" {
		label += " / " + res.Action
	}
	return fmt.Sprintf("%s --%s--> %s [%s]", res.From, label, res.Next, res.Outcome)
}

// messageSource yields the messages to dispatch. The message channel closes once
// the input is exhausted; a read failure is sent on the error channel first.
func messageSource(ctx context.Context, opts RunOptions) (<-chan string, <-chan error) {
	ch := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(ch)
		emit := func(msg string) bool {
			select {
			case ch <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if len(opts.Messages) > 0 || opts.In == nil {
			for _, msg := range opts.Messages {
				if !emit(msg) {
					return
				}
			}
			return
		}

		scanner := bufio.NewScanner(opts.In)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if line == "exit" || line == "quit" {
				return
			}
			if !emit(line) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errc <- err
		}
	}()

	return ch, errc
}
