package opponent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Proposer suggests a move for the side to move in a FEN position. The move
// comes back in the 4-or-5 character form ("e2e4", "e7e8q").
type Proposer interface {
	ProposeMove(ctx context.Context, fen string) (string, error)
}

var (
	ErrNoMove       = errors.New("engine has no move")
	ErrEngineClosed = errors.New("engine is closed")
)

// EventType represents a UCI protocol event type.
type EventType int

const (
	EventUnknown EventType = iota
	EventID
	EventUCIOK
	EventReadyOK
	EventInfo
	EventBestMove
)

// Event is a parsed UCI protocol line.
type Event struct {
	Type   EventType
	Key    string
	Value  string
	Move   string
	Ponder string
	Raw    string
}

// ParseLine converts a raw line into a protocol event.
func ParseLine(line string) (Event, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, errors.New("empty line")
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "id":
		if len(fields) < 3 {
			return Event{}, fmt.Errorf("invalid id: %q", line)
		}
		return Event{Type: EventID, Key: fields[1], Value: strings.Join(fields[2:], " ")}, nil
	case "uciok":
		return Event{Type: EventUCIOK}, nil
	case "readyok":
		return Event{Type: EventReadyOK}, nil
	case "bestmove":
		if len(fields) < 2 {
			return Event{}, fmt.Errorf("invalid bestmove: %q", line)
		}
		e := Event{Type: EventBestMove, Move: fields[1]}
		if len(fields) >= 4 && fields[2] == "ponder" {
			e.Ponder = fields[3]
		}
		return e, nil
	case "info":
		return Event{Type: EventInfo, Raw: line}, nil
	}
	return Event{Type: EventUnknown, Raw: line}, nil
}

// UCIEngine drives an external UCI engine over stdin and stdout. Searches are
// serialized: one position at a time.
type UCIEngine struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	lines    chan string
	done     chan struct{}
	moveTime time.Duration

	mu     sync.Mutex
	closed bool
	name   string
}

// StartUCI launches the engine at path and completes the uci/isready
// handshake.
func StartUCI(ctx context.Context, path string, moveTime time.Duration, args ...string) (*UCIEngine, error) {
	if path == "" {
		return nil, errors.New("engine path is required")
	}
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}
	return newUCIEngine(ctx, cmd, stdin, stdout, moveTime)
}

func newUCIEngine(ctx context.Context, cmd *exec.Cmd, stdin io.WriteCloser, stdout io.Reader, moveTime time.Duration) (*UCIEngine, error) {
	e := &UCIEngine{
		cmd:      cmd,
		stdin:    stdin,
		lines:    make(chan string, 64),
		done:     make(chan struct{}),
		moveTime: moveTime,
	}
	// Output is read until EOF so the engine never blocks on a full pipe.
	// Once the engine is closed, lines are discarded.
	go func() {
		defer close(e.lines)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			select {
			case e.lines <- scanner.Text():
			case <-e.done:
			}
		}
	}()

	if err := e.send("uci"); err != nil {
		return nil, err
	}
	for {
		ev, err := e.next(ctx)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("uci handshake: %w", err)
		}
		if ev.Type == EventID && ev.Key == "name" {
			e.name = ev.Value
		}
		if ev.Type == EventUCIOK {
			break
		}
	}
	if err := e.ready(ctx); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// Name is the engine's self-reported name.
func (e *UCIEngine) Name() string {
	return e.name
}

func (e *UCIEngine) send(line string) error {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, err := io.WriteString(e.stdin, line)
	return err
}

// next blocks until the engine prints a line, the engine exits or ctx ends.
func (e *UCIEngine) next(ctx context.Context) (Event, error) {
	for {
		select {
		case line, ok := <-e.lines:
			if !ok {
				return Event{}, io.EOF
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			return ParseLine(line)
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

func (e *UCIEngine) ready(ctx context.Context) error {
	if err := e.send("isready"); err != nil {
		return err
	}
	for {
		ev, err := e.next(ctx)
		if err != nil {
			return fmt.Errorf("isready: %w", err)
		}
		if ev.Type == EventReadyOK {
			return nil
		}
	}
}

// ProposeMove searches fen for the configured move time. If ctx ends first
// the search is stopped and ctx's error returned.
func (e *UCIEngine) ProposeMove(ctx context.Context, fen string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", ErrEngineClosed
	}

	if err := e.ready(ctx); err != nil {
		return "", err
	}
	if err := e.send("position fen " + fen); err != nil {
		return "", err
	}
	if err := e.send(fmt.Sprintf("go movetime %d", e.moveTime.Milliseconds())); err != nil {
		return "", err
	}
	for {
		ev, err := e.next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				e.drainSearch()
			}
			return "", err
		}
		if ev.Type != EventBestMove {
			continue
		}
		if ev.Move == "(none)" || ev.Move == "0000" {
			return "", ErrNoMove
		}
		return ev.Move, nil
	}
}

// drainSearch stops an abandoned search and discards its bestmove so the next
// search starts clean.
func (e *UCIEngine) drainSearch() {
	if err := e.send("stop"); err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		ev, err := e.next(ctx)
		if err != nil || ev.Type == EventBestMove {
			return
		}
	}
}

// Close terminates the engine process.
func (e *UCIEngine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.done)
	e.mu.Unlock()

	_ = e.send("quit")
	_ = e.stdin.Close()
	if e.cmd == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- e.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		_ = e.cmd.Process.Kill()
		return errors.New("engine did not exit in time")
	}
}
