package opponent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want Event
	}{
		{"id name Stockfish 17", Event{Type: EventID, Key: "name", Value: "Stockfish 17"}},
		{"uciok", Event{Type: EventUCIOK}},
		{"readyok", Event{Type: EventReadyOK}},
		{"bestmove e2e4 ponder e7e5", Event{Type: EventBestMove, Move: "e2e4", Ponder: "e7e5"}},
		{"bestmove e7e8q", Event{Type: EventBestMove, Move: "e7e8q"}},
		{"info depth 1 score cp 20", Event{Type: EventInfo, Raw: "info depth 1 score cp 20"}},
		{"option name Hash type spin", Event{Type: EventUnknown, Raw: "option name Hash type spin"}},
	}
	for _, tt := range tests {
		got, err := ParseLine(tt.line)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", tt.line, err)
		}
		if got != tt.want {
			t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
	for _, bad := range []string{"", "   ", "bestmove", "id name"} {
		if _, err := ParseLine(bad); err == nil {
			t.Errorf("ParseLine(%q) should fail", bad)
		}
	}
}

// fakeEngine answers protocol commands through reply, standing in for an
// engine process.
func fakeEngine(reply func(cmd string) []string) (io.WriteCloser, io.Reader, chan string) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	seen := make(chan string, 64)
	go func() {
		defer outW.Close()
		sc := bufio.NewScanner(inR)
		for sc.Scan() {
			cmd := sc.Text()
			seen <- cmd
			for _, l := range reply(cmd) {
				fmt.Fprintln(outW, l)
			}
			if cmd == "quit" {
				return
			}
		}
	}()
	return inW, outR, seen
}

func standardReplies(best string) func(string) []string {
	return func(cmd string) []string {
		switch {
		case cmd == "uci":
			return []string{"id name Fake 1.0", "id author nobody", "uciok"}
		case cmd == "isready":
			return []string{"readyok"}
		case strings.HasPrefix(cmd, "go"):
			return []string{"info depth 1 score cp 10", "", "bestmove " + best}
		}
		return nil
	}
}

func TestProposeMove(t *testing.T) {
	stdin, stdout, seen := fakeEngine(standardReplies("e7e8q"))
	ctx := context.Background()
	e, err := newUCIEngine(ctx, nil, stdin, stdout, 150*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if e.Name() != "Fake 1.0" {
		t.Fatalf("name = %q", e.Name())
	}

	const fen = "8/4P3/8/8/8/8/k7/4K3 w - - 0 1"
	move, err := e.ProposeMove(ctx, fen)
	if err != nil {
		t.Fatal(err)
	}
	if move != "e7e8q" {
		t.Fatalf("move = %q", move)
	}

	var cmds []string
	for len(seen) > 0 {
		cmds = append(cmds, <-seen)
	}
	joined := strings.Join(cmds, "|")
	if !strings.Contains(joined, "position fen "+fen+"|go movetime 150") {
		t.Fatalf("commands = %v", cmds)
	}
}

func TestProposeMoveNoMove(t *testing.T) {
	stdin, stdout, _ := fakeEngine(standardReplies("(none)"))
	e, err := newUCIEngine(context.Background(), nil, stdin, stdout, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if _, err := e.ProposeMove(context.Background(), "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"); !errors.Is(err, ErrNoMove) {
		t.Fatalf("err = %v, want ErrNoMove", err)
	}
}

func TestProposeMoveCancelled(t *testing.T) {
	replies := standardReplies("e2e4")
	stdin, stdout, _ := fakeEngine(func(cmd string) []string {
		switch {
		case strings.HasPrefix(cmd, "go"):
			return nil
		case cmd == "stop":
			return []string{"bestmove e2e4"}
		}
		return replies(cmd)
	})
	e, err := newUCIEngine(context.Background(), nil, stdin, stdout, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := e.ProposeMove(ctx, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if err := e.ready(context.Background()); err != nil {
		t.Fatalf("engine unusable after a cancelled search: %v", err)
	}
}

func TestProposeMoveAfterClose(t *testing.T) {
	stdin, stdout, _ := fakeEngine(standardReplies("e2e4"))
	e, err := newUCIEngine(context.Background(), nil, stdin, stdout, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ProposeMove(context.Background(), "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1"); !errors.Is(err, ErrEngineClosed) {
		t.Fatalf("err = %v, want ErrEngineClosed", err)
	}
}

// eofReader closes eof once the wrapped reader is exhausted.
type eofReader struct {
	r    io.Reader
	eof  chan struct{}
	once sync.Once
}

func (r *eofReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err == io.EOF {
		r.once.Do(func() { close(r.eof) })
	}
	return n, err
}

func TestOutputDrainedAfterClose(t *testing.T) {
	replies := standardReplies("e2e4")
	stdin, stdout, _ := fakeEngine(func(cmd string) []string {
		if cmd != "quit" {
			return replies(cmd)
		}
		lines := make([]string, 500)
		for i := range lines {
			lines[i] = fmt.Sprintf("info string line %d", i)
		}
		return lines
	})
	out := &eofReader{r: stdout, eof: make(chan struct{})}
	e, err := newUCIEngine(context.Background(), nil, stdin, out, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-out.eof:
	case <-time.After(2 * time.Second):
		t.Fatal("engine output was not read to the end after Close")
	}
}

func TestStartUCIRequiresPath(t *testing.T) {
	if _, err := StartUCI(context.Background(), "", time.Second); err == nil {
		t.Fatal("empty path should fail")
	}
}
