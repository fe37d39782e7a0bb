package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/nlu"
)

// maxLineSize bounds a single classifier payload.
const maxLineSize = 1 << 20

// StreamEvent is the JSON line written for every input line.
type StreamEvent struct {
	Line         int                 `json:"line"`
	TurnID       string              `json:"turn_id,omitempty"`
	Decision     string              `json:"decision,omitempty"`
	Position     *domain.Target      `json:"position,omitempty"`
	Diff         *domain.SessionDiff `json:"diff,omitempty"`
	ForcePersist bool                `json:"force_persist,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// Stream reads one classifier payload per line from in and writes one StreamEvent
// per line to out. A "topic" key on the payload sets the session topic for that turn.
// Bad lines, including lines longer than 1 MiB, are reported on out and do not
// stop the stream.
func (r *Runner) Stream(ctx context.Context, sessionID string, in io.Reader, out io.Writer) error {
	br := bufio.NewReaderSize(in, 64*1024)
	enc := json.NewEncoder(out)

	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, tooLong, readErr := readLine(br)
		if readErr != nil && readErr != io.EOF {
			return readErr
		}
		if readErr == nil || len(raw) > 0 || tooLong {
			line++
		}

		var evt StreamEvent
		switch text := bytes.TrimSpace(raw); {
		case tooLong:
			evt = StreamEvent{Error: fmt.Sprintf("line exceeds %d bytes", maxLineSize)}
		case len(text) > 0:
			evt = r.streamTurn(ctx, sessionID, text)
		}
		if evt != (StreamEvent{}) {
			evt.Line = line
			if err := enc.Encode(evt); err != nil {
				return fmt.Errorf("write event: %w", err)
			}
		}

		if readErr == io.EOF {
			return nil
		}
	}
}

// readLine returns the next line without its terminator. Lines above maxLineSize are
// consumed and discarded, reported through tooLong.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLineSize+1 {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return bytes.TrimRight(line, "\r\n"), tooLong, err
	}
}

func (r *Runner) streamTurn(ctx context.Context, sessionID string, payload []byte) StreamEvent {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return StreamEvent{Error: fmt.Sprintf("invalid json: %v", err)}
	}

	var opts []colloquy.TurnOption
	if topic, ok := raw["topic"].(string); ok {
		opts = append(opts, colloquy.WithTopic(topic))
	}

	u, err := nlu.Decode(raw)
	if err != nil {
		return StreamEvent{Error: err.Error()}
	}

	res, err := r.HandleTurn(ctx, sessionID, u, opts...)
	if err != nil {
		return StreamEvent{Error: err.Error()}
	}

	pos := res.Session.Position.Current()
	return StreamEvent{
		TurnID:       res.TurnID,
		Decision:     res.Decision.Describe(),
		Position:     &pos,
		Diff:         res.Diff,
		ForcePersist: res.ForcePersist,
	}
}
