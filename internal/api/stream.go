package api

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/gpt2gen/internal/inference"
)

// sseWriter emits a streamed generation as server-sent events.
type sseWriter struct {
	w       io.Writer
	flusher func()
	id      string
	seq     int
}

func newSSEWriter(c *echo.Context, id string) (*sseWriter, error) {
	res := c.Response()
	flusher, ok := res.(interface{ Flush() })
	if !ok {
		return nil, fmt.Errorf("streaming unsupported")
	}
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	return &sseWriter{
		w:       res,
		flusher: flusher.Flush,
		id:      id,
		seq:     1,
	}, nil
}

func (s *sseWriter) Begin() error {
	return s.send(streamEvent{Type: "generation.created"})
}

func (s *sseWriter) Token(step inference.Step) error {
	index, tokenID, position := step.Index, step.ID, step.Position
	return s.send(streamEvent{
		Type:     "generation.token",
		Index:    &index,
		TokenID:  &tokenID,
		Position: &position,
		Delta:    step.Fragment,
	})
}

func (s *sseWriter) Complete(resp GenerateResponse) error {
	if err := s.send(streamEvent{Type: "generation.completed", Response: &resp}); err != nil {
		return err
	}
	_, err := fmt.Fprint(s.w, "data: [DONE]\n\n")
	s.flush()
	return err
}

func (s *sseWriter) Failed(err error) error {
	_, errType := classify(err)
	return s.send(streamEvent{
		Type:  "generation.failed",
		Error: &ResponseError{Message: err.Error(), Type: errType},
	})
}

func (s *sseWriter) send(ev streamEvent) error {
	ev.ID = s.id
	ev.SequenceNumber = s.seq
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", b); err != nil {
		return err
	}
	s.flush()
	s.seq++
	return nil
}

func (s *sseWriter) flush() {
	if s.flusher != nil {
		s.flusher()
	}
}

// streamGenerate runs the generation in the background and forwards each
// step as it is produced.
func (s *Server) streamGenerate(c *echo.Context, id string, req *inference.Request) error {
	sw, err := newSSEWriter(c, id)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	ctx := c.Request().Context()
	task := inference.Start(ctx, s.engine, req, max(req.Tokens, 1))
	defer task.Cancel()

	if err := sw.Begin(); err != nil {
		return err
	}
	for ev := range task.Events() {
		if err := sw.Token(ev.Step); err != nil {
			task.Cancel()
			break
		}
	}
	res, err := task.Wait(ctx)
	if err != nil {
		s.log.Warn("stream failed", "generation_id", id, "error", err)
		return sw.Failed(err)
	}
	return sw.Complete(s.generateResponse(id, res))
}
