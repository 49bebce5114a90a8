package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/gpt2gen/internal/inference"
	"github.com/samcharles93/gpt2gen/internal/logger"
	"github.com/samcharles93/gpt2gen/internal/tokenizer"
)

type ServerConfig struct {
	Engine    inference.Engine
	Tokenizer tokenizer.Tokenizer
	Defaults  inference.GenDefaults
	Logger    logger.Logger
}

// Server exposes an engine over HTTP.
type Server struct {
	engine    inference.Engine
	tokenizer tokenizer.Tokenizer
	defaults  inference.GenDefaults
	log       logger.Logger
	now       func() time.Time
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	s := &Server{
		engine:    cfg.Engine,
		tokenizer: cfg.Tokenizer,
		defaults:  cfg.Defaults,
		log:       cfg.Logger,
		now:       time.Now,
	}
	if s.tokenizer == nil {
		if src, ok := cfg.Engine.(interface{ Tokenizer() tokenizer.Tokenizer }); ok {
			s.tokenizer = src.Tokenizer()
		}
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	return s, nil
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/generate", s.handleGenerate)
	e.POST("/v1/tokenize", s.handleTokenize)
	e.POST("/v1/detokenize", s.handleDetokenize)
}

func (s *Server) handleHealth(c *echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if v, ok := s.engine.(interface{ VocabSize() int }); ok {
		resp.VocabSize = v.VocabSize()
	}
	if v, ok := s.engine.(interface{ SequenceLength() int }); ok {
		resp.SequenceLength = v.SequenceLength()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGenerate(c *echo.Context) error {
	body, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeFailure(c, newInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err)))
	}
	if body.Prompt == nil {
		return writeFailure(c, newInvalidRequest("prompt is required"))
	}
	req := inference.ResolveRequest(inference.RequestOptions{
		Prompt: body.Prompt,
		Tokens: body.Tokens,
	}, s.defaults)

	id := newGenerationID()
	log := s.log.With("generation_id", id)
	log.Debug("generate", "prompt_bytes", len(req.Prompt), "tokens", req.Tokens, "stream", body.Stream)

	if body.Stream {
		return s.streamGenerate(c, id, &req)
	}

	res, err := s.engine.Generate(c.Request().Context(), &req, nil)
	if err != nil {
		log.Warn("generate failed", "error", err)
		return writeFailure(c, err)
	}
	log.Info("generate done", "tokens", res.Stats.TokensGenerated, "duration", res.Stats.Duration)
	return c.JSON(http.StatusOK, s.generateResponse(id, res))
}

func (s *Server) handleTokenize(c *echo.Context) error {
	if s.tokenizer == nil {
		return writeError(c, http.StatusNotImplemented, "server_error", "tokenizer unavailable", "")
	}
	body, err := decodeJSON[TokenizeRequest](c.Request().Body)
	if err != nil {
		return writeFailure(c, newInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err)))
	}
	if body.Text == nil {
		return writeFailure(c, newInvalidRequest("text is required"))
	}
	ids, err := s.tokenizer.Encode(*body.Text)
	if err != nil {
		return writeFailure(c, err)
	}
	resp := TokenizeResponse{IDs: ids}
	if resp.IDs == nil {
		resp.IDs = []int{}
	}
	if ts, ok := s.tokenizer.(interface{ TokenString(int) string }); ok {
		resp.Tokens = make([]string, len(ids))
		for i, id := range ids {
			resp.Tokens[i] = ts.TokenString(id)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDetokenize(c *echo.Context) error {
	if s.tokenizer == nil {
		return writeError(c, http.StatusNotImplemented, "server_error", "tokenizer unavailable", "")
	}
	body, err := decodeJSON[DetokenizeRequest](c.Request().Body)
	if err != nil {
		return writeFailure(c, newInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err)))
	}
	text, err := s.tokenizer.Decode(body.IDs)
	if err != nil {
		var terr *tokenizer.TokenizationError
		if errors.As(err, &terr) {
			return writeFailure(c, newInvalidRequest(err.Error()))
		}
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, DetokenizeResponse{Text: text})
}

func (s *Server) generateResponse(id string, res *inference.Result) GenerateResponse {
	ids := res.IDs
	if ids == nil {
		ids = []int{}
	}
	return GenerateResponse{
		ID:        id,
		Object:    "generation",
		CreatedAt: s.now().Unix(),
		Text:      res.Text,
		Generated: res.Generated,
		IDs:       ids,
		Usage: Usage{
			PromptTokens:     res.Stats.PromptTokens,
			CompletionTokens: res.Stats.TokensGenerated,
			InferCalls:       res.Stats.InferCalls,
			DurationMS:       res.Stats.Duration.Milliseconds(),
			TokensPerSecond:  res.Stats.TPS,
		},
	}
}
