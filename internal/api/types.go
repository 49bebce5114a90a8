package api

type GenerateRequest struct {
	Prompt *string `json:"prompt"`
	Tokens *int    `json:"tokens,omitempty"`
	Stream bool    `json:"stream,omitempty"`
}

type GenerateResponse struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`
	Text      string `json:"text"`
	Generated string `json:"generated"`
	IDs       []int  `json:"ids"`
	Usage     Usage  `json:"usage"`
}

type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	InferCalls       int     `json:"infer_calls"`
	DurationMS       int64   `json:"duration_ms"`
	TokensPerSecond  float64 `json:"tokens_per_second"`
}

type TokenizeRequest struct {
	Text *string `json:"text"`
}

type TokenizeResponse struct {
	IDs    []int    `json:"ids"`
	Tokens []string `json:"tokens,omitempty"`
}

type DetokenizeRequest struct {
	IDs []int `json:"ids"`
}

type DetokenizeResponse struct {
	Text string `json:"text"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	VocabSize      int    `json:"vocab_size,omitempty"`
	SequenceLength int    `json:"sequence_length,omitempty"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// streamEvent is one server-sent event of a streamed generation.
type streamEvent struct {
	Type           string            `json:"type"`
	ID             string            `json:"id"`
	SequenceNumber int               `json:"sequence_number"`
	Index          *int              `json:"index,omitempty"`
	TokenID        *int              `json:"token_id,omitempty"`
	Position       *int              `json:"position,omitempty"`
	Delta          string            `json:"delta,omitempty"`
	Response       *GenerateResponse `json:"response,omitempty"`
	Error          *ResponseError    `json:"error,omitempty"`
}
