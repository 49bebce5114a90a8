package inference

// RequestOptions carries optional caller overrides; nil means "use default".
type RequestOptions struct {
	Prompt *string
	Tokens *int
}

// GenDefaults holds configured defaults for unset options.
type GenDefaults struct {
	Tokens *int
}

// DefaultTokens is used when neither the caller nor the config sets a count.
const DefaultTokens = 16

func ResolveRequest(opts RequestOptions, defaults GenDefaults) Request {
	req := Request{
		Tokens: DefaultTokens,
	}

	if defaults.Tokens != nil && *defaults.Tokens >= 0 {
		req.Tokens = *defaults.Tokens
	}

	if opts.Prompt != nil {
		req.Prompt = *opts.Prompt
	}
	if opts.Tokens != nil {
		req.Tokens = *opts.Tokens
	}

	return req
}
