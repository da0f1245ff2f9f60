package provider

import "context"

// StaticProvider returns a fixed response or error. Useful in tests and as
// a local fallback provider that never leaves the process.
type StaticProvider struct {
	ProviderName string
	Response     interface{}
	Err          error
	Unavailable  bool
}

// Name returns the configured provider name.
func (p *StaticProvider) Name() string {
	return p.ProviderName
}

// IsAvailable reports the configured availability.
func (p *StaticProvider) IsAvailable(ctx context.Context) bool {
	return !p.Unavailable
}

// Execute returns the configured response, or the configured error wrapped
// as an infrastructure failure.
func (p *StaticProvider) Execute(ctx context.Context, prompt string, params map[string]interface{}) (interface{}, error) {
	if p.Err != nil {
		return nil, NewError(p.ProviderName, p.Err)
	}
	return p.Response, nil
}
