package tool

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Result is the outcome of one tool-execution attempt. Execute always
// resolves business, validation, security and confirmation failures into a
// Result with Success false rather than returning an error.
type Result struct {
	Success   bool          `json:"success"`
	Data      interface{}   `json:"data,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	ToolID    string        `json:"tool_id"`
	Timestamp time.Time     `json:"timestamp"`
}

// Proposal describes a pending risky action awaiting human confirmation.
type Proposal struct {
	ID                   string                 `json:"id"`
	Tool                 string                 `json:"tool"`
	Action               string                 `json:"action"`
	Parameters           map[string]interface{} `json:"parameters"`
	Impact               string                 `json:"impact"`
	RequiresConfirmation bool                   `json:"requires_confirmation"`
	Confidence           float64                `json:"confidence"`
}

// Defaults used when a tool does not supply its own proposal builder.
const (
	defaultImpact     = "this action will modify data"
	defaultConfidence = 0.8
)

func (t *Tool) proposal(params map[string]interface{}) Proposal {
	if t.def.BuildProposal != nil {
		p := t.def.BuildProposal(params)
		if p.ID == "" {
			p.ID = gonanoid.Must()
		}
		return p
	}
	return Proposal{
		ID:                   gonanoid.Must(),
		Tool:                 t.def.Name,
		Action:               "execute",
		Parameters:           params,
		Impact:               defaultImpact,
		RequiresConfirmation: true,
		Confidence:           defaultConfidence,
	}
}
