package domain

import (
	"fmt"
	"time"
)

// Role identifies who is asking. It namespaces cached responses and frames the prompt.
type Role string

// Supported requester roles.
const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleStaff   Role = "staff"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, s)
	}
	return role, nil
}

// Valid reports whether the role is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent, RoleStaff:
		return true
	default:
		return false
	}
}

// TaskType is the kind of work a request asks for.
type TaskType string

// Supported task types.
const (
	TaskChat            TaskType = "chat"
	TaskSummarization   TaskType = "summarization"
	TaskDataAnalysis    TaskType = "data_analysis"
	TaskImageGeneration TaskType = "image_generation"
	TaskCodeGeneration  TaskType = "code_generation"
)

// Valid reports whether the task type is known.
func (t TaskType) Valid() bool {
	switch t {
	case TaskChat, TaskSummarization, TaskDataAnalysis, TaskImageGeneration, TaskCodeGeneration:
		return true
	default:
		return false
	}
}

// Intent expresses what the caller optimizes for.
type Intent string

// Supported intents.
const (
	IntentLowLatency  Intent = "low_latency"
	IntentHighQuality Intent = "high_quality"
	IntentLowCost     Intent = "low_cost"
	IntentBalanced    Intent = "balanced"
)

// Valid reports whether the intent is known.
func (i Intent) Valid() bool {
	switch i {
	case IntentLowLatency, IntentHighQuality, IntentLowCost, IntentBalanced:
		return true
	default:
		return false
	}
}

// GenerationRequest is a single call into the gateway.
type GenerationRequest struct {
	Prompt   string   `json:"prompt"`
	Role     Role     `json:"role"`
	TaskType TaskType `json:"task_type,omitempty"`
	Intent   Intent   `json:"intent,omitempty"`
}

// Validate checks the request fields.
func (r GenerationRequest) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("%w: prompt cannot be empty", ErrInvalidRequest)
	}

	if !r.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, r.Role)
	}

	if r.TaskType != "" && !r.TaskType.Valid() {
		return fmt.Errorf("%w: unknown task type %q", ErrInvalidRequest, r.TaskType)
	}

	if r.Intent != "" && !r.Intent.Valid() {
		return fmt.Errorf("%w: unknown intent %q", ErrInvalidRequest, r.Intent)
	}

	return nil
}

// StreamChunk represents a single streaming response chunk.
//
// A stream carries zero or more delta chunks followed by exactly one terminal
// chunk: Done for success or a non-nil Error for failure.
type StreamChunk struct {
	Delta string `json:"delta"`
	Done  bool   `json:"done"`
	Error error  `json:"-"`
}

// Generation is the result of a gateway call.
type Generation struct {
	Chunks   <-chan StreamChunk
	CacheHit bool
	Provider string
}

// RouteCriteria selects providers. Empty fields act as wildcards in rules.
type RouteCriteria struct {
	TaskType TaskType `json:"task_type,omitempty" yaml:"task_type,omitempty"`
	Intent   Intent   `json:"intent,omitempty"    yaml:"intent,omitempty"`
}

// Matches reports whether every field set on c equals the corresponding field of req.
func (c RouteCriteria) Matches(req RouteCriteria) bool {
	if c.TaskType != "" && c.TaskType != req.TaskType {
		return false
	}
	if c.Intent != "" && c.Intent != req.Intent {
		return false
	}
	return true
}

// RoutingRule maps criteria to a preferred provider.
type RoutingRule struct {
	Criteria    RouteCriteria `yaml:"criteria"`
	ProviderID  string        `yaml:"provider"`
	Description string        `yaml:"description"`
}

// HealthRecord is the last known liveness and latency of a provider.
type HealthRecord struct {
	Healthy   bool      `json:"healthy"`
	LatencyMs int64     `json:"latency_ms"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VectorRecord is a text chunk and its embedding.
type VectorRecord struct {
	Content   string    `json:"content"`
	Embedding []float64 `json:"-"`
}

// ScoredRecord is a search hit with its cosine similarity.
type ScoredRecord struct {
	VectorRecord
	Similarity float64 `json:"similarity"`
}
