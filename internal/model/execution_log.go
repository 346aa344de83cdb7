package model

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionLog is the observability record of one stage invocation.
// Created at stage entry by the executor, finalized at exit, read-only
// afterward.
type ExecutionLog struct {
	Stage          string
	DistributionID uuid.UUID

	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration

	Success bool
	Error   string
	Retries int

	// Generative-text usage accrued during the invocation.
	LLMCalls    int
	TotalTokens int
	CostUSD     float64

	// Decision trail appended by the stage logic.
	Reasoning []string
	Decisions map[string]any
}
