package aggregator

import (
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

// Result summarizes an aggregation run.
type Result string

const (
	ResultComplete Result = "complete"
	ResultPartial  Result = "partial"
	ResultFailed   Result = "failed"
)

// SourceReport is the per-source breakdown of a run.
type SourceReport struct {
	Name            domain.SourceName `json:"name"`
	Endpoints       int               `json:"endpoints"`
	EndpointsOK     int               `json:"endpoints_ok"`
	EndpointsFailed int               `json:"endpoints_failed"`
	Records         int               `json:"records"`
	Unknown         bool              `json:"unknown,omitempty"`
}

// Report describes one aggregation run.
type Report struct {
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration_ns"`
	Result    Result         `json:"result"`
	Total     int            `json:"total"`
	Sources   []SourceReport `json:"sources"`
}
