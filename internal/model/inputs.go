package model

import "github.com/google/uuid"

// RunID accessors let the stage executor tag logs and spans with the
// owning distribution without knowing each input's shape.

func (r AnalysisRequest) RunID() uuid.UUID   { return r.DistributionID }
func (r ComplianceRequest) RunID() uuid.UUID { return r.DistributionID }
func (r RoutingRequest) RunID() uuid.UUID    { return r.DistributionID }
func (r TargetingRequest) RunID() uuid.UUID  { return r.DistributionID }
func (r DeploymentRequest) RunID() uuid.UUID { return r.DistributionID }
