// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package monitor

// AggregationRule maps per-source health into the monitor's API status.
type AggregationRule string

// Aggregation rules.
const (
	RuleHeartbeatOnly   AggregationRule = "HEARTBEAT_ONLY"
	RuleAllHealthy      AggregationRule = "ALL_HEALTHY"
	RuleMajorityHealthy AggregationRule = "MAJORITY_HEALTHY"
	RuleAnyHealthy      AggregationRule = "ANY_HEALTHY"
	RuleWeighted        AggregationRule = "WEIGHTED"
)

// DefaultRule picks the aggregation rule from the source count.
func DefaultRule(sourceCount int) AggregationRule {
	switch sourceCount {
	case 0:
		return RuleHeartbeatOnly
	case 1:
		return RuleAllHealthy
	default:
		return RuleMajorityHealthy
	}
}

// AggregateSources folds per-source statuses into one monitor status.
// With zero sources the result is HEALTHY: a monitor that registered no
// endpoints has nothing to degrade on (heartbeat still covers liveness).
func AggregateSources(rule AggregationRule, statuses []SourceStatus) Status {
	if rule == RuleHeartbeatOnly || len(statuses) == 0 {
		return StatusHealthy
	}

	healthy, degraded, failing := 0, 0, 0
	for _, s := range statuses {
		switch s {
		case SourceHealthy, SourceUnknown:
			// a source with no calls yet does not count against the monitor
			healthy++
		case SourceDegraded:
			degraded++
		case SourceFailing:
			failing++
		}
	}
	total := len(statuses)

	switch rule {
	case RuleAllHealthy:
		if healthy == total {
			return StatusHealthy
		}
		if failing > 0 {
			return StatusError
		}
		return StatusWarning
	case RuleMajorityHealthy:
		if healthy*2 > total {
			return StatusHealthy
		}
		if healthy > 0 || degraded > 0 {
			return StatusWarning
		}
		return StatusError
	case RuleAnyHealthy:
		if healthy > 0 {
			return StatusHealthy
		}
		if degraded > 0 {
			return StatusWarning
		}
		return StatusError
	case RuleWeighted:
		score := (float64(healthy) + 0.5*float64(degraded)) / float64(total)
		switch {
		case score >= 0.75:
			return StatusHealthy
		case score >= 0.4:
			return StatusWarning
		default:
			return StatusError
		}
	default:
		return StatusUnknown
	}
}
