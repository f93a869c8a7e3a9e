// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRuleBySourceCount(t *testing.T) {
	assert.Equal(t, RuleHeartbeatOnly, DefaultRule(0))
	assert.Equal(t, RuleAllHealthy, DefaultRule(1))
	assert.Equal(t, RuleMajorityHealthy, DefaultRule(2))
	assert.Equal(t, RuleMajorityHealthy, DefaultRule(5))
}

func TestAggregateSources(t *testing.T) {
	tests := []struct {
		name     string
		rule     AggregationRule
		statuses []SourceStatus
		want     Status
	}{
		{"zero sources healthy", RuleAllHealthy, nil, StatusHealthy},
		{"heartbeat only ignores sources", RuleHeartbeatOnly, []SourceStatus{SourceFailing}, StatusHealthy},
		{"all healthy passes", RuleAllHealthy, []SourceStatus{SourceHealthy, SourceHealthy}, StatusHealthy},
		{"all healthy with degraded warns", RuleAllHealthy, []SourceStatus{SourceHealthy, SourceDegraded}, StatusWarning},
		{"all healthy with failing errors", RuleAllHealthy, []SourceStatus{SourceHealthy, SourceFailing}, StatusError},
		{"majority passes", RuleMajorityHealthy, []SourceStatus{SourceHealthy, SourceHealthy, SourceFailing}, StatusHealthy},
		{"minority warns", RuleMajorityHealthy, []SourceStatus{SourceHealthy, SourceFailing, SourceFailing}, StatusWarning},
		{"none errors", RuleMajorityHealthy, []SourceStatus{SourceFailing, SourceFailing}, StatusError},
		{"any healthy passes", RuleAnyHealthy, []SourceStatus{SourceFailing, SourceHealthy}, StatusHealthy},
		{"any degraded warns", RuleAnyHealthy, []SourceStatus{SourceFailing, SourceDegraded}, StatusWarning},
		{"unknown counts as healthy", RuleAllHealthy, []SourceStatus{SourceUnknown}, StatusHealthy},
		{"weighted high", RuleWeighted, []SourceStatus{SourceHealthy, SourceHealthy, SourceHealthy, SourceDegraded}, StatusHealthy},
		{"weighted mid", RuleWeighted, []SourceStatus{SourceHealthy, SourceFailing}, StatusWarning},
		{"weighted low", RuleWeighted, []SourceStatus{SourceFailing, SourceFailing, SourceDegraded}, StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateSources(tt.rule, tt.statuses))
		})
	}
}

func TestWorst(t *testing.T) {
	assert.Equal(t, StatusError, Worst(StatusHealthy, StatusError))
	assert.Equal(t, StatusWarning, Worst(StatusWarning, StatusHealthy))
	assert.Equal(t, StatusHealthy, Worst(StatusUnknown, StatusHealthy))
	assert.Equal(t, StatusHealthy, Worst(StatusHealthy, StatusHealthy))
}
