// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package integrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/store/memory"
)

func testMetadata() Metadata {
	return Metadata{
		ID:    "demo",
		Label: "Demo",
		Attributes: []AttributeSpec{
			{Name: "api_url", Label: "API URL", IsRequired: true},
			{Name: "api_key", Label: "API key", IsRequired: true, IsSecret: true},
			{Name: "poll_interval", Label: "Poll interval", Default: "2"},
		},
	}
}

type fakeClient struct{ url string }

func TestManagerStartsDisabled(t *testing.T) {
	m := NewManager(testMetadata(), memory.New(), nil, nil)
	assert.False(t, m.Enabled())
	assert.Equal(t, HealthDisabled, m.HealthStatus())

	_, err := m.Client()
	assert.True(t, errors.IsIntegrationDisabled(err))
}

func TestEnablePersistsAndDerivesHealth(t *testing.T) {
	st := memory.New()
	factory := func(attrs map[string]string) (any, error) {
		return &fakeClient{url: attrs["api_url"]}, nil
	}
	probe := func(context.Context, any) error { return nil }
	m := NewManager(testMetadata(), st, factory, probe)
	ctx := context.Background()

	require.NoError(t, m.Enable(ctx, map[string]string{"api_url": "http://ha:8123", "api_key": "secret"}))
	assert.True(t, m.Enabled())
	assert.Equal(t, HealthHealthy, m.HealthStatus())
	assert.Equal(t, "2", m.Attribute("poll_interval"), "declared defaults fill in")

	// Persisted state survives a fresh manager over the same store.
	m2 := NewManager(testMetadata(), st, factory, probe)
	require.NoError(t, m2.Reload(ctx))
	assert.True(t, m2.Enabled())
	assert.Equal(t, "http://ha:8123", m2.Attribute("api_url"))

	client, err := m2.Client()
	require.NoError(t, err)
	assert.Equal(t, "http://ha:8123", client.(*fakeClient).url)
}

func TestDisableDropsClient(t *testing.T) {
	st := memory.New()
	m := NewManager(testMetadata(), st, func(map[string]string) (any, error) {
		return &fakeClient{}, nil
	}, nil)
	ctx := context.Background()

	require.NoError(t, m.Enable(ctx, map[string]string{"api_url": "u", "api_key": "k"}))
	require.NoError(t, m.Disable(ctx))

	assert.Equal(t, HealthDisabled, m.HealthStatus())
	_, err := m.Client()
	assert.True(t, errors.IsIntegrationDisabled(err))
}

func TestMissingRequiredAttributeIsConfigError(t *testing.T) {
	m := NewManager(testMetadata(), memory.New(), nil, nil)
	require.NoError(t, m.Enable(context.Background(), map[string]string{"api_url": "u"}))
	assert.Equal(t, HealthConfigError, m.HealthStatus())
}

func TestProbeFailureClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want IntegrationHealth
	}{
		{"auth", errors.NewConnectionf("401 unauthorized"), HealthConnectionError},
		{"connectivity", errors.NewConnectionf("dial tcp: connect refused"), HealthConnectionError},
		{"temporary", errors.NewTemporaryf("rate limited"), HealthTemporaryError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(testMetadata(), memory.New(), func(map[string]string) (any, error) {
				return &fakeClient{}, nil
			}, func(context.Context, any) error {
				return tt.err
			})
			require.NoError(t, m.Enable(context.Background(), map[string]string{"api_url": "u", "api_key": "k"}))
			assert.Equal(t, tt.want, m.HealthStatus())
		})
	}
}

func TestReloadListenersFire(t *testing.T) {
	m := NewManager(testMetadata(), memory.New(), nil, nil)
	fired := 0
	m.AddReloadListener(func() { fired++ })

	require.NoError(t, m.Enable(context.Background(), map[string]string{"api_url": "u", "api_key": "k"}))
	assert.Equal(t, 1, fired, "one reload, one notification")

	m.NotifySettingsChanged()
	assert.Equal(t, 2, fired)
}

func TestUpdateSettingsKeepsEnabledFlag(t *testing.T) {
	m := NewManager(testMetadata(), memory.New(), nil, nil)
	ctx := context.Background()

	require.NoError(t, m.UpdateSettings(ctx, map[string]string{"api_url": "u", "api_key": "k"}))
	assert.False(t, m.Enabled(), "settings alone do not enable")

	require.NoError(t, m.Enable(ctx, map[string]string{"api_url": "u", "api_key": "k"}))
	require.NoError(t, m.UpdateSettings(ctx, map[string]string{"api_url": "u2", "api_key": "k"}))
	assert.True(t, m.Enabled())
	assert.Equal(t, "u2", m.Attribute("api_url"))
}
