// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package integrations

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/model"
	"github.com/DataDog/hearth/pkg/monitor"
	"github.com/DataDog/hearth/pkg/sensorbus"
	"github.com/DataDog/hearth/pkg/store/memory"
)

type stubController struct {
	lastKey   model.IntegrationKey
	lastValue string
}

func (c *stubController) Control(_ context.Context, key model.IntegrationKey, _ map[string]any, value string) (*ControlResult, error) {
	c.lastKey = key
	c.lastValue = value
	return &ControlResult{NewValue: value}, nil
}

type stubGateway struct {
	*Manager
	meta      Metadata
	ctrl      Controller
	syncCalls int
}

func newStubGateway(meta Metadata, st *memory.Store) *stubGateway {
	return &stubGateway{Manager: NewManager(meta, st, nil, nil), meta: meta}
}

func (g *stubGateway) Metadata() Metadata          { return g.meta }
func (g *stubGateway) Monitors() []monitor.Monitor { return nil }
func (g *stubGateway) Controller() Controller      { return g.ctrl }

func (g *stubGateway) ValidateConfiguration(attrs map[string]string) ValidationResult {
	return g.meta.Validate(attrs)
}

func (g *stubGateway) Sync(context.Context) (*ProcessingResult, error) {
	g.syncCalls++
	return NewProcessingResult(), nil
}

func testRegistry(t *testing.T) (*Registry, *stubGateway) {
	t.Helper()
	st := memory.New()
	g := newStubGateway(testMetadata(), st)
	reg := NewRegistry(sensorbus.New(sensorbus.Options{}))
	reg.Register(g)
	return reg, g
}

func TestRegistryUnknownIntegration(t *testing.T) {
	reg, _ := testRegistry(t)

	_, err := reg.Get("nope")
	assert.True(t, errors.IsIntegration(err))

	_, err = reg.Sync(context.Background(), "nope")
	assert.True(t, errors.IsIntegration(err))
}

func TestRegistryEnableValidates(t *testing.T) {
	reg, g := testRegistry(t)
	ctx := context.Background()

	err := reg.Enable(ctx, "demo", map[string]string{"api_url": "u"})
	assert.True(t, errors.IsIntegrationAttribute(err), "missing api_key rejected before persisting")
	assert.False(t, g.Enabled())

	require.NoError(t, reg.Enable(ctx, "demo", map[string]string{"api_url": "u", "api_key": "k"}))
	assert.True(t, g.Enabled())
}

func TestRegistrySyncRequiresEnabled(t *testing.T) {
	reg, g := testRegistry(t)
	ctx := context.Background()

	_, err := reg.Sync(ctx, "demo")
	assert.True(t, errors.IsIntegrationDisabled(err))
	assert.Zero(t, g.syncCalls)

	require.NoError(t, reg.Enable(ctx, "demo", map[string]string{"api_url": "u", "api_key": "k"}))
	res, err := reg.Sync(ctx, "demo")
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", res.RunID.String())
	assert.Equal(t, 1, g.syncCalls)
}

func TestRegistryControlRouting(t *testing.T) {
	reg, g := testRegistry(t)
	ctx := context.Background()
	key := model.IntegrationKey{IntegrationID: "demo", IntegrationName: "light.porch"}

	_, err := reg.Control(ctx, key, nil, "on")
	assert.True(t, errors.IsIntegrationDisabled(err))

	require.NoError(t, reg.Enable(ctx, "demo", map[string]string{"api_url": "u", "api_key": "k"}))
	_, err = reg.Control(ctx, key, nil, "on")
	assert.True(t, errors.IsIntegration(err), "gateway without a controller refuses")

	ctrl := &stubController{}
	g.ctrl = ctrl
	res, err := reg.Control(ctx, key, nil, "on")
	require.NoError(t, err)
	assert.Equal(t, "on", res.NewValue)
	assert.Equal(t, key, ctrl.lastKey)
}

func TestRegistryListMasksSecrets(t *testing.T) {
	reg, _ := testRegistry(t)
	require.NoError(t, reg.Enable(context.Background(), "demo", map[string]string{"api_url": "u", "api_key": "hunter2"}))

	infos := reg.List()
	require.Len(t, infos, 1)
	assert.Equal(t, "demo", infos[0].ID)
	assert.True(t, infos[0].Enabled)
	assert.Equal(t, HealthHealthy, infos[0].Health)
	assert.Equal(t, secretMask, infos[0].Attributes["api_key"])
	assert.Equal(t, "u", infos[0].Attributes["api_url"])
}

func TestLatestSensorResponsesFiltersByKey(t *testing.T) {
	bus := sensorbus.New(sensorbus.Options{})
	reg := NewRegistry(bus)

	porch := model.Sensor{ID: 1, EntityStateID: 10, IntegrationID: "demo", IntegrationName: "light.porch"}
	hall := model.Sensor{ID: 2, EntityStateID: 11, IntegrationID: "demo", IntegrationName: "light.hall"}
	bus.SetSensors([]model.Sensor{porch, hall})

	now := time.Now()
	bus.UpdateLatest(map[model.IntegrationKey]model.SensorResponse{
		porch.Key(): {Value: "on", Timestamp: now},
		hall.Key():  {Value: "off", Timestamp: now},
	})

	all, err := reg.LatestSensorResponses(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := reg.LatestSensorResponses(context.Background(), []model.IntegrationKey{porch.Key()})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "on", filtered[porch][0].Value)
}

func TestSeedFile(t *testing.T) {
	reg, g := testRegistry(t)

	path := filepath.Join(t.TempDir(), "integrations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
integrations:
  - id: demo
    enabled: true
    attributes:
      api_url: http://ha:8123
      api_key: secret
  - id: missing
    enabled: true
`), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Integrations, 2)

	ApplySeed(context.Background(), reg, seed)
	assert.True(t, g.Enabled(), "known entry applied")
	assert.Equal(t, "http://ha:8123", g.Attribute("api_url"))

	_, err = LoadSeed(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.IsConfig(err))
}
