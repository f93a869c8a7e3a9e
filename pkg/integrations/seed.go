// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package integrations

import (
	"context"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/util/log"
)

// SeedEntry is one integration's desired configuration in the seed file.
type SeedEntry struct {
	ID         string            `yaml:"id"`
	Enabled    bool              `yaml:"enabled"`
	Attributes map[string]string `yaml:"attributes"`
}

// SeedFile declares integration configuration applied at startup, for
// setups provisioned from files rather than the API.
type SeedFile struct {
	Integrations []SeedEntry `yaml:"integrations"`
}

// LoadSeed parses the YAML seed file at path.
func LoadSeed(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigf("reading integrations seed file %s: %v", path, err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, errors.NewConfigf("parsing integrations seed file %s: %v", path, err)
	}
	for _, entry := range seed.Integrations {
		if entry.ID == "" {
			return nil, errors.NewConfigf("integrations seed file %s: entry without id", path)
		}
	}
	return &seed, nil
}

// ApplySeed pushes the seed through the registry. Unknown ids and
// per-entry failures log and continue; provisioning one integration
// badly should not block the rest.
func ApplySeed(ctx context.Context, reg *Registry, seed *SeedFile) {
	for _, entry := range seed.Integrations {
		var err error
		if entry.Enabled {
			err = reg.Enable(ctx, entry.ID, entry.Attributes)
		} else {
			err = reg.Disable(ctx, entry.ID)
		}
		if err != nil {
			log.Errorf("seeding integration %s: %v", entry.ID, err)
			continue
		}
		log.Infof("seeded integration %s (enabled=%v)", entry.ID, entry.Enabled)
	}
}
