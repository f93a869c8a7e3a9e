// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "hass/override/7", BuildKey("hass", "override", "7"))
}

func TestBoundedTTLExpiry(t *testing.T) {
	c := NewBoundedTTL(50*time.Millisecond, 10)
	c.Set("k", "v")

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(80 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestBoundedTTLCapacity(t *testing.T) {
	c := NewBoundedTTL(time.Minute, 3)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
		// distinct expirations so eviction order is deterministic
		time.Sleep(2 * time.Millisecond)
	}
	assert.Equal(t, 3, c.Len())

	// newest entries survive
	_, ok := c.Get("k4")
	assert.True(t, ok)
	_, ok = c.Get("k0")
	assert.False(t, ok)
}

func TestBoundedTTLFlush(t *testing.T) {
	c := NewBoundedTTL(time.Minute, 3)
	c.Set("a", 1)
	c.Flush()
	assert.Equal(t, 0, c.Len())
}
