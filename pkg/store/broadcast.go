// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package store

import (
	"sync"

	"github.com/DataDog/hearth/pkg/util/log"
)

// Broadcaster implements the post-commit change broadcast shared by the
// store backends. Listeners fire outside the transaction, never inside it,
// so a rollback can never publish values.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners []namedListener
}

type namedListener struct {
	name string
	fn   func()
}

// Register subscribes fn under name. Names only matter for logging.
func (b *Broadcaster) Register(name string, fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, namedListener{name: name, fn: fn})
}

// Fire invokes every listener once. A panicking listener is logged and
// does not stop the others.
func (b *Broadcaster) Fire() {
	b.mu.RLock()
	listeners := make([]namedListener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("reload listener %s panicked: %v", l.name, r)
				}
			}()
			l.fn()
		}()
	}
}
