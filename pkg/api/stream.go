// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DataDog/hearth/pkg/util/log"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 30 * time.Second
)

// handleStream fans the sensor bus out over a websocket. Each update
// batch becomes one JSON frame. A slow consumer misses batches rather
// than stalling the bus; the subscription channel drops when full.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client.
		log.Debugf("stream upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	ch := s.deps.Bus.Subscribe(r.RemoteAddr)
	defer s.deps.Bus.Unsubscribe(ch)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()
	for {
		select {
		case batch, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait)) //nolint:errcheck
			if err := conn.WriteJSON(batch); err != nil {
				log.Debugf("stream write to %s failed: %v", r.RemoteAddr, err)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
