// Copyright (c) nano Author and TFG Co. All Rights Reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package session

import (
	"errors"

	"github.com/teamspace/presence/logger"
	"github.com/teamspace/presence/metrics"
	"github.com/teamspace/presence/protocol"
)

// readLoop is the single dispatch goroutine for one connection. Every
// inbound message is decoded and applied here, in arrival order; no
// other goroutine mutates the store while the connection lives.
func (s *Session) readLoop(conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			s.handleClosed(conn, err)
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// Malformed or unknown messages never kill the session.
			metrics.ReportCount(s.reporters, metrics.DecodeFailures, map[string]string{}, 1)
			logger.Warnf("session: dropping inbound message: %s", err)
			continue
		}
		s.dispatch(msg)
	}
}

func (s *Session) dispatch(msg interface{}) {
	switch m := msg.(type) {
	case *protocol.PlayersSnapshot:
		metrics.ReportMessageReceived(s.reporters, protocol.TypePlayersSnapshot)
		s.store.ApplySnapshot(m.Players)
		s.mu.Lock()
		if s.status == StatusJoined {
			s.status = StatusActive
		}
		s.mu.Unlock()

	case *protocol.PlayerJoined:
		metrics.ReportMessageReceived(s.reporters, protocol.TypePlayerJoined)
		if !s.store.ApplyJoined(m.Player) {
			return
		}
		if p, ok := s.store.Get(m.Player.ID); ok {
			s.mu.Lock()
			callbacks := s.onPlayerJoin
			s.mu.Unlock()
			for _, cb := range callbacks {
				cb(p)
			}
		}

	case *protocol.PlayerLeft:
		metrics.ReportMessageReceived(s.reporters, protocol.TypePlayerLeft)
		if !s.store.ApplyLeft(m.PlayerID) {
			return
		}
		s.mu.Lock()
		callbacks := s.onPlayerLeave
		s.mu.Unlock()
		for _, cb := range callbacks {
			cb(m.PlayerID)
		}

	case *protocol.PositionBroadcast:
		metrics.ReportMessageReceived(s.reporters, protocol.TypePositionBroadcast)
		s.store.ApplyPosition(m)

	case *protocol.EquipmentBroadcast:
		metrics.ReportMessageReceived(s.reporters, protocol.TypeEquipmentBroadcast)
		s.store.ApplyEquipment(m)

	case *protocol.SpawnPreferenceUpdated:
		metrics.ReportMessageReceived(s.reporters, protocol.TypeSpawnPreferenceUpdated)
		if m.Success {
			s.mu.Lock()
			s.spawnPreference = m.ProjectSlug
			s.mu.Unlock()
		}
		s.resolvePending(protocol.TypeSetSpawnPreference, m)

	case *protocol.TeleportResult:
		metrics.ReportMessageReceived(s.reporters, protocol.TypeTeleportResult)
		if !m.Success && m.Error != nil {
			logger.Warnf("session: teleport refused: %s", *m.Error)
		}
		s.resolvePending(protocol.TypeTeleport, m)

	case *protocol.ServerError:
		metrics.ReportMessageReceived(s.reporters, protocol.TypeError)
		logger.Errorf("session: server error: %s", m.Message)
		s.mu.Lock()
		callbacks := s.onError
		s.mu.Unlock()
		for _, cb := range callbacks {
			cb(errors.New(m.Message))
		}
	}
}
