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
	"github.com/teamspace/presence/constants"
	"github.com/teamspace/presence/logger"
	"github.com/teamspace/presence/protocol"
)

// Command responses are matched by message type, not by a correlation
// id, so at most one command of each type may be outstanding. A second
// command of the same type fails with ErrCommandPending until the first
// resolves. The result channel is closed without a value when the
// session disconnects before the server answers.

// SetSpawnPreference asks the server to remember the preferred spawn
// zone; nil clears it. The local cached preference only changes when the
// acknowledgment reports success.
func (s *Session) SetSpawnPreference(projectSlug *string) (<-chan *protocol.SpawnPreferenceUpdated, error) {
	conn, ch, err := s.registerCommand(protocol.TypeSetSpawnPreference)
	if err != nil {
		return nil, err
	}

	msg := &protocol.SetSpawnPreference{
		Type:        protocol.TypeSetSpawnPreference,
		ProjectSlug: projectSlug,
	}
	if err := s.send(conn, protocol.TypeSetSpawnPreference, msg); err != nil {
		s.cancelCommand(protocol.TypeSetSpawnPreference)
		return nil, err
	}

	out := make(chan *protocol.SpawnPreferenceUpdated, 1)
	go func() {
		v, ok := <-ch
		if ok {
			out <- v.(*protocol.SpawnPreferenceUpdated)
		}
		close(out)
	}()
	return out, nil
}

// Teleport asks the server to move the local avatar to a named
// destination. Success or failure is reported on the returned channel;
// the position change itself, if granted, arrives later as a normal
// position broadcast and does not mutate session state here.
func (s *Session) Teleport(destination string) (<-chan *protocol.TeleportResult, error) {
	if destination == "" {
		return nil, constants.ErrEmptyDestination
	}
	conn, ch, err := s.registerCommand(protocol.TypeTeleport)
	if err != nil {
		return nil, err
	}

	msg := &protocol.Teleport{
		Type:        protocol.TypeTeleport,
		Destination: destination,
	}
	if err := s.send(conn, protocol.TypeTeleport, msg); err != nil {
		s.cancelCommand(protocol.TypeTeleport)
		return nil, err
	}

	out := make(chan *protocol.TeleportResult, 1)
	go func() {
		v, ok := <-ch
		if ok {
			out <- v.(*protocol.TeleportResult)
		}
		close(out)
	}()
	return out, nil
}

// registerCommand reserves the single outstanding slot for cmdType and
// returns the live connection. Commands while disconnected do not queue.
func (s *Session) registerCommand(cmdType string) (Conn, chan interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, nil, constants.ErrSessionNotConnected
	}
	if _, outstanding := s.pending[cmdType]; outstanding {
		return nil, nil, constants.ErrCommandPending
	}
	ch := make(chan interface{}, 1)
	s.pending[cmdType] = ch
	return s.conn, ch, nil
}

func (s *Session) cancelCommand(cmdType string) {
	s.mu.Lock()
	if ch, ok := s.pending[cmdType]; ok {
		delete(s.pending, cmdType)
		close(ch)
	}
	s.mu.Unlock()
}

// resolvePending delivers a server acknowledgment to the waiting
// command, if any. An acknowledgment with no outstanding command is
// dropped.
func (s *Session) resolvePending(cmdType string, v interface{}) {
	s.mu.Lock()
	ch, ok := s.pending[cmdType]
	if ok {
		delete(s.pending, cmdType)
	}
	s.mu.Unlock()
	if !ok {
		logger.Debugf("session: unsolicited %s acknowledgment dropped", cmdType)
		return
	}
	ch <- v
	close(ch)
}
