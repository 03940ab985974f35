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
	"net"
	"sync"

	"github.com/teamspace/presence/config"
	"github.com/teamspace/presence/constants"
	"github.com/teamspace/presence/logger"
	"github.com/teamspace/presence/metrics"
	"github.com/teamspace/presence/players"
	"github.com/teamspace/presence/protocol"
	"github.com/teamspace/presence/throttle"
	"github.com/teamspace/presence/transport"
)

// Conn represents the low-level transport connection. transport.WSConn
// is the production implementation; tests inject fakes.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
	RemoteAddr() net.Addr
}

// Dialer opens a Conn to the given endpoint URL.
type Dialer func(endpoint string) (Conn, error)

// Status is the session connection state.
type Status int

// Session states. Joined means the handshake was sent; Active means the
// first players snapshot arrived and the remote view is populated.
const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusJoined
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusJoined:
		return "joined"
	case StatusActive:
		return "active"
	default:
		return "disconnected"
	}
}

// Identity carries the local participant's immutable identity fields
// sent on join. It is supplied by the surrounding application.
type Identity struct {
	UserID      string
	Username    string
	DisplayName string
	AvatarURL   string
	IsAdmin     bool
}

// Session owns one participant's presence connection: the transport, the
// lifecycle state machine, the remote player store and the command
// channel. All inbound messages are applied by a single dispatch
// goroutine, preserving arrival order.
type Session struct {
	mu   sync.Mutex
	conn Conn

	status          Status
	uid             string
	spawnPreference *string
	lastError       error

	dial      Dialer
	cfg       *config.Config
	store     *players.Store
	emitter   *throttle.Emitter
	reporters []metrics.Reporter
	eventLog  *logger.EventLog

	pending map[string]chan interface{}

	onConnect     []func()
	onDisconnect  []func(err error)
	onPlayerJoin  []func(p players.Player)
	onPlayerLeave []func(id string)
	onError       []func(err error)
}

// Option configures a Session.
type Option func(*Session)

// WithDialer overrides the transport dialer.
func WithDialer(d Dialer) Option {
	return func(s *Session) { s.dial = d }
}

// WithReporters attaches metrics reporters.
func WithReporters(reporters []metrics.Reporter) Option {
	return func(s *Session) { s.reporters = reporters }
}

// WithEventLog attaches the presence event log.
func WithEventLog(e *logger.EventLog) Option {
	return func(s *Session) { s.eventLog = e }
}

// New returns a disconnected session.
func New(cfg *config.Config, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	s := &Session{
		status:  StatusDisconnected,
		cfg:     cfg,
		emitter: throttle.NewEmitter(cfg.GetDuration("presence.throttle.interval")),
		pending: make(map[string]chan interface{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dial == nil {
		dialTimeout := cfg.GetDuration("presence.dialtimeout")
		writeTimeout := cfg.GetDuration("presence.writetimeout")
		s.dial = func(endpoint string) (Conn, error) {
			return transport.Dial(endpoint, dialTimeout, writeTimeout)
		}
	}
	s.store = players.NewStore(s.reporters, s.eventLog)
	return s
}

// Connect opens the transport, sends the join handshake and starts the
// dispatch goroutine. A live prior connection is torn down first; there
// are never two connections at once.
func (s *Session) Connect(baseURL string, identity Identity, equipment protocol.Equipment, spawnPreference *string) error {
	if identity.UserID == "" {
		return constants.ErrIllegalUID
	}

	endpoint, err := transport.ResolveEndpoint(baseURL, s.cfg.GetString("presence.endpoint"))
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.conn != nil {
		s.teardownLocked(nil)
	}
	s.status = StatusConnecting
	s.mu.Unlock()

	conn, err := s.dial(endpoint)
	if err != nil {
		s.failConnect(identity.UserID, err)
		return err
	}

	join := &protocol.Join{
		Type:            protocol.TypeJoin,
		UserID:          identity.UserID,
		Username:        identity.Username,
		DisplayName:     identity.DisplayName,
		AvatarURL:       identity.AvatarURL,
		IsAdmin:         identity.IsAdmin,
		Equipment:       protocol.NormalizeEquipment(equipment),
		SpawnPreference: spawnPreference,
	}
	data, err := protocol.Encode(join)
	if err != nil {
		conn.Close()
		s.failConnect(identity.UserID, err)
		return err
	}
	if err := conn.WriteMessage(data); err != nil {
		conn.Close()
		s.failConnect(identity.UserID, err)
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.status = StatusJoined
	s.uid = identity.UserID
	s.spawnPreference = spawnPreference
	s.lastError = nil
	callbacks := s.onConnect
	s.mu.Unlock()

	s.store.Bind(identity.UserID)
	s.emitter.Reset()
	s.store.StartReaper(
		s.cfg.GetDuration("presence.reaper.interval"),
		s.cfg.GetDuration("presence.reaper.timeout"),
	)

	metrics.ReportMessageSent(s.reporters, protocol.TypeJoin)
	metrics.ReportGauge(s.reporters, metrics.ConnectedStatus, map[string]string{}, 1)
	s.eventLog.Record("connected", identity.UserID, "endpoint="+endpoint)
	logger.Infof("session: joined as %s via %s", identity.UserID, endpoint)

	go s.readLoop(conn)

	for _, cb := range callbacks {
		cb()
	}
	return nil
}

func (s *Session) failConnect(uid string, err error) {
	s.mu.Lock()
	s.status = StatusDisconnected
	s.lastError = err
	s.mu.Unlock()
	s.eventLog.Record("connect_failed", uid, err.Error())
	logger.Errorf("session: connect failed: %s", err)
}

// Disconnect sends a best-effort leave message and closes the transport.
// Safe to call in any state; always ends Disconnected with an empty
// remote player store.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.conn == nil {
		s.status = StatusDisconnected
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.mu.Unlock()

	// Leave is best-effort: closing proceeds even when the send fails.
	if data, err := protocol.Encode(&protocol.Leave{Type: protocol.TypeLeave}); err == nil {
		if err := conn.WriteMessage(data); err != nil {
			logger.Warnf("session: leave message not delivered: %s", err)
		} else {
			metrics.ReportMessageSent(s.reporters, protocol.TypeLeave)
		}
	}

	s.mu.Lock()
	var callbacks []func(err error)
	if s.conn == conn {
		s.teardownLocked(nil)
		callbacks = s.onDisconnect
	}
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(nil)
	}
}

// teardownLocked closes the connection, clears all per-connection state
// and fails pending commands. Caller holds s.mu.
func (s *Session) teardownLocked(cause error) {
	uid := s.uid
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.status = StatusDisconnected
	s.uid = ""
	s.lastError = cause
	for cmdType, ch := range s.pending {
		close(ch)
		delete(s.pending, cmdType)
	}
	s.store.StopReaper()
	s.store.Clear()

	metrics.ReportGauge(s.reporters, metrics.ConnectedStatus, map[string]string{}, 0)
	s.eventLog.Record("disconnected", uid, "")
}

// handleClosed is invoked by the read loop when its connection dies. A
// loop left over from a torn-down connection must not touch the state of
// its successor, hence the identity check.
func (s *Session) handleClosed(conn Conn, cause error) {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	s.teardownLocked(cause)
	callbacks := s.onDisconnect
	s.mu.Unlock()

	if cause != nil {
		logger.Warnf("session: connection lost: %s", cause)
	}
	for _, cb := range callbacks {
		cb(cause)
	}
}

// TryEmitPosition emits the local avatar's spatial state, subject to the
// outbound throttle. Calls inside the throttle window, or while
// disconnected, are silent no-ops; dropped intermediate states are lost
// by design since the caller re-emits every simulation tick.
func (s *Session) TryEmitPosition(position protocol.Vector3, rotation protocol.Rotation, zone string, isMoving bool) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	if !s.emitter.Allow() {
		metrics.ReportCount(s.reporters, metrics.ThrottledEmissions, map[string]string{}, 1)
		return
	}

	msg := &protocol.PositionUpdate{
		Type:        protocol.TypePositionUpdate,
		Position:    position,
		Rotation:    rotation,
		CurrentZone: zone,
		IsMoving:    isMoving,
	}
	if err := s.send(conn, protocol.TypePositionUpdate, msg); err != nil {
		logger.Warnf("session: position update not delivered: %s", err)
	}
}

// UpdateEquipment emits the local equipment map. Never throttled, one
// message per call.
func (s *Session) UpdateEquipment(equipment protocol.Equipment) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return constants.ErrSessionNotConnected
	}
	msg := &protocol.EquipmentUpdate{
		Type:      protocol.TypeEquipmentUpdate,
		Equipment: protocol.NormalizeEquipment(equipment),
	}
	return s.send(conn, protocol.TypeEquipmentUpdate, msg)
}

func (s *Session) send(conn Conn, msgType string, v interface{}) error {
	data, err := protocol.Encode(v)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(data); err != nil {
		return err
	}
	metrics.ReportMessageSent(s.reporters, msgType)
	return nil
}

// Status returns the current connection state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// UID returns the local participant id for the live connection, empty
// when disconnected.
func (s *Session) UID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uid
}

// SpawnPreference returns the last acknowledged spawn preference.
func (s *Session) SpawnPreference() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnPreference
}

// LastError returns the error recorded by the most recent transport
// failure, nil after a clean connect or disconnect.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Store exposes the remote player store for renderers. Readers must use
// its Snapshot/Get copies, never retain internal state.
func (s *Session) Store() *players.Store {
	return s.store
}

// OnConnect registers a callback invoked after the join handshake.
func (s *Session) OnConnect(f func()) {
	s.mu.Lock()
	s.onConnect = append(s.onConnect, f)
	s.mu.Unlock()
}

// OnDisconnect registers a callback invoked when the connection ends.
// err is nil for a locally requested disconnect. Reconnection, if
// wanted, is the callback's business; the session never retries.
func (s *Session) OnDisconnect(f func(err error)) {
	s.mu.Lock()
	s.onDisconnect = append(s.onDisconnect, f)
	s.mu.Unlock()
}

// OnPlayerJoin registers a callback invoked when a remote player joins.
func (s *Session) OnPlayerJoin(f func(p players.Player)) {
	s.mu.Lock()
	s.onPlayerJoin = append(s.onPlayerJoin, f)
	s.mu.Unlock()
}

// OnPlayerLeave registers a callback invoked when a remote player
// leaves.
func (s *Session) OnPlayerLeave(f func(id string)) {
	s.mu.Lock()
	s.onPlayerLeave = append(s.onPlayerLeave, f)
	s.mu.Unlock()
}

// OnError registers a callback for server-reported protocol errors.
func (s *Session) OnError(f func(err error)) {
	s.mu.Lock()
	s.onError = append(s.onError, f)
	s.mu.Unlock()
}
