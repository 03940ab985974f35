package logger

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/astaxie/beego/logs"
	"github.com/spf13/viper"
)

// eventLogConfig mirrors the subset of beego/logs file adapter options
// the presence event log uses.
type eventLogConfig struct {
	FileName string `json:"filename"`
	Level    int    `json:"level"`
	Maxdays  int    `json:"maxdays"`
	Daily    bool   `json:"daily"`
	Rotate   bool   `json:"rotate"`
	Perm     string `json:"perm"`
}

// EventLog is an append-only audit trail for presence lifecycle events
// (join, leave, reap, connect, disconnect). It writes to a day-stamped
// file so operators can answer "who was in the space yesterday" without
// grepping the main log.
type EventLog struct {
	mu       sync.Mutex
	instance *logs.BeeLogger
	dir      string
	name     string
	curDay   int
}

// NewEventLog builds the event log under the configured directory.
// Returns nil when the directory is unset, callers treat a nil EventLog
// as disabled.
func NewEventLog(name string, v *viper.Viper) *EventLog {
	dir := v.GetString("presence.eventlog.dir")
	if dir == "" {
		return nil
	}
	e := &EventLog{
		dir:    dir,
		name:   name,
		curDay: -1,
	}
	e.rotate(time.Now())
	return e
}

// rotate opens (or reopens) the backing file for the given day.
// Caller must hold mu or be the constructor.
func (e *EventLog) rotate(now time.Time) {
	day := now.YearDay()
	if day == e.curDay {
		return
	}
	e.curDay = day

	cfg := eventLogConfig{
		FileName: fmt.Sprintf("%s/%s.%s.events", e.dir, e.name, now.Format("2006-01-02")),
		Level:    logs.LevelInfo,
		Maxdays:  7,
		Daily:    false,
		Rotate:   false,
		Perm:     "0644",
	}
	if e.instance != nil {
		e.instance.Reset()
	} else {
		e.instance = logs.NewLogger()
	}
	jsonConfig, _ := json.Marshal(cfg)
	if err := e.instance.SetLogger(logs.AdapterFile, string(jsonConfig)); err != nil {
		Errorf("event log: set file adapter: %s", err)
	}
}

// Record appends one event line. uid may be empty for session-level
// events such as connect failures.
func (e *EventLog) Record(event string, uid string, detail string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rotate(time.Now())
	e.instance.Info("%s uid=%s %s", event, uid, detail)
}

// Close flushes and closes the backing file.
func (e *EventLog) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.instance != nil {
		e.instance.Flush()
		e.instance.Close()
	}
}
