package console

import (
	"sync"
	"time"
)

// FlashLevel is the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// FlashMessage is a transient notification with a level and expiry.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// Flash holds the current transient notification.
type Flash struct {
	mu      sync.RWMutex
	current FlashMessage
	watchCh chan FlashMessage
}

// NewFlash creates an empty flash.
func NewFlash() *Flash {
	return &Flash{watchCh: make(chan FlashMessage, 8)}
}

func (f *Flash) Info(msg string) { f.set(msg, FlashInfo, 5*time.Second) }
func (f *Flash) Warn(msg string) { f.set(msg, FlashWarn, 8*time.Second) }
func (f *Flash) Err(err error)   { f.set(err.Error(), FlashErr, 10*time.Second) }

func (f *Flash) set(msg string, level FlashLevel, d time.Duration) {
	fm := FlashMessage{Text: msg, Level: level, Expires: time.Now().Add(d)}
	f.mu.Lock()
	f.current = fm
	f.mu.Unlock()
	select {
	case f.watchCh <- fm:
	default:
	}
}

// Current returns the live flash message, or nil once it has expired.
func (f *Flash) Current() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// Watch returns a channel receiving every new flash message.
func (f *Flash) Watch() <-chan FlashMessage {
	return f.watchCh
}
