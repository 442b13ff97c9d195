// Package pin implements the access-control state machine that gates
// protection changes on fields.
//
// A modal session carries one pending action across the asynchronous UI
// steps of the PIN prompt. It is created when the prompt opens and
// discarded on a terminal transition; the pending action runs only on
// terminal success, never speculatively.
package pin

import (
	"context"
	"regexp"
	"sync"

	apperrors "github.com/quickfetch/quickfetch/internal/errors"
)

type Mode string

const (
	ModeSet     Mode = "set"     // no PIN exists; collecting first entry
	ModeConfirm Mode = "confirm" // re-entry to confirm the first entry
	ModeVerify  Mode = "verify"  // PIN exists; must re-enter to unlock
)

type Action string

const (
	ActionProtect   Action = "protect"
	ActionUnprotect Action = "unprotect"
)

type Status string

const (
	// StatusContinue: entry accepted, prompt moves to the next mode.
	StatusContinue Status = "continue"
	// StatusSuccess: terminal success, pending action applied.
	StatusSuccess Status = "success"
	// StatusMismatch: verification failed, prompt stays open for retry.
	StatusMismatch Status = "mismatch"
	// StatusRestart: confirmation differed from the first entry; capture
	// restarts from scratch.
	StatusRestart Status = "restart"
)

type Outcome struct {
	Status Status `json:"status"`
	Mode   Mode   `json:"mode,omitempty"`
}

// Credentials is the stored-PIN boundary the machine consults.
type Credentials interface {
	Exists(ctx context.Context) (bool, error)
	Set(ctx context.Context, pin string) error
	Verify(ctx context.Context, pin string) (bool, error)
}

// ApplyFunc runs the pending action once the machine reaches terminal
// success.
type ApplyFunc func(ctx context.Context, fieldID string, action Action) error

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// ValidEntry reports whether entry is exactly four decimal digits. Only
// valid entries are evaluated against storage.
func ValidEntry(entry string) bool {
	return pinPattern.MatchString(entry)
}

type Machine struct {
	creds Credentials
	apply ApplyFunc

	mu     sync.Mutex
	active *modalSession
}

type modalSession struct {
	mode    Mode
	stash   string
	fieldID string
	action  Action
}

func NewMachine(creds Credentials, apply ApplyFunc) *Machine {
	return &Machine{creds: creds, apply: apply}
}

// Begin opens a PIN prompt for a protection change on fieldID. The
// initial mode depends on whether a PIN is already stored. Any prompt
// left open from an earlier invocation is discarded.
func (m *Machine) Begin(ctx context.Context, fieldID string, action Action) (Mode, error) {
	exists, err := m.creds.Exists(ctx)
	if err != nil {
		return "", err
	}

	mode := ModeSet
	if exists {
		mode = ModeVerify
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = &modalSession{mode: mode, fieldID: fieldID, action: action}
	return mode, nil
}

// Enter feeds one PIN entry into the open prompt and advances the
// machine. Entries that are not exactly four digits are rejected before
// any storage lookup.
func (m *Machine) Enter(ctx context.Context, entry string) (Outcome, error) {
	if !ValidEntry(entry) {
		return Outcome{}, apperrors.InvalidInput("pin", "must be exactly 4 digits")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return Outcome{}, apperrors.NoPinPrompt()
	}

	switch m.active.mode {
	case ModeSet:
		m.active.stash = entry
		m.active.mode = ModeConfirm
		return Outcome{Status: StatusContinue, Mode: ModeConfirm}, nil

	case ModeConfirm:
		if entry != m.active.stash {
			m.active.stash = ""
			m.active.mode = ModeSet
			return Outcome{Status: StatusRestart, Mode: ModeSet}, nil
		}
		if err := m.creds.Set(ctx, entry); err != nil {
			return Outcome{}, err
		}
		return m.finish(ctx)

	case ModeVerify:
		ok, err := m.creds.Verify(ctx, entry)
		if err != nil {
			return Outcome{}, err
		}
		if !ok {
			return Outcome{Status: StatusMismatch, Mode: ModeVerify}, nil
		}
		return m.finish(ctx)
	}

	return Outcome{}, apperrors.Internal("unknown pin mode")
}

// Cancel discards the open prompt, if any, without applying anything.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = nil
}

// Active reports the mode of the open prompt, if one exists.
func (m *Machine) Active() (Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return "", false
	}
	return m.active.mode, true
}

// finish applies the pending action and discards the prompt. Caller holds
// the mutex.
func (m *Machine) finish(ctx context.Context) (Outcome, error) {
	sess := m.active
	m.active = nil

	if err := m.apply(ctx, sess.fieldID, sess.action); err != nil {
		return Outcome{}, err
	}
	return Outcome{Status: StatusSuccess}, nil
}
