package model

import "time"

// ClipboardTarget is the reserved target id that routes delivered content
// to the system clipboard instead of a stored field.
const ClipboardTarget = "CLIPBOARD"

// Field is one row on the desktop: a text value, an optional hotkey
// shortcut, and a protection flag that may only change through the PIN
// state machine.
type Field struct {
	ID          string    `db:"id" json:"id"`
	Text        string    `db:"text" json:"text"`
	IsProtected bool      `db:"is_protected" json:"isProtected"`
	Shortcut    string    `db:"shortcut" json:"shortcut"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type SaveFieldParams struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Shortcut string `json:"shortcut"`
}
