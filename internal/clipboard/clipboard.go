// Package clipboard copies delivered text to the system clipboard by
// shelling out to the platform tool, the same way the desktop app's
// CLIPBOARD target has always worked.
package clipboard

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os/exec"
	"runtime"
	"unicode/utf16"
)

// Copy places text on the system clipboard.
func Copy(text string) error {
	switch runtime.GOOS {
	case "darwin":
		return pipe(exec.Command("pbcopy"), []byte(text))
	case "windows":
		// clip.exe expects UTF-16LE input.
		return pipe(exec.Command("clip"), utf16LE(text))
	default:
		if err := pipe(exec.Command("xclip", "-selection", "clipboard"), []byte(text)); err == nil {
			return nil
		}
		if err := pipe(exec.Command("xsel", "--clipboard", "--input"), []byte(text)); err == nil {
			return nil
		}
		return fmt.Errorf("no clipboard tool available (tried xclip, xsel)")
	}
}

func pipe(cmd *exec.Cmd, input []byte) error {
	cmd.Stdin = bytes.NewReader(input)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Path, err)
	}
	return nil
}

func utf16LE(text string) []byte {
	encoded := utf16.Encode([]rune(text))
	buf := make([]byte, 2+len(encoded)*2)
	// BOM
	buf[0], buf[1] = 0xFF, 0xFE
	for i, r := range encoded {
		binary.LittleEndian.PutUint16(buf[2+i*2:], r)
	}
	return buf
}
