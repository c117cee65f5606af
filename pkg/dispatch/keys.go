package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned when a chord names a key with no evdev code.
var ErrUnknownKey = errors.New("unknown key")

// keyCodes maps key tokens to linux evdev key codes.
var keyCodes = map[string]int{
	// Modifiers
	"ctrl":  29, // KEY_LEFTCTRL
	"shift": 42, // KEY_LEFTSHIFT
	"alt":   56, // KEY_LEFTALT
	"meta":  125,
	"super": 125, // KEY_LEFTMETA

	// Digits
	"1": 2, "2": 3, "3": 4, "4": 5, "5": 6,
	"6": 7, "7": 8, "8": 9, "9": 10, "0": 11,

	// Letters
	"a": 30, "b": 48, "c": 46, "d": 32, "e": 18, "f": 33, "g": 34,
	"h": 35, "i": 23, "j": 36, "k": 37, "l": 38, "m": 50, "n": 49,
	"o": 24, "p": 25, "q": 16, "r": 19, "s": 31, "t": 20, "u": 22,
	"v": 47, "w": 17, "x": 45, "y": 21, "z": 44,

	// Special keys
	"minus":     12,
	"equal":     13,
	"plus":      13,
	"delete":    14,
	"backspace": 14,
	"tab":       15,
	"enter":     28,
	"esc":       1,
	"space":     57,
	"home":      102,
	"up":        103,
	"pageup":    104,
	"left":      105,
	"right":     106,
	"end":       107,
	"down":      108,
	"pagedown":  109,

	// Function keys
	"f1": 59, "f2": 60, "f3": 61, "f4": 62, "f5": 63, "f6": 64,
	"f7": 65, "f8": 66, "f9": 67, "f10": 68, "f11": 87, "f12": 88,
}

// KeyCode returns the evdev code for a key token such as "ctrl" or "z".
func KeyCode(token string) (int, bool) {
	code, ok := keyCodes[strings.ToLower(token)]
	return code, ok
}

// Chord is a set of modifiers held while one key is pressed.
type Chord struct {
	Modifiers []int
	Key       int
}

// ParseChord parses a chord such as "ctrl-shift-z" or "delete". The last
// token is the key, every earlier token is a modifier pressed in order.
func ParseChord(text string) (Chord, error) {
	if text == "" {
		return Chord{}, fmt.Errorf("empty chord: %w", ErrUnknownKey)
	}
	tokens := strings.Split(text, "-")

	key, ok := KeyCode(tokens[len(tokens)-1])
	if !ok {
		return Chord{}, fmt.Errorf("chord %q key %q: %w", text, tokens[len(tokens)-1], ErrUnknownKey)
	}

	mods := make([]int, 0, len(tokens)-1)
	for _, tok := range tokens[:len(tokens)-1] {
		code, ok := KeyCode(tok)
		if !ok {
			return Chord{}, fmt.Errorf("chord %q modifier %q: %w", text, tok, ErrUnknownKey)
		}
		mods = append(mods, code)
	}

	return Chord{Modifiers: mods, Key: key}, nil
}
