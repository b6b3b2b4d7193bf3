// Package keyseq parses symbolic key sequences such as "ctrl+alt+t" and
// resolves them against a connection's keymap.
//
// Grammar: one or more keysym names joined by '+'. Whitespace around names is
// ignored. Modifier aliases are expanded to their left-hand keysyms; every
// other name is passed through to the keysym table unchanged.
package keyseq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/isim/internal/platform"
)

// ErrInvalid is wrapped by every ParseError.
var ErrInvalid = errors.New("invalid key sequence")

// ParseError reports a malformed or unresolvable key sequence.
type ParseError struct {
	Input  string
	Token  string
	Index  int // zero-based token index, -1 for whole-input errors
	Reason string
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("key sequence %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("key sequence %q: token %d (%q): %s", e.Input, e.Index, e.Token, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrInvalid }

var aliases = map[string]string{
	"ctrl":    "Control_L",
	"control": "Control_L",
	"alt":     "Alt_L",
	"shift":   "Shift_L",
	"super":   "Super_L",
	"meta":    "Meta_L",
	"win":     "Super_L",
	"cmd":     "Super_L",
	"enter":   "Return",
	"esc":     "Escape",
}

// Sequence is an ordered list of keysym names.
type Sequence struct {
	raw  string
	Keys []string
}

func (s Sequence) String() string { return s.raw }

// Parse splits input into keysym names. It fails on empty input and on empty
// tokens ("ctrl++t", trailing '+').
func Parse(input string) (Sequence, error) {
	if strings.TrimSpace(input) == "" {
		return Sequence{}, &ParseError{Input: input, Index: -1, Reason: "empty sequence"}
	}

	parts := strings.Split(input, "+")
	keys := make([]string, 0, len(parts))
	for i, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return Sequence{}, &ParseError{Input: input, Token: part, Index: i, Reason: "empty key name"}
		}
		if strings.ContainsAny(name, " \t\n") {
			return Sequence{}, &ParseError{Input: input, Token: name, Index: i, Reason: "key name contains whitespace"}
		}
		if alias, ok := aliases[strings.ToLower(name)]; ok {
			name = alias
		}
		keys = append(keys, name)
	}

	return Sequence{raw: input, Keys: keys}, nil
}

// Keymap maps keysym names to keycodes for a live connection.
type Keymap interface {
	Keycodes(keysym string) []platform.Keycode
	ModifierMask(code platform.Keycode) uint16
}

// Stroke is a resolved key: its keycode and the modifier bit it contributes.
type Stroke struct {
	Keysym string
	Code   platform.Keycode
	Mask   uint16
}

// Resolve maps every key of seq to a keycode. An unknown keysym fails the
// whole sequence; nothing is silently dropped.
func Resolve(seq Sequence, km Keymap) ([]Stroke, error) {
	strokes := make([]Stroke, 0, len(seq.Keys))
	for i, key := range seq.Keys {
		codes := km.Keycodes(key)
		if len(codes) == 0 {
			return nil, &ParseError{Input: seq.raw, Token: key, Index: i, Reason: "no keycode for keysym"}
		}
		strokes = append(strokes, Stroke{
			Keysym: key,
			Code:   codes[0],
			Mask:   km.ModifierMask(codes[0]),
		})
	}
	return strokes, nil
}

// ParseAndResolve is Parse followed by Resolve.
func ParseAndResolve(input string, km Keymap) ([]Stroke, error) {
	seq, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return Resolve(seq, km)
}
