package keyseq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/isim/internal/platform/fake"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a", []string{"a"}},
		{"ctrl+alt+t", []string{"Control_L", "Alt_L", "t"}},
		{"CTRL+Shift+Return", []string{"Control_L", "Shift_L", "Return"}},
		{" super + l ", []string{"Super_L", "l"}},
		{"Control_R+F5", []string{"Control_R", "F5"}},
		{"esc", []string{"Escape"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			seq, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seq.Keys)
			assert.Equal(t, tt.input, seq.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		index int
	}{
		{"empty", "", -1},
		{"blank", "   ", -1},
		{"double plus", "ctrl++t", 1},
		{"trailing plus", "ctrl+", 1},
		{"leading plus", "+a", 0},
		{"inner whitespace", "ctrl+page up", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.index, perr.Index)
		})
	}
}

func TestResolve(t *testing.T) {
	km := fake.New(":0")

	strokes, err := ParseAndResolve("shift+a", km)
	require.NoError(t, err)
	require.Len(t, strokes, 2)
	assert.Equal(t, "Shift_L", strokes[0].Keysym)
	assert.Equal(t, fake.ShiftMask, strokes[0].Mask)
	assert.Equal(t, "a", strokes[1].Keysym)
	assert.Zero(t, strokes[1].Mask)
}

func TestResolve_UnknownKeysymFailsWholeSequence(t *testing.T) {
	km := fake.New(":0")

	strokes, err := ParseAndResolve("ctrl+NoSuchKey+a", km)
	require.Error(t, err)
	assert.Nil(t, strokes)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Index)
	assert.Equal(t, "NoSuchKey", perr.Token)
	assert.Contains(t, err.Error(), "no keycode")
}
