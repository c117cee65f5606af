package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const (
	// DefaultKeyboardBinary is the synthetic input tool used for key- commands.
	DefaultKeyboardBinary = "ydotool"
)

// ErrEmptyCommand is returned when there is nothing to execute.
var ErrEmptyCommand = errors.New("empty command")

// DefaultCompositorArgv returns the command prefix for compositor actions.
func DefaultCompositorArgv() []string {
	return []string{"niri", "msg", "action"}
}

// Compositor forwards an action to the compositor's control interface.
type Compositor interface {
	Execute(ctx context.Context, tokens []string) error
}

// Keyboard emits a synthetic key chord: modifiers pressed in order, the
// key pressed and released, modifiers released in reverse.
type Keyboard interface {
	PressChord(ctx context.Context, modifiers []int, key int) error
}

// Runner runs an external program to completion.
type Runner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs name with args and folds its output into the error
// when it fails.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// CommandCompositor runs Argv followed by the action tokens.
type CommandCompositor struct {
	Argv []string
	Run  Runner
}

// NewCommandCompositor returns a compositor executor for argv. An empty
// argv falls back to DefaultCompositorArgv.
func NewCommandCompositor(argv []string) *CommandCompositor {
	if len(argv) == 0 {
		argv = DefaultCompositorArgv()
	}
	return &CommandCompositor{Argv: argv, Run: ExecRunner}
}

// Execute runs the compositor command with tokens appended.
func (c *CommandCompositor) Execute(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 || len(c.Argv) == 0 {
		return ErrEmptyCommand
	}

	args := make([]string, 0, len(c.Argv)-1+len(tokens))
	args = append(args, c.Argv[1:]...)
	args = append(args, tokens...)

	return c.Run(ctx, c.Argv[0], args...)
}

// CommandKeyboard drives a ydotool-compatible binary.
type CommandKeyboard struct {
	Binary string
	Run    Runner
}

// NewCommandKeyboard returns a keyboard executor for binary. An empty
// binary falls back to DefaultKeyboardBinary.
func NewCommandKeyboard(binary string) *CommandKeyboard {
	if binary == "" {
		binary = DefaultKeyboardBinary
	}
	return &CommandKeyboard{Binary: binary, Run: ExecRunner}
}

// PressChord runs "<binary> key" with the press/release sequence.
func (k *CommandKeyboard) PressChord(ctx context.Context, modifiers []int, key int) error {
	return k.Run(ctx, k.Binary, ChordArgs(modifiers, key)...)
}

// ChordArgs returns the ydotool arguments for a chord, for example
// ctrl-z becomes: key 29:1 44:1 44:0 29:0.
func ChordArgs(modifiers []int, key int) []string {
	args := make([]string, 0, 3+2*len(modifiers))
	args = append(args, "key")

	for _, m := range modifiers {
		args = append(args, strconv.Itoa(m)+":1")
	}
	args = append(args, strconv.Itoa(key)+":1", strconv.Itoa(key)+":0")
	for i := len(modifiers) - 1; i >= 0; i-- {
		args = append(args, strconv.Itoa(modifiers[i])+":0")
	}

	return args
}
