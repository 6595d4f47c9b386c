package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	calls []string
	err   error
}

func (f *fakeExec) record(s string) error {
	f.calls = append(f.calls, s)
	return f.err
}

func (f *fakeExec) Write(context.Context) error              { return f.record("write") }
func (f *fakeExec) Mine(context.Context) error               { return f.record("mine") }
func (f *fakeExec) Feed(context.Context) error               { return f.record("feed") }
func (f *fakeExec) Show(_ context.Context, c string) error   { return f.record("show " + c) }
func (f *fakeExec) Edit(_ context.Context, c string) error   { return f.record("edit " + c) }
func (f *fakeExec) Forget(_ context.Context, c string) error { return f.record("forget " + c) }
func (f *fakeExec) CIDs(context.Context) error               { return f.record("cids") }
func (f *fakeExec) Clear(context.Context) error              { return f.record("clear") }
func (f *fakeExec) Mint(_ context.Context, c string) error   { return f.record("mint " + c) }

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"write",
		"l",
		"feed",
		"show QmA",
		"edit QmA",
		"forget",
		"",
		"cids",
		"clear",
		"MINT QmB",
		"foobar",
		"exit",
		"mine",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(addr1 online)" }, rdr(input))

	require.Equal(t, []string{
		"write", "mine", "feed", "show QmA", "edit QmA", "forget ", "cids", "clear", "mint QmB",
	}, exec.calls)
	require.Contains(t, *out, "dediary (addr1 online)>")
	require.Contains(t, *out, "Unknown command: foobar")
	require.Contains(t, *out, "Bye!")
}

func TestRunREPL_ErrorsPrintedAndLoopContinues(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{err: errors.New("remote down")}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("mine\nfeed"))

	require.Equal(t, []string{"mine", "feed"}, exec.calls)
	require.Contains(t, *out, "Error: remote down")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrintln(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("mine\n"))
	require.Empty(t, exec.calls)
}
