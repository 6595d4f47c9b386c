package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const helpText = `Available commands:
  write          write and publish a new entry
  mine | l       list your entries
  feed           list other users' entries
  show <cid>     show one entry
  edit <cid>     publish an edited copy and forget the old one
  forget <cid>   remove an entry from this device's cache
  cids           list CIDs cached on this device
  clear          clear this device's CID cache
  mint <cid>     mint a token referencing an entry
  exit | quit    leave the program`

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Write(ctx context.Context) error
	Mine(ctx context.Context) error
	Feed(ctx context.Context) error
	Show(ctx context.Context, cid string) error
	Edit(ctx context.Context, cid string) error
	Forget(ctx context.Context, cid string) error
	CIDs(ctx context.Context) error
	Clear(ctx context.Context) error
	Mint(ctx context.Context, cid string) error
}

// runREPL starts a read–eval–print loop for the DeDiary CLI.
//
// It reads a line from reader, parses the first token as the command and the
// second (if any) as its CID argument, and dispatches to methods on a.
// Commands that need a CID prompt for it when the argument is missing.
// Errors returned by handlers are printed and the loop continues. The loop
// exits on EOF, on context cancellation, or when the user types "exit" or
// "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("dediary %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		var cmdErr error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)
		case "write", "new":
			cmdErr = a.Write(ctx)
		case "mine", "l", "list":
			cmdErr = a.Mine(ctx)
		case "feed":
			cmdErr = a.Feed(ctx)
		case "show":
			cmdErr = a.Show(ctx, arg)
		case "edit":
			cmdErr = a.Edit(ctx, arg)
		case "forget":
			cmdErr = a.Forget(ctx, arg)
		case "cids":
			cmdErr = a.CIDs(ctx)
		case "clear":
			cmdErr = a.Clear(ctx)
		case "mint":
			cmdErr = a.Mint(ctx, arg)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
