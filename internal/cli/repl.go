package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Catalog(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	Clear(ctx context.Context, args []string) error
	Notify(ctx context.Context, args []string) error
}

const helpText = "Available commands: (l)ist, add, delete <id>, (c)atalog, show <id>, refresh, clear, notify [on|off], exit"

// runREPL reads one command per line from in and dispatches it to a. The
// loop ends on EOF, "exit" or "quit". Handlers report their own errors, so a
// failing command never stops the loop. Handlers that prompt read from the
// same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "provas %s> ", statusFn())
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(out, helpText)
		case "l", "list":
			_ = a.List(ctx, args)
		case "add":
			_ = a.Add(ctx, args)
		case "delete", "rm":
			_ = a.Delete(ctx, args)
		case "c", "catalog":
			_ = a.Catalog(ctx, args)
		case "show":
			_ = a.Show(ctx, args)
		case "refresh":
			_ = a.Refresh(ctx, args)
		case "clear":
			_ = a.Clear(ctx, args)
		case "notify":
			_ = a.Notify(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}
