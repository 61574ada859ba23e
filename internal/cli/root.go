package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

func (a *App) getStatus() string {
	s := string(a.Mode())
	if !a.session.IsAnonymous() {
		s = a.session.String() + " " + s
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root greets the user and runs the REPL on in until exit or EOF.
func (a *App) Root(ctx context.Context, in io.Reader) {
	fmt.Fprintln(a.out, "Welcome to provas (type 'help' for commands)")

	if a.reader == nil {
		a.reader = bufio.NewReader(in)
	}
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
