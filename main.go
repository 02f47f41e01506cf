// cptel relays a telnet session to the local terminal, rendering CP437
// control glyphs as Unicode.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cptel/cmd"
	cperr "cptel/internal/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); cperr.IsFatal(err) {
		fmt.Fprintf(os.Stderr, "cptel: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
