package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	promptHeader = "Enter a description of your movie preferences:"
	promptMarker = ">> "
)

// RunPrompt reads descriptions from in, one per line, and calls handle for each
// non-blank line. It returns nil at end of input and stops early when ctx is done or
// handle fails.
func RunPrompt(ctx context.Context, in io.Reader, out io.Writer, handle func(query string) error) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(out, promptHeader)
		fmt.Fprint(out, promptMarker)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if err := handle(query); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
}
