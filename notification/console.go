package notification

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/raykavin/pairwatch/core"
)

// Console implements core.Notifier by writing to a stream. It is the
// default notifier for dry runs without Telegram credentials.
type Console struct {
	out io.Writer
}

// NewConsole creates a notifier that writes to stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter creates a notifier over the given writer, used in tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify implements core.Notifier.
func (c *Console) Notify(text string) {
	fmt.Fprintf(c.out, "[%s] %s\n", time.Now().Format("15:04:05"), text)
}

// OnPair implements core.Notifier. Console delivery cannot fail in any
// expected way, so it always reports success.
func (c *Console) OnPair(pair core.Pair, seq int) bool {
	fmt.Fprintf(c.out, "[%s] #%d %s\n", time.Now().Format("15:04:05"), seq+1, pair)
	return true
}

// OnError implements core.Notifier.
func (c *Console) OnError(err error) {
	fmt.Fprintf(c.out, "[%s] ERROR: %v\n", time.Now().Format("15:04:05"), err)
}
