package batch

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var rule = strings.Repeat("=", 60)

// console prints the user facing progress of a run. Diagnostics go to the
// logger instead.
type console struct {
	out io.Writer

	plain   *color.Color
	success *color.Color
	failure *color.Color
	notice  *color.Color
}

func newConsole(out io.Writer, noColor bool) *console {
	c := &console{
		out:     out,
		plain:   color.New(color.Reset),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		notice:  color.New(color.FgCyan),
	}
	if noColor {
		for _, cc := range []*color.Color{c.plain, c.success, c.failure, c.notice} {
			cc.DisableColor()
		}
	}
	return c
}

func (c *console) Header(found int) {
	c.plain.Fprintf(c.out, "Found %d screenshots\n", found)
	c.plain.Fprintln(c.out, rule)
}

func (c *console) File(name string) {
	c.notice.Fprintf(c.out, "\nFile: %s\n", name)
}

func (c *console) Detail(format string, args ...interface{}) {
	c.plain.Fprintf(c.out, "  %s\n", fmt.Sprintf(format, args...))
}

func (c *console) Error(err error) {
	c.failure.Fprintf(c.out, "  ❌ error: %s\n", err)
}

func (c *console) NoInput(pattern string) {
	c.failure.Fprintf(c.out, "❌ no files matching %s\n", pattern)
}

func (c *console) Summary(rp *Report, width, height int, example string) {
	c.plain.Fprintf(c.out, "\n%s\n", rule)
	c.success.Fprintf(c.out, "\n✅ %s screenshots resized successfully.\n", rp)
	c.plain.Fprintf(c.out, "\n📱 final size: %d × %dpx\n", width, height)
	c.plain.Fprintf(c.out, "📁 file names: %s\n", example)
}
