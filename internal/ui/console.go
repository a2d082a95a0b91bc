// Package ui renders decisions on the kiosk terminal: green panel for
// granted, red for denied, plain yellow lines for reader status.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/clubgate/clubgate/internal/gate/types"
)

type Console struct {
	out io.Writer

	granted *color.Color
	denied  *color.Color
	status  *color.Color
}

func NewConsole(out io.Writer) *Console {
	return &Console{
		out:     out,
		granted: color.New(color.FgGreen, color.Bold),
		denied:  color.New(color.FgRed, color.Bold),
		status:  color.New(color.FgYellow),
	}
}

func (c *Console) Render(d types.Decision) {
	headline := c.denied
	if d.Allowed {
		headline = c.granted
	}
	fmt.Fprintln(c.out)
	headline.Fprintln(c.out, d.Headline)
	fmt.Fprintln(c.out, d.Detail)
}

func (c *Console) RenderStatus(msg string) {
	c.status.Fprintln(c.out, msg)
}
