// Package wedge reads card UIDs line-by-line from an io.Reader. It covers
// keyboard-wedge NFC readers (which type the UID followed by enter) and
// makes the kiosk runnable without PC/SC hardware.
package wedge

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/clubgate/clubgate/internal/reader"
)

type Reader struct {
	in io.Reader
}

func New(in io.Reader) *Reader {
	return &Reader{in: in}
}

func (r *Reader) Run(ctx context.Context, scans chan<- reader.Scan, status chan<- string) error {
	select {
	case status <- "Wedge reader ready (one UID per line)":
	case <-ctx.Done():
		return ctx.Err()
	}

	// bufio.Scanner blocks without a ctx hook, so reading happens on its
	// own goroutine and lines are handed over through a channel.
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return io.EOF
			}
			uid := strings.ToUpper(strings.TrimSpace(line))
			if uid == "" {
				continue
			}
			select {
			case scans <- reader.Scan{UID: uid, At: time.Now().UTC()}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
