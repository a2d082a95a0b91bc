// Package pcsc polls a PC/SC contactless reader (ACR122U or compatible)
// for card UIDs.
package pcsc

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ebfe/scard"

	"github.com/clubgate/clubgate/internal/reader"
)

// GET UID APDU for ACR122U-class readers.
var getUIDAPDU = []byte{0xFF, 0xCA, 0x00, 0x00, 0x00}

const (
	// cooldown after a successful read, so one tap is one scan.
	cooldown = 1500 * time.Millisecond

	idlePoll     = 200 * time.Millisecond
	errorBackoff = time.Second
)

type Reader struct{}

func New() *Reader { return &Reader{} }

// Probe checks once whether a PC/SC reader is attached and returns status
// text for the display.
func Probe() string {
	sctx, err := scard.EstablishContext()
	if err != nil {
		return fmt.Sprintf("Reader init failed: %v", err)
	}
	defer sctx.Release()

	names, err := sctx.ListReaders()
	if err != nil || len(names) == 0 {
		return "Warning: no card reader found"
	}
	return "Reader ready: " + names[0]
}

// Run polls the first attached reader for cards until ctx is cancelled.
func (r *Reader) Run(ctx context.Context, scans chan<- reader.Scan, status chan<- string) error {
	sctx, err := scard.EstablishContext()
	if err != nil {
		emit(ctx, status, fmt.Sprintf("Reader init failed: %v", err))
		return fmt.Errorf("establish pcsc context: %w", err)
	}
	defer sctx.Release()

	names, err := sctx.ListReaders()
	if err != nil {
		emit(ctx, status, fmt.Sprintf("Reader init failed: %v", err))
		return fmt.Errorf("list readers: %w", err)
	}
	if len(names) == 0 {
		emit(ctx, status, "No card reader found")
		return fmt.Errorf("no pcsc reader attached")
	}

	name := names[0] // first attached reader; multi-reader fan-in is out of scope
	emit(ctx, status, "Using reader: "+name)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		card, err := sctx.Connect(name, scard.ShareShared, scard.ProtocolAny)
		if err != nil {
			// No card on the pad is the normal idle state.
			if err == scard.ErrNoSmartcard {
				if err := sleep(ctx, idlePoll); err != nil {
					return err
				}
				continue
			}
			emit(ctx, status, fmt.Sprintf("Read error: %v", err))
			if err := sleep(ctx, errorBackoff); err != nil {
				return err
			}
			continue
		}

		uid, ok := readUID(card)
		_ = card.Disconnect(scard.LeaveCard)

		if ok && uid != "" {
			select {
			case scans <- reader.Scan{UID: uid, At: time.Now().UTC()}:
			case <-ctx.Done():
				return ctx.Err()
			}
			// Hold off so the same tap is not reported twice.
			if err := sleep(ctx, cooldown); err != nil {
				return err
			}
			continue
		}

		if err := sleep(ctx, idlePoll); err != nil {
			return err
		}
	}
}

// readUID transmits the GET UID APDU and checks the SW1 status byte.
func readUID(card *scard.Card) (string, bool) {
	resp, err := card.Transmit(getUIDAPDU)
	if err != nil || len(resp) < 2 {
		return "", false
	}
	if resp[len(resp)-2] != 0x90 { // SW1 0x90 = success
		return "", false
	}
	return strings.ToUpper(hex.EncodeToString(resp[:len(resp)-2])), true
}

func emit(ctx context.Context, status chan<- string, msg string) {
	select {
	case status <- msg:
	case <-ctx.Done():
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
