// Package kiosk connects the card reader to the decision engine and the
// display: scans become decisions, reader health and store failures become
// status text.
package kiosk

import (
	"context"
	"log"

	"github.com/clubgate/clubgate/internal/gate/service"
	"github.com/clubgate/clubgate/internal/gate/types"
	"github.com/clubgate/clubgate/internal/reader"
)

// Presenter renders decisions and reader status. Implemented by ui.Console;
// tests substitute a fake.
type Presenter interface {
	Render(d types.Decision)
	RenderStatus(msg string)
}

type Dependencies struct {
	Logger    *log.Logger
	Service   *service.GateService
	Presenter Presenter

	// Group the gate is currently admitting; passed to the engine on
	// every scan.
	Group string
}

type Kiosk struct {
	logger    *log.Logger
	svc       *service.GateService
	presenter Presenter
	group     string
}

func New(d Dependencies) *Kiosk {
	return &Kiosk{
		logger:    d.Logger,
		svc:       d.Service,
		presenter: d.Presenter,
		group:     d.Group,
	}
}

// Run consumes scans and status updates until ctx is cancelled. A store
// failure during a scan is surfaced on the status channel side of the
// display — never as an access result — and the scan counts as failed.
func (k *Kiosk) Run(ctx context.Context, scans <-chan reader.Scan, status <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-status:
			k.logger.Printf("reader: %s", msg)
			k.presenter.RenderStatus(msg)

		case scan := <-scans:
			d, err := k.svc.Decide(ctx, types.ScanRequest{
				CardUID:   scan.UID,
				Group:     k.group,
				ScannedAt: scan.At,
			})
			if err != nil {
				k.logger.Printf("scan %s failed: %v", scan.UID, err)
				k.presenter.RenderStatus("Scan failed, please try again")
				continue
			}
			k.logger.Printf("scan %s group=%s allowed=%t reason=%q", d.CardUID, k.group, d.Allowed, d.Reason)
			k.presenter.Render(d)
		}
	}
}
