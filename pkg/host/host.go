// Package host defines the contract between the daemon and the overlay
// that receives pointer input and draws the menu.
package host

import (
	"context"

	"github.com/mchmarny/waydo/pkg/nav"
)

// Host is an overlay surface.
//
// Events delivers pointer motion and completed clicks in overlay pixel
// coordinates. Present is called by the daemon event loop after every
// state change and must not block. Run owns the surface until ctx is
// canceled or the user quits, and returns ErrQuit in the latter case.
type Host interface {
	Events() <-chan nav.Event
	Present(v nav.View)
	Run(ctx context.Context) error
}
