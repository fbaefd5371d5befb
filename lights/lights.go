package lights

import (
	"context"

	"github.com/scheerer/arcade-button-fx/internal/fx"
)

// LightService is anything that displays composed frames. Frames are
// index-aligned with the engine's button list and only valid for the call.
type LightService interface {
	Start(ctx context.Context)
	Stop()
	LightCount() int
	SetFrame(ctx context.Context, frame []fx.RGB)
}
