package platform

import (
	"context"
	"time"

	"github.com/tas33n/DroidWright/internal/model"
)

// Snapshotter captures the current UI tree.
type Snapshotter interface {
	// Snapshot returns an atomic capture of the on-screen hierarchy.
	Snapshot(ctx context.Context) (*model.Snapshot, error)
}

// Gesturer injects touch and text input.
type Gesturer interface {
	Tap(ctx context.Context, p model.Point) error
	LongTap(ctx context.Context, p model.Point, d time.Duration) error
	Swipe(ctx context.Context, from, to model.Point, d time.Duration) error
	InputText(ctx context.Context, text string) error
}

// Device exposes device-level controls.
type Device interface {
	ScreenSize(ctx context.Context) (model.Size, error)
	PressKey(ctx context.Context, key Key) error
	// Screenshot returns the current screen as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)
}

// AppManager controls application lifecycle.
type AppManager interface {
	// Launch starts the package's launcher activity. It reports false when
	// the package could not be started.
	Launch(ctx context.Context, pkg string) (bool, error)
	// CurrentPackage returns the package owning the focused window.
	CurrentPackage(ctx context.Context) (string, error)
}
