package output

import (
	"context"
	"errors"

	"signup-e2e/internal/domain/entity"
)

// ErrNoElement is returned by Find when nothing currently rendered matches.
var ErrNoElement = errors.New("no element matches selector")

// BrowserPort is the driver capability a session exposes. Find never waits;
// polling belongs to the caller.
type BrowserPort interface {
	Kind() entity.BrowserKind

	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)

	Find(ctx context.Context, sel entity.Selector) (ElementPort, error)
	FindAll(ctx context.Context, sel entity.Selector) ([]ElementPort, error)
	PressKey(ctx context.Context, key entity.Key) error

	ClearCookies(ctx context.Context) error
	ClearStorage(ctx context.Context) error

	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	ConsoleEntries(ctx context.Context) ([]entity.ConsoleEntry, error)
	HTML(ctx context.Context) (string, error)

	Close() error
}

type ElementPort interface {
	// Click is the driver's native click.
	Click(ctx context.Context) error
	// DispatchClick fires a click from script, bypassing hit testing.
	DispatchClick(ctx context.Context) error
	// PointerClick moves the pointer over the element and clicks at its position.
	PointerClick(ctx context.Context) error

	ScrollIntoView(ctx context.Context) error
	Interactable(ctx context.Context) (bool, error)
	Visible(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	Checked(ctx context.Context) (bool, error)

	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
	Value(ctx context.Context) (string, error)

	Clear(ctx context.Context) error
	Type(ctx context.Context, text string) error
}

// BrowserFactory provisions a fresh session.
type BrowserFactory func(ctx context.Context) (BrowserPort, error)
