// internal/engine/engine.go
package engine

import "context"

// LocatorKind selects how a Locator value is interpreted
type LocatorKind int

const (
	// ByCSS treats the value as a CSS selector
	ByCSS LocatorKind = iota
	// ByXPath treats the value as an XPath expression
	ByXPath
)

func (k LocatorKind) String() string {
	switch k {
	case ByXPath:
		return "xpath"
	default:
		return "css"
	}
}

// Locator identifies an element in the live page
type Locator struct {
	Kind  LocatorKind
	Value string
}

// CSS returns a CSS locator
func CSS(sel string) Locator { return Locator{Kind: ByCSS, Value: sel} }

// XPath returns an XPath locator
func XPath(expr string) Locator { return Locator{Kind: ByXPath, Value: expr} }

func (l Locator) String() string {
	return l.Kind.String() + "=" + l.Value
}

// Driver is the browser automation session the scraper runs against.
//
// Calls are strictly sequential; implementations need not be safe for
// concurrent use. Lookups that find nothing return ErrElementNotFound
// (possibly wrapped) instead of blocking.
type Driver interface {
	// Navigate loads url in the current tab and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// Fullscreen switches the browser window to fullscreen.
	Fullscreen(ctx context.Context) error
	// WaitReady blocks until the located element is present in the DOM.
	WaitReady(ctx context.Context, loc Locator) error
	// Click performs a UI click on the first located element.
	Click(ctx context.Context, loc Locator) error
	// Attribute reads an attribute of the first located element.
	Attribute(ctx context.Context, loc Locator, name string) (string, bool, error)
	// Execute runs a script in the page, discarding its result.
	Execute(ctx context.Context, script string) error
	// Source returns the current serialized document.
	Source(ctx context.Context) (string, error)
	// Close releases the session. It is safe to call more than once.
	Close() error
}

// SessionFactory acquires a fresh Driver for one run
type SessionFactory func(ctx context.Context) (Driver, error)

// Throttle paces page advances
type Throttle interface {
	Wait(ctx context.Context, key string) error
}
