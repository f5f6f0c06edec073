// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/rostercrawl/internal/auth"
	"github.com/law-makers/rostercrawl/internal/config"
	"github.com/law-makers/rostercrawl/internal/engine"
	"github.com/rs/zerolog/log"
)

// Options configures a browser session
type Options struct {
	Headless  bool
	UserAgent string
	Proxy     string
	// ChromePath overrides auto-detection
	ChromePath string
	// ActionTimeout bounds every single driver call; 0 disables it.
	ActionTimeout time.Duration
	Cookies       []auth.Cookie
	// Headers are sent with every request the page makes.
	Headers   map[string]string
	ExtraArgs []chromedp.ExecAllocatorOption
}

// Session is one Chrome tab driven over the DevTools protocol. It
// implements engine.Driver.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opts        Options
	closeOnce   sync.Once
}

var _ engine.Driver = (*Session)(nil)

// allocatorOptions builds the Chrome command line
func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(opts.UserAgent),
	}

	path := opts.ChromePath
	if path == "" {
		path = FindChrome()
	}
	if path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}

	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	return append(allocOpts, opts.ExtraArgs...)
}

// NewSession launches Chrome, opens a blank tab and installs the session
// cookies. The browser lives until Close, independent of ctx; ctx only
// bounds the launch.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	s := &Session{ctx: browserCtx, cancel: cancel, allocCancel: allocCancel, opts: opts}

	start := time.Now()
	// The first Run starts the browser and must use the unwrapped context.
	if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	if err := ctx.Err(); err != nil {
		s.Close()
		return nil, err
	}

	if len(opts.Cookies) > 0 {
		if err := s.run(ctx, network.SetCookies(cookieParams(opts.Cookies))); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to install session cookies: %w", err)
		}
		log.Debug().Int("cookies", len(opts.Cookies)).Msg("Session cookies installed")
	}

	if len(opts.Headers) > 0 {
		h := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			h[k] = v
		}
		if err := s.run(ctx, network.Enable(), network.SetExtraHTTPHeaders(h)); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to set request headers: %w", err)
		}
	}

	log.Debug().
		Bool("headless", opts.Headless).
		Dur("elapsed", time.Since(start)).
		Msg("Browser session ready")
	return s, nil
}

// run executes actions on the tab. Cancelling ctx aborts them without
// closing the tab.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if s.opts.ActionTimeout > 0 {
		var tcancel context.CancelFunc
		runCtx, tcancel = context.WithTimeout(runCtx, s.opts.ActionTimeout)
		defer tcancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate loads url and waits for the load event
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

// Fullscreen maximizes the window. Headless Chrome has no window manager,
// so the viewport is sized to the launch window instead.
func (s *Session) Fullscreen(ctx context.Context) error {
	if s.opts.Headless {
		return s.run(ctx, chromedp.EmulateViewport(1920, 1080))
	}
	return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		windowID, _, err := cdpbrowser.GetWindowForTarget().Do(ctx)
		if err != nil {
			return err
		}
		return cdpbrowser.SetWindowBounds(windowID, &cdpbrowser.Bounds{WindowState: cdpbrowser.WindowStateFullscreen}).Do(ctx)
	}))
}

// WaitReady blocks until loc is present in the DOM
func (s *Session) WaitReady(ctx context.Context, loc engine.Locator) error {
	return s.run(ctx, chromedp.WaitReady(loc.Value, queryOption(loc)))
}

// Click clicks the first node matching loc. Select options are chosen
// through the DOM since they have no clickable box of their own.
func (s *Session) Click(ctx context.Context, loc engine.Locator) error {
	node, err := s.first(ctx, loc)
	if err != nil {
		return err
	}
	if strings.EqualFold(node.NodeName, "option") {
		return s.run(ctx, selectOption(node))
	}
	return s.run(ctx, chromedp.MouseClickNode(node))
}

// Attribute reads an attribute of the first node matching loc
func (s *Session) Attribute(ctx context.Context, loc engine.Locator, name string) (string, bool, error) {
	node, err := s.first(ctx, loc)
	if err != nil {
		return "", false, err
	}
	value, ok := node.Attribute(name)
	return value, ok, nil
}

// Execute evaluates script in the page and discards its result
func (s *Session) Execute(ctx context.Context, script string) error {
	return s.run(ctx, chromedp.Evaluate(script, nil))
}

// Source returns the rendered document
func (s *Session) Source(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close shuts the tab and the browser process. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.allocCancel()
		log.Debug().Msg("Browser session closed")
	})
	return nil
}

// first looks loc up without waiting; a missing node is ErrElementNotFound
func (s *Session) first(ctx context.Context, loc engine.Locator) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(loc.Value, &nodes, queryAllOption(loc), chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", loc, engine.ErrElementNotFound)
	}
	return nodes[0], nil
}

func queryOption(loc engine.Locator) chromedp.QueryOption {
	if loc.Kind == engine.ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func queryAllOption(loc engine.Locator) chromedp.QueryOption {
	if loc.Kind == engine.ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQueryAll
}

const selectOptionJS = `function() {
	this.selected = true;
	const sel = this.closest("select");
	if (sel) {
		sel.dispatchEvent(new Event("input", {bubbles: true}));
		sel.dispatchEvent(new Event("change", {bubbles: true}));
	}
}`

func selectOption(node *cdp.Node) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		_, exception, err := runtime.CallFunctionOn(selectOptionJS).WithObjectID(obj.ObjectID).Do(ctx)
		if err != nil {
			return err
		}
		if exception != nil {
			return exception
		}
		return nil
	}
}

// cookieParams converts stored cookies to DevTools parameters
func cookieParams(cookies []auth.Cookie) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		switch strings.ToLower(c.SameSite) {
		case "strict":
			p.SameSite = network.CookieSameSiteStrict
		case "lax":
			p.SameSite = network.CookieSameSiteLax
		case "none", "no_restriction":
			p.SameSite = network.CookieSameSiteNone
		}
		if c.Expires > 0 {
			sec := int64(c.Expires)
			nsec := int64((c.Expires - float64(sec)) * 1e9)
			expires := cdp.TimeSinceEpoch(time.Unix(sec, nsec))
			p.Expires = &expires
		}
		params = append(params, p)
	}
	return params
}

// Cookies returns every cookie the browser holds, converted for storage
func (s *Session) Cookies(ctx context.Context) ([]auth.Cookie, error) {
	var cookies []*network.Cookie
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	out := make([]auth.Cookie, len(cookies))
	for i, c := range cookies {
		out[i] = auth.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		}
	}
	return out, nil
}
