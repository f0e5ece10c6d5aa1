package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"sync"
	"time"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

var (
	ErrBrowserNotConnected = errors.New("browser not connected")
	ErrInvalidURL          = errors.New("invalid url")
	ErrInvalidSelector     = errors.New("invalid selector")
)

const (
	defaultTimeout     = 10 * time.Second
	defaultSlowMotion  = 0
	navigationIdle     = 5 * time.Second
	clickIdle          = 2 * time.Second
	screenshotMaxWidth = 1024
	screenshotQuality  = 75
)

type BrowserAdapter struct {
	mu       sync.RWMutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	closed   bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	// DisableSecurityFeatures turns off web security and allows mixed content.
	DisableSecurityFeatures bool
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
	}
}

// NewBrowserAdapter launches a local Chromium and opens a blank page.
func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")
	if cfg.DisableSecurityFeatures {
		l = l.Set("disable-web-security").
			Set("allow-running-insecure-content")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.closed && b.page != nil
}

// Page returns the live page handle, or ErrBrowserNotConnected after Close.
func (b *BrowserAdapter) Page() (*rod.Page, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed || b.page == nil {
		return nil, ErrBrowserNotConnected
	}
	return b.page, nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	if err := entity.ValidateURL(url); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidURL, url, err)
	}
	page, err := b.Page()
	if err != nil {
		return err
	}

	page = page.Context(ctx)
	if err := page.Timeout(b.GetTimeout()).Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.Timeout(b.GetTimeout()).WaitLoad(); err != nil {
		return fmt.Errorf("wait load failed: %w", err)
	}
	_ = page.WaitIdle(navigationIdle)
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, selector string) error {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return ErrInvalidSelector
	}
	page, err := b.Page()
	if err != nil {
		return err
	}

	page = page.Context(ctx)
	var el *rod.Element
	if isXPathSelector(selector) {
		el, err = page.Timeout(b.GetTimeout()).ElementX(strings.TrimPrefix(selector, "xpath="))
	} else {
		el, err = page.Timeout(b.GetTimeout()).Element(selector)
	}
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}

	_ = page.WaitIdle(clickIdle)
	return nil
}

func (b *BrowserAdapter) Snapshot(ctx context.Context) (*entity.PageSnapshot, error) {
	page, err := b.Page()
	if err != nil {
		return nil, err
	}
	page = page.Context(ctx)

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info failed: %w", err)
	}
	content, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML: %w", err)
	}

	return &entity.PageSnapshot{
		URL:   info.URL,
		Title: info.Title,
		HTML:  content,
	}, nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.Page()
	if err != nil {
		return nil, err
	}

	imgBytes, err := page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > screenshotMaxWidth {
		img = imaging.Resize(img, screenshotMaxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: screenshotQuality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	page, err := b.Page()
	if err != nil {
		return ""
	}
	info, err := page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) GetTimeout() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.timeout
}

// SetTimeout ignores non-positive values.
func (b *BrowserAdapter) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	b.timeout = d
	b.mu.Unlock()
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
	b.page = nil
}

func isXPathSelector(selector string) bool {
	return strings.HasPrefix(selector, "/") ||
		strings.HasPrefix(selector, "(/") ||
		strings.HasPrefix(selector, "xpath=")
}
