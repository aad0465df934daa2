package style

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/loop"
)

const (
	// DefaultPollInterval is how often a pending image is checked for dimensions.
	DefaultPollInterval = 10 * time.Millisecond
	// DefaultMaxWait bounds a probe that never observes dimensions.
	DefaultMaxWait = 30 * time.Second
)

var (
	ErrProbeTimeout  = errors.New("image dimensions not available")
	ErrProbeCanceled = errors.New("image probe canceled")
)

// Size is an image's pixel dimensions.
type Size struct {
	Width  float64
	Height float64
}

// Known reports whether both dimensions are non-zero.
func (s Size) Known() bool { return s.Width > 0 && s.Height > 0 }

// Image is an icon being loaded. Size reports zeros until the image is available.
type Image interface {
	Size() Size
}

// ImageLoader starts loading the image at url.
type ImageLoader interface {
	Load(url string) Image
}

// ProberOptions configures a Prober.
type ProberOptions struct {
	Loop     loop.Scheduler
	Loader   ImageLoader
	Interval time.Duration // zero means DefaultPollInterval
	MaxWait  time.Duration // zero means DefaultMaxWait; negative polls forever
	CacheTTL time.Duration // zero means cached sizes never expire
	Logger   zerolog.Logger
}

// Prober resolves icon dimensions by polling loading images on the loop.
type Prober struct {
	opts  ProberOptions
	cache *cache.Cache
}

// NewProber creates a Prober.
func NewProber(opts ProberOptions) *Prober {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.MaxWait == 0 {
		opts.MaxWait = DefaultMaxWait
	}
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = cache.NoExpiration
	}
	return &Prober{opts: opts, cache: cache.New(ttl, 10*time.Minute)}
}

// Probe is a pending dimension lookup.
type Probe struct {
	url     string
	started time.Time
	image   Image
	onSize  func(Size)
	timer   loop.Timer
	done    chan struct{}
	size    Size
	err     error
}

// Resolve looks up the dimensions of url and calls onSize on the loop once they are
// known. A cached size resolves before Resolve returns.
func (p *Prober) Resolve(url string, onSize func(Size)) *Probe {
	pr := &Probe{url: url, onSize: onSize, done: make(chan struct{})}
	if v, ok := p.cache.Get(url); ok {
		pr.finish(v.(Size), nil)
		return pr
	}
	pr.started = p.opts.Loop.Now()
	pr.image = p.opts.Loader.Load(url)
	pr.timer = p.opts.Loop.AfterFunc(p.opts.Interval, func() { p.poll(pr) })
	return pr
}

func (p *Prober) poll(pr *Probe) {
	if pr.finished() {
		return
	}
	if s := pr.image.Size(); s.Known() {
		p.cache.Set(pr.url, s, cache.DefaultExpiration)
		pr.finish(s, nil)
		return
	}
	if p.opts.MaxWait > 0 && p.opts.Loop.Now().Sub(pr.started) >= p.opts.MaxWait {
		p.opts.Logger.Warn().Str("url", pr.url).Dur("waited", p.opts.MaxWait).Msg("icon dimensions never resolved")
		pr.finish(Size{}, fmt.Errorf("%w: %s", ErrProbeTimeout, pr.url))
		return
	}
	pr.timer = p.opts.Loop.AfterFunc(p.opts.Interval, func() { p.poll(pr) })
}

// Cached returns a previously resolved size.
func (p *Prober) Cached(url string) (Size, bool) {
	v, ok := p.cache.Get(url)
	if !ok {
		return Size{}, false
	}
	return v.(Size), true
}

func (pr *Probe) finished() bool {
	select {
	case <-pr.done:
		return true
	default:
		return false
	}
}

func (pr *Probe) finish(s Size, err error) {
	pr.size, pr.err = s, err
	close(pr.done)
	if err == nil && pr.onSize != nil {
		pr.onSize(s)
	}
}

// Cancel stops polling. It must be called on the loop.
func (pr *Probe) Cancel() {
	if pr.finished() {
		return
	}
	if pr.timer != nil {
		pr.timer.Stop()
	}
	pr.finish(Size{}, ErrProbeCanceled)
}

// Done is closed once the probe resolved, failed or was canceled.
func (pr *Probe) Done() <-chan struct{} { return pr.done }

// Result returns the outcome. It is only meaningful after Done is closed.
func (pr *Probe) Result() (Size, error) { return pr.size, pr.err }

// Wait blocks until the probe finishes or ctx is done.
func (pr *Probe) Wait(ctx context.Context) (Size, error) {
	select {
	case <-pr.done:
		return pr.size, pr.err
	case <-ctx.Done():
		return Size{}, ctx.Err()
	}
}
