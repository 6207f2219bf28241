// Package carousel rotates through stills, video clips and silent gaps
// behind the ending credits.
package carousel

import (
	"image"
	"image/color"
	"time"

	"github.com/automoto/curtaincall/fade"
	"github.com/automoto/curtaincall/media"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

type Kind int

const (
	Image Kind = iota
	Video
	Silence
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	case Silence:
		return "silence"
	}
	return "unknown"
}

// ParseKind maps config strings to kinds; unknown strings are silence.
func ParseKind(s string) Kind {
	switch s {
	case "image":
		return Image
	case "video":
		return Video
	}
	return Silence
}

// DefaultDuration is used for stills and silences without a duration.
const DefaultDuration = 5 * time.Second

// Item is one carousel slot. A video with zero Duration lasts until the
// clip ends.
type Item struct {
	Kind     Kind
	Path     string
	Duration time.Duration
}

// Ducker lowers background music while a video plays.
type Ducker interface {
	Duck()
	Unduck()
}

// Still is a drawable image.
type Still interface {
	Draw(dst *ebiten.Image, bounds image.Rectangle, tint color.Color)
}

// Images hands out shared stills by path.
type Images interface {
	Acquire(path string) (Still, error)
	Release(path string)
}

type Options struct {
	Images    Images
	NewPlayer func() *media.Player
	Ducker    Ducker
	Fade      time.Duration
	Loop      bool
	Log       *zap.Logger
}

// Carousel shows one item at a time, fading each in and out.
type Carousel struct {
	items []Item
	opts  Options
	log   *zap.Logger

	idx     int
	elapsed time.Duration
	started bool
	done    bool

	still  Still
	player *media.Player
	alpha  fade.Timer
}

func New(items []Item, opts Options) *Carousel {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Carousel{
		items: append([]Item(nil), items...),
		opts:  opts,
		log:   opts.Log,
	}
}

// Current returns the item on screen.
func (c *Carousel) Current() (Item, bool) {
	if !c.started || c.done || len(c.items) == 0 {
		return Item{}, false
	}
	return c.items[c.idx], true
}

func (c *Carousel) Index() int {
	return c.idx
}

// Done reports whether a non-looping carousel has shown every item.
func (c *Carousel) Done() bool {
	return c.done
}

// Alpha is the opacity of the current item.
func (c *Carousel) Alpha() float64 {
	return c.alpha.Alpha()
}

// Start shows the first item.
func (c *Carousel) Start() {
	if c.started {
		return
	}
	c.started = true
	if len(c.items) == 0 {
		c.done = true
		return
	}
	c.begin(0)
}

func (c *Carousel) begin(idx int) {
	c.idx = idx
	c.elapsed = 0
	item := c.items[idx]

	switch item.Kind {
	case Video:
		if c.opts.Ducker != nil {
			c.opts.Ducker.Duck()
		}
		if c.opts.NewPlayer != nil {
			c.player = c.opts.NewPlayer()
			c.player.Load(item.Path)
			c.player.Play()
		}
	case Image:
		c.unduck()
		if c.opts.Images != nil {
			still, err := c.opts.Images.Acquire(item.Path)
			if err != nil {
				c.log.Warn("could not load carousel image", zap.String("path", item.Path), zap.Error(err))
			} else {
				c.still = still
			}
		}
	default:
		c.unduck()
	}

	if c.opts.Fade > 0 {
		c.alpha.Reset()
		c.alpha.FadeIn(c.opts.Fade)
	} else {
		c.alpha.Show()
	}
	c.log.Debug("carousel item", zap.Int("index", idx), zap.Stringer("kind", item.Kind), zap.String("path", item.Path))
}

func (c *Carousel) unduck() {
	if c.opts.Ducker != nil {
		c.opts.Ducker.Unduck()
	}
}

// end releases whatever the current item holds.
func (c *Carousel) end() {
	item := c.items[c.idx]
	if c.player != nil {
		c.player.Dispose()
		c.player = nil
	}
	if c.still != nil {
		c.opts.Images.Release(item.Path)
		c.still = nil
	}
}

func (c *Carousel) duration(item Item) time.Duration {
	if item.Duration > 0 {
		return item.Duration
	}
	if item.Kind == Video {
		return 0
	}
	return DefaultDuration
}

// Update advances the current item by dt and moves on when it is over.
func (c *Carousel) Update(dt time.Duration) {
	if !c.started || c.done {
		return
	}
	c.elapsed += dt
	c.alpha.Update(dt)
	if c.player != nil {
		c.player.Update()
	}

	item := c.items[c.idx]
	limit := c.duration(item)

	if limit > 0 && c.opts.Fade > 0 {
		remaining := limit - c.elapsed
		if remaining <= c.opts.Fade && remaining > 0 && c.alpha.State() != fade.FadingOut {
			c.alpha.FadeOut(remaining)
		}
	}

	if c.finished(item, limit) {
		c.next()
	}
}

func (c *Carousel) finished(item Item, limit time.Duration) bool {
	if limit > 0 && c.elapsed >= limit {
		return true
	}
	if item.Kind != Video {
		return false
	}
	if c.player == nil {
		return true
	}
	if c.player.LoadStatus().Phase == media.Failed {
		return true
	}
	return c.player.State() == media.Ended
}

func (c *Carousel) next() {
	c.end()
	idx := c.idx + 1
	if idx >= len(c.items) {
		if !c.opts.Loop {
			c.done = true
			c.alpha.Hide()
			c.unduck()
			return
		}
		idx = 0
	}
	c.begin(idx)
}

// Draw renders the current item into bounds.
func (c *Carousel) Draw(dst *ebiten.Image, bounds image.Rectangle) {
	if c.done || !c.alpha.Visible() {
		return
	}
	a := uint8(c.alpha.Alpha() * 0xff)
	tint := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: a}
	switch {
	case c.player != nil:
		c.player.Draw(dst, bounds, tint)
	case c.still != nil:
		c.still.Draw(dst, bounds, tint)
	}
}

// Close releases the current item.
func (c *Carousel) Close() {
	if c.started && !c.done && len(c.items) > 0 {
		c.end()
	}
	c.done = true
}
