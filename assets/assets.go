// Package assets adapts ebiten to the engine: the audio device, video
// textures and carousel stills.
package assets

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/automoto/curtaincall/carousel"
	"github.com/automoto/curtaincall/media"
	"github.com/automoto/curtaincall/resource"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// fitRect returns the largest rectangle with the aspect ratio of a w×h image
// centered inside bounds.
func fitRect(w, h int, bounds image.Rectangle) (scale, x, y float64) {
	bw, bh := float64(bounds.Dx()), float64(bounds.Dy())
	if w == 0 || h == 0 || bw == 0 || bh == 0 {
		return 0, 0, 0
	}
	scale = min(bw/float64(w), bh/float64(h))
	x = float64(bounds.Min.X) + (bw-float64(w)*scale)/2
	y = float64(bounds.Min.Y) + (bh-float64(h)*scale)/2
	return scale, x, y
}

func drawFit(dst, img *ebiten.Image, bounds image.Rectangle, tint color.Color) {
	size := img.Bounds().Size()
	scale, x, y := fitRect(size.X, size.Y, bounds)
	if scale == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	if tint != nil {
		op.ColorScale.ScaleWithColor(tint)
	}
	dst.DrawImage(img, op)
}

// Texture is a video frame target.
type Texture struct {
	img *ebiten.Image
}

func (t *Texture) WritePixels(pix []byte) {
	t.img.WritePixels(pix)
}

func (t *Texture) Draw(dst *ebiten.Image, bounds image.Rectangle, tint color.Color) {
	drawFit(dst, t.img, bounds, tint)
}

func (t *Texture) Dispose() {
	t.img.Deallocate()
}

// Textures creates ebiten-backed video textures.
type Textures struct{}

var _ media.TextureFactory = Textures{}

func (Textures) NewTexture(width, height int) media.Texture {
	return &Texture{img: ebiten.NewImage(width, height)}
}

// Still is a decoded carousel image.
type Still struct {
	img *ebiten.Image
}

func (s *Still) Draw(dst *ebiten.Image, bounds image.Rectangle, tint color.Color) {
	drawFit(dst, s.img, bounds, tint)
}

// ImageLoader loads stills from disk and shares them between holders.
type ImageLoader struct {
	cache *resource.Cache[string, *Still]
}

var _ carousel.Images = (*ImageLoader)(nil)

func NewImageLoader() *ImageLoader {
	return &ImageLoader{
		cache: resource.NewCache(func(_ string, s *Still) {
			s.img.Deallocate()
		}),
	}
}

func (l *ImageLoader) Acquire(path string) (carousel.Still, error) {
	s, err := l.cache.Acquire(path, func() (*Still, error) {
		return loadStill(path)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (l *ImageLoader) Release(path string) {
	l.cache.Release(path)
}

// Close frees every cached image.
func (l *ImageLoader) Close() {
	l.cache.Clear()
}

func loadStill(path string) (*Still, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := ebitenutil.NewImageFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create image from %s: %w", path, err)
	}
	return &Still{img: img}, nil
}
