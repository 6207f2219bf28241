package media

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Texture is the display sink for decoded frames. The player writes one
// frame's raw RGBA pixels per presented frame and never looks at how the
// texture reaches the screen.
type Texture interface {
	WritePixels(pix []byte)
	Draw(dst *ebiten.Image, bounds image.Rectangle, tint color.Color)
	Dispose()
}

// TextureFactory creates textures sized to the loaded video.
type TextureFactory interface {
	NewTexture(width, height int) Texture
}
