package scene

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/renderer"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

type TextureOptions struct {
	Name            string
	Width, Height   uint32
	MinFilter       metadata.TextureFilter
	MagFilter       metadata.TextureFilter
	WrapS, WrapT    metadata.TextureRepeat
	GenerateMipmaps bool
}

func DefaultTextureOptions(name string, width, height uint32) TextureOptions {
	return TextureOptions{
		Name:      name,
		Width:     width,
		Height:    height,
		MinFilter: metadata.TextureFilterModeLinear,
		MagFilter: metadata.TextureFilterModeLinear,
		WrapS:     metadata.TextureRepeatClampToEdge,
		WrapT:     metadata.TextureRepeatClampToEdge,
	}
}

/** @brief An RGBA texture uploaded to the device. */
type Texture struct {
	backend renderer.RendererBackend
	handle  *metadata.Texture
	deleted bool
}

// NewTexture uploads width*height*4 bytes of RGBA pixels.
func NewTexture(backend renderer.RendererBackend, options TextureOptions, pixels []uint8) (*Texture, error) {
	handle := &metadata.Texture{
		TextureType:     metadata.TextureType2d,
		Name:            options.Name,
		Width:           options.Width,
		Height:          options.Height,
		ChannelCount:    4,
		MinFilter:       options.MinFilter,
		MagFilter:       options.MagFilter,
		WrapS:           options.WrapS,
		WrapT:           options.WrapT,
		GenerateMipmaps: options.GenerateMipmaps,
	}
	if err := backend.TextureCreate(handle, pixels); err != nil {
		return nil, errors.Wrapf(err, "failed to create texture '%s'", options.Name)
	}
	return &Texture{backend: backend, handle: handle}, nil
}

func (t *Texture) Name() string {
	return t.handle.Name
}

func (t *Texture) Handle() *metadata.Texture {
	return t.handle
}

func (t *Texture) Bind(unit uint32) error {
	if t.deleted {
		return errors.Wrapf(core.ErrResourceDeleted, "texture '%s'", t.handle.Name)
	}
	t.backend.TextureBind(t.handle, unit)
	return nil
}

func (t *Texture) Delete() {
	if t.deleted {
		return
	}
	t.backend.TextureDestroy(t.handle)
	t.deleted = true
}
