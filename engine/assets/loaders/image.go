package loaders

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

type ImageLoader struct{}

func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image '%s'", path)
	}
	flip := false
	if typedParams, ok := params.(*metadata.ImageResourceParams); ok && typedParams != nil {
		flip = typedParams.FlipY
	}
	img, err := DecodeImage(data, flip)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image '%s'", path)
	}
	return &metadata.Resource{
		Name:         path,
		FullPath:     path,
		ResourceType: metadata.ResourceTypeImage,
		DataSize:     uint64(len(img.Pixels)),
		Data:         img,
	}, nil
}

func (il *ImageLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

/**
 * @brief Decodes PNG, JPEG or WebP bytes into tightly packed RGBA pixels.
 * The format is sniffed from the data.
 */
func DecodeImage(data []byte, flipY bool) (*metadata.ImageResourceData, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "unsupported or corrupt image")
	}
	bounds := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	}

	width, height := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	pixels := rgba.Pix
	if flipY {
		pixels = make([]uint8, len(rgba.Pix))
		row := width * 4
		for y := 0; y < height; y++ {
			copy(pixels[y*row:(y+1)*row], rgba.Pix[(height-1-y)*row:(height-y)*row])
		}
	}
	return &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        uint32(width),
		Height:       uint32(height),
		Pixels:       pixels,
		Format:       format,
	}, nil
}
