package loaders

import (
	"embed"
	"os"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

//go:embed shaders/*.vert shaders/*.frag
var builtinShaders embed.FS

// ShaderLoader reads GLSL sources from disk.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read shader '%s'", path)
	}
	return &metadata.Resource{
		Name:         path,
		FullPath:     path,
		ResourceType: metadata.ResourceTypeText,
		DataSize:     uint64(len(data)),
		Data:         string(data),
	}, nil
}

func (sl *ShaderLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	return nil
}

/** @brief The GLSL sources of the built-in material, skinned or not. */
func BuiltinShaderSources(skinned bool) (string, string, error) {
	vertex := "shaders/color.vert"
	if skinned {
		vertex = "shaders/skin.vert"
	}
	vs, err := builtinShaders.ReadFile(vertex)
	if err != nil {
		return "", "", errors.Wrap(err, "missing built-in vertex shader")
	}
	fs, err := builtinShaders.ReadFile("shaders/color.frag")
	if err != nil {
		return "", "", errors.Wrap(err, "missing built-in fragment shader")
	}
	return string(vs), string(fs), nil
}
