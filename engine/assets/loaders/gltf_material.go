package loaders

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
	"github.com/spaghettifunk/bolt/engine/scene"
)

const defaultMaterial = -1

/**
 * @brief Returns the program of a material, creating it on first use.
 * Unsupported workflows fall back to the default material.
 */
func (imp *importer) program(materialIndex *uint32, skinned bool) (*scene.Program, error) {
	index := defaultMaterial
	if materialIndex != nil {
		index = int(*materialIndex)
		if index >= len(imp.doc.Materials) || imp.doc.Materials[index] == nil {
			return nil, core.NewImportError(core.ErrMissingData, "material", errors.Errorf("material %d does not exist", index))
		}
		if _, ok := imp.doc.Materials[index].Extensions[extensionSpecularGlossiness]; ok {
			core.LogWarn("%s: material '%s' uses %s, using the default material", core.ErrUnsupportedFeature, imp.doc.Materials[index].Name, extensionSpecularGlossiness)
			index = defaultMaterial
		}
	}

	key := programKey{material: index, skinned: skinned}
	if program, ok := imp.programs[key]; ok {
		return program, nil
	}

	vertex, fragment, err := BuiltinShaderSources(skinned)
	if err != nil {
		return nil, core.NewImportError(core.ErrMissingData, "material", err)
	}
	name := "default"
	if index != defaultMaterial {
		name = imp.doc.Materials[index].Name
		if name == "" {
			name = fmt.Sprintf("material_%d", index)
		}
	}
	if skinned {
		name += "_skinned"
	}
	program, err := scene.NewProgram(imp.backend, name, vertex, fragment)
	if err != nil {
		return nil, core.NewImportError(core.ErrMissingData, "material "+name, err)
	}
	imp.model.Programs = append(imp.model.Programs, program)
	imp.programs[key] = program

	program.SetVector4("baseColor", math.NewVec4One())
	program.SetBool("useAlbedoMap", false)
	program.SetFloat("alphaCutoff", 0)
	if skinned {
		program.SetInt("jointCount", 0)
	}
	if index == defaultMaterial {
		return program, nil
	}

	material := imp.doc.Materials[index]
	if material.DoubleSided {
		program.CullFace = metadata.CullFaceNone
	}
	switch material.AlphaMode {
	case gltf.AlphaBlend:
		program.Transparent = true
	case gltf.AlphaMask:
		program.SetFloat("alphaCutoff", material.AlphaCutoffOrDefault())
	}
	if pbr := material.PBRMetallicRoughness; pbr != nil {
		f := pbr.BaseColorFactorOrDefault()
		program.SetVector4("baseColor", math.NewVec4(f[0], f[1], f[2], f[3]))
		if pbr.BaseColorTexture != nil {
			texture, err := imp.texture(pbr.BaseColorTexture.Index)
			if err != nil {
				return nil, err
			}
			if texture != nil {
				program.SetTexture("mapAlbedo", texture)
				program.SetBool("useAlbedoMap", true)
			}
		}
	}
	return program, nil
}

/**
 * @brief Decodes and uploads a texture, once per glTF texture. A texture
 * whose image cannot be decoded is skipped with a warning.
 */
func (imp *importer) texture(index uint32) (*scene.Texture, error) {
	if texture, ok := imp.textures[index]; ok {
		return texture, nil
	}
	op := fmt.Sprintf("texture %d", index)
	if int(index) >= len(imp.doc.Textures) || imp.doc.Textures[index] == nil {
		return nil, core.NewImportError(core.ErrMissingData, op, errors.New("texture does not exist"))
	}
	gt := imp.doc.Textures[index]
	if gt.Source == nil || int(*gt.Source) >= len(imp.doc.Images) || imp.doc.Images[*gt.Source] == nil {
		core.LogWarn("%s: %s has no image source", core.ErrUnsupportedFeature, op)
		imp.textures[index] = nil
		return nil, nil
	}
	image := imp.doc.Images[*gt.Source]

	var data []byte
	switch {
	case image.BufferView != nil:
		view, _, err := imp.bufferView(*image.BufferView)
		if err != nil {
			return nil, core.NewImportError(core.ErrMissingData, op, err)
		}
		data = view
	case image.URI != "":
		fetched, err := imp.fetcher.Fetch(imp.ctx, ResolveURI(imp.baseURL, image.URI))
		if err != nil {
			return nil, err
		}
		data = fetched
	default:
		return nil, core.NewImportError(core.ErrMissingData, op, errors.New("image has neither bufferView nor uri"))
	}

	decoded, err := DecodeImage(data, false)
	if err != nil {
		mimeType := image.MimeType
		if mimeType == "" {
			mimeType = dataURIMimeType(image.URI)
		}
		core.LogWarn("%s: %s (%s) could not be decoded: %s", core.ErrUnsupportedFeature, op, mimeType, err)
		imp.textures[index] = nil
		return nil, nil
	}

	name := image.Name
	if name == "" {
		name = fmt.Sprintf("image_%d", *gt.Source)
	}
	options := scene.DefaultTextureOptions(name, decoded.Width, decoded.Height)
	if gt.Sampler != nil && int(*gt.Sampler) < len(imp.doc.Samplers) && imp.doc.Samplers[*gt.Sampler] != nil {
		applySampler(&options, imp.doc.Samplers[*gt.Sampler])
	}
	texture, err := scene.NewTexture(imp.backend, options, decoded.Pixels)
	if err != nil {
		return nil, core.NewImportError(core.ErrMissingData, op, err)
	}
	imp.model.Textures = append(imp.model.Textures, texture)
	imp.textures[index] = texture
	return texture, nil
}

func applySampler(options *scene.TextureOptions, sampler *gltf.Sampler) {
	if sampler.MagFilter == gltf.MagNearest {
		options.MagFilter = metadata.TextureFilterModeNearest
	}
	mipmapped := true
	switch sampler.MinFilter {
	case gltf.MinNearestMipMapNearest:
		options.MinFilter = metadata.TextureFilterModeNearestMipmapNearest
	case gltf.MinLinearMipMapNearest:
		options.MinFilter = metadata.TextureFilterModeLinearMipmapNearest
	case gltf.MinNearestMipMapLinear:
		options.MinFilter = metadata.TextureFilterModeNearestMipmapLinear
	case gltf.MinLinearMipMapLinear:
		options.MinFilter = metadata.TextureFilterModeLinearMipmapLinear
	case gltf.MinNearest:
		options.MinFilter = metadata.TextureFilterModeNearest
		mipmapped = false
	default:
		mipmapped = false
	}
	options.GenerateMipmaps = mipmapped
	options.WrapS = wrapMode(sampler.WrapS)
	options.WrapT = wrapMode(sampler.WrapT)
}

func wrapMode(mode gltf.WrappingMode) metadata.TextureRepeat {
	switch mode {
	case gltf.WrapClampToEdge:
		return metadata.TextureRepeatClampToEdge
	case gltf.WrapMirroredRepeat:
		return metadata.TextureRepeatMirroredRepeat
	}
	return metadata.TextureRepeatRepeat
}
