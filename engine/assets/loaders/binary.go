package loaders

import (
	"os"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

// BinaryLoader reads a file as raw bytes, such as external glTF buffers.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read '%s'", path)
	}
	name := path
	if p, ok := params.(map[string]string); ok && p["name"] != "" {
		name = p["name"]
	}
	return &metadata.Resource{
		Name:         name,
		FullPath:     path,
		ResourceType: metadata.ResourceTypeBinary,
		DataSize:     uint64(len(buf)),
		Data:         buf,
	}, nil
}

func (bl *BinaryLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
