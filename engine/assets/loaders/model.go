package loaders

import (
	"context"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

/**
 * @brief Adapts the glTF importer to the resource loader interface. params
 * may carry a context.Context bounding the fetches.
 */
type ModelLoader struct {
	Importer *GLTFLoader
}

func (ml *ModelLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if ml.Importer == nil {
		return nil, errors.New("model loader has no importer")
	}
	ctx, ok := params.(context.Context)
	if !ok || ctx == nil {
		ctx = context.Background()
	}
	model, err := ml.Importer.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:         model.Name,
		FullPath:     path,
		ResourceType: metadata.ResourceTypeModel,
		Data:         model,
	}, nil
}

// Unload releases the device resources of the model.
func (ml *ModelLoader) Unload(resource *metadata.Resource) error {
	model, ok := resource.Data.(*Model)
	if !ok {
		return errors.Errorf("resource '%s' is not a model", resource.Name)
	}
	model.Delete()
	resource.Data = nil
	return nil
}
