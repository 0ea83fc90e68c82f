package assets

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

/**
 * @brief Serves the assets of a manager over HTTP:
 *   GET /models         JSON list of the indexed models
 *   GET /models/{file}  raw bytes of any indexed asset, so relative buffer
 *                       and image URIs of a .gltf resolve on the same route
 */
func NewAssetServer(am *AssetManager, accessLog io.Writer) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/models", handlerModels(am)).Methods(http.MethodGet)
	r.HandleFunc("/models/{file:.+}", handlerAsset(am)).Methods(http.MethodGet)

	h := handlers.RecoveryHandler()(r)
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	return h
}

// StartAssetServer serves am on addr until the returned server is closed.
func StartAssetServer(addr string, am *AssetManager) *http.Server {
	server := &http.Server{
		Addr:    addr,
		Handler: NewAssetServer(am, os.Stdout),
	}
	go func() {
		core.LogInfo("[web] Starting asset server %v", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			core.LogError("asset server stopped: %s", err)
		}
	}()
	return server
}

func handlerModels(am *AssetManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, am.List(metadata.ResourceTypeModel))
	}
}

func handlerAsset(am *AssetManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := mux.Vars(r)["file"]
		asset, ok := am.Get(file)
		if !ok {
			writeError(w, http.StatusNotFound, errors.Wrapf(ErrAssetNotFound, "'%s'", file))
			return
		}
		f, err := os.Open(asset.Path)
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.Wrapf(err, "failed to open '%s'", file))
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", contentType(asset.Name))
		w.Header().Set("Content-Disposition", "attachment; filename=\""+path.Base(asset.Name)+"\"")
		if _, err := io.Copy(w, f); err != nil {
			core.LogError("error when writing '%s': %s", file, err)
		}
	}
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".glb":
		return "model/gltf-binary"
	case ".gltf":
		return "model/gltf+json"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

func writeJson(w http.ResponseWriter, status int, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(res); err != nil {
		core.LogError("error when writing response: %s", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	type jError struct {
		Error string `json:"error"`
	}
	core.LogWarn("asset server: %s", err)
	res, _ := json.Marshal(&jError{Error: err.Error()})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}
