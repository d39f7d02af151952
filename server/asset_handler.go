package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cutroom/core/importer"
	"cutroom/logger"
	"cutroom/model"
	"cutroom/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	maxUploadBytes  = 4 << 30 // 4 GiB
	presignedExpiry = 15 * time.Minute
)

// UploadAssetHandler receives a media file, probes it, stores the bytes
// in MinIO and registers the asset metadata.
func (h *APIHandler) UploadAssetHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "A file form field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp("", "cutroom-upload-*"+ext)
	if err != nil {
		logger.Error("failed to create temp file", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Upload failed")
		return
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, file)
	tmp.Close()
	if err != nil {
		logger.Error("failed to buffer upload", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	info, err := importer.Probe(h.cfg.FFprobePath, tmp.Name())
	if err != nil {
		logger.Warn("ffprobe rejected upload",
			logger.String("file", header.Filename), logger.ErrorField(err))
		respondError(w, http.StatusBadRequest, "File is not a readable media file")
		return
	}

	assetID := uuid.NewString()
	objectPath := fmt.Sprintf("users/%d/%s%s", userID, assetID, ext)
	if err := storage.UploadFile(r.Context(), objectPath, tmp.Name()); err != nil {
		logger.Error("failed to store upload", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	kind := model.AssetAudio
	if info.HasVideo {
		kind = model.AssetVideo
	}
	asset := &model.Asset{
		ID:         assetID,
		UserID:     userID,
		Name:       header.Filename,
		Kind:       kind,
		ObjectPath: objectPath,
		Duration:   info.DurationMs,
		Width:      info.Width,
		Height:     info.Height,
		SizeBytes:  size,
	}
	if err := h.assetRepo.CreateAsset(asset); err != nil {
		logger.Error("failed to register asset", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	logger.Info("asset uploaded",
		logger.String("asset", assetID),
		logger.Int64("user", userID),
		logger.Int64("durationMs", asset.Duration))
	respondJSON(w, http.StatusCreated, asset)
}

// ListAssetsHandler lists the caller's assets.
func (h *APIHandler) ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	assets, err := h.assetRepo.GetAllAssetsByUserID(userID)
	if err != nil {
		logger.Error("failed to list assets", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list assets")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"assets": assets})
}

// GetAssetURLHandler returns a short-lived URL for reading the asset's
// bytes directly from storage.
func (h *APIHandler) GetAssetURLHandler(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.ownedAsset(w, r)
	if !ok {
		return
	}
	url, err := storage.PresignedGetURL(r.Context(), asset.ObjectPath, presignedExpiry)
	if err != nil {
		logger.Error("failed to presign asset", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to generate URL")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"url":       url,
		"expiresIn": int64(presignedExpiry.Seconds()),
	})
}

// DeleteAssetHandler removes an asset's bytes and metadata. Timelines
// referencing the asset keep their clips; playback of those clips fails
// until the media is re-imported.
func (h *APIHandler) DeleteAssetHandler(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.ownedAsset(w, r)
	if !ok {
		return
	}
	if err := storage.RemoveObject(r.Context(), asset.ObjectPath); err != nil {
		logger.Warn("failed to remove asset object", logger.ErrorField(err))
	}
	if err := h.assetRepo.DeleteAsset(asset.ID); err != nil {
		logger.Error("failed to delete asset", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete asset")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ownedAsset resolves the {assetId} route variable to an asset owned by
// the caller, answering the error response itself when that fails.
func (h *APIHandler) ownedAsset(w http.ResponseWriter, r *http.Request) (*model.Asset, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	asset, err := h.assetRepo.GetAssetByID(mux.Vars(r)["assetId"])
	if err != nil {
		logger.Error("failed to load asset", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to load asset")
		return nil, false
	}
	if asset == nil || asset.UserID != userID {
		respondError(w, http.StatusNotFound, "Asset not found")
		return nil, false
	}
	return asset, true
}
