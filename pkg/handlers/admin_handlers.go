package handlers

import (
	"log/slog"
	"net/http"
)

// FlushCacheHandler drops the cached gallery so the next request reloads the manifest
func (h *Handler) FlushCacheHandler(w http.ResponseWriter, _ *http.Request) {
	slog.Info("Flushing gallery cache")
	h.service.FlushCache()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Gallery cache flushed",
	})
}

// VerifyHandler checks that every photo and thumbnail exists in the configured bucket
func (h *Handler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	bucket := h.service.Config().Bucket
	if bucket == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no bucket configured"})
		return
	}

	g, err := h.service.GetGallery(r.Context(), false)
	if err != nil {
		writeLoadError(w, err)
		return
	}

	report, err := h.service.VerifyBucket(r.Context(), g, bucket, h.lister, false)
	if err != nil {
		slog.Error("Error verifying bucket", "bucket", bucket, "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"checked": report.Checked,
		"missing": report.Missing,
	})
}
