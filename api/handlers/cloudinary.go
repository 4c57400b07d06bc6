package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryHandler handles Cloudinary related requests for report photos
type CloudinaryHandler struct{}

// GenerateSignature generates a signature for Cloudinary uploads
func (c CloudinaryHandler) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	// Create the signature
	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	// Respond with the timestamp and signature
	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// destroyReportPhotos removes report photos from Cloudinary once the report
// is deleted. Failures are logged only; the report is already gone.
func destroyReportPhotos(photoURLs []string) {
	if len(photoURLs) == 0 {
		return
	}

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		zap.S().Errorw("failed to create cloudinary client", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, photoURL := range photoURLs {
		publicID := publicIDFromURL(photoURL)
		if publicID == "" {
			continue
		}
		_, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
		if err != nil {
			zap.S().Errorw("failed to destroy report photo", "publicId", publicID, "error", err)
		}
	}
}

// publicIDFromURL extracts the Cloudinary public ID from a delivery URL,
// e.g. .../upload/v123/reports/abc.jpg -> reports/abc
func publicIDFromURL(photoURL string) string {
	parts := strings.Split(photoURL, "/upload/")
	if len(parts) != 2 {
		return ""
	}
	p := parts[1]
	if idx := strings.Index(p, "/"); idx >= 0 && strings.HasPrefix(p, "v") {
		if _, err := strconv.Atoi(p[1:idx]); err == nil {
			p = p[idx+1:]
		}
	}
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext)
}
