package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"shop-api/media"
	"shop-api/models"
	"shop-api/response"
	"shop-api/services"
)

// multipartMemory is how much of a multipart upload is buffered in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// uploadFolders maps the accepted ?folder= values onto object key prefixes.
var uploadFolders = map[string]string{
	"":         "uploads",
	"products": "products",
	"avatars":  "avatars",
}

// Uploader stores an image and returns its reference.
type Uploader interface {
	Upload(ctx context.Context, folder string, r io.Reader) (models.Image, error)
}

// UploadController accepts image uploads for products and avatars.
type UploadController struct {
	Images Uploader
}

// NewUploadController creates a new UploadController. images may be nil when
// no image store is configured.
func NewUploadController(images Uploader) *UploadController {
	return &UploadController{Images: images}
}

// UploadImage stores the multipart "image" part and returns {public_id, url}
func (uc *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	if uc.Images == nil {
		response.Fail(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}
	folder, ok := uploadFolders[r.URL.Query().Get("folder")]
	if !ok {
		response.Error(w, r, services.Validation("Invalid upload folder"))
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, r, services.Validation("Request body too large"))
			return
		}
		response.Error(w, r, services.Validation("Expected a multipart form"))
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		response.Error(w, r, services.Validation("image is required"))
		return
	}
	defer file.Close()

	image, err := uc.Images.Upload(r.Context(), folder, file)
	if errors.Is(err, media.ErrUnsupportedType) {
		response.Error(w, r, services.Validation("Only JPEG, PNG, GIF and WebP images are accepted"))
		return
	}
	if err != nil {
		response.Error(w, r, services.Internal(err))
		return
	}
	response.Created(w, response.Fields{"image": image})
}
