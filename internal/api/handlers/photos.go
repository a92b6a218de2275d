package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/gatehouse/internal/storage"
)

type PhotoHandler struct {
	minio *storage.MinIOStore
}

func NewPhotoHandler(minio *storage.MinIOStore) *PhotoHandler {
	return &PhotoHandler{minio: minio}
}

// Get proxies a subject's enrollment photo out of object storage, addressed
// by terminal PIN. ?thumb=1 serves the 80x80 variant the live feed uses.
func (h *PhotoHandler) Get(c *gin.Context) {
	pin := c.Param("pin")
	if pin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing pin"})
		return
	}

	key := storage.PersonPhotoKey(pin)
	if c.Query("thumb") == "1" {
		key = storage.PersonThumbKey(pin)
	}

	data, err := h.minio.GetObject(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}
