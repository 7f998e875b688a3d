package file

import (
	"github.com/gin-gonic/gin"

	"github.com/medisched/scheduler-api/pkg/httputil"
	"github.com/medisched/scheduler-api/pkg/storage"
)

type Handler struct {
	uploader storage.Uploader
}

func NewHandler(uploader storage.Uploader) *Handler {
	return &Handler{uploader: uploader}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		files.POST("/upload-url", h.GenerateUploadURL)
	}
}

type uploadURLRequest struct {
	ContentType string `json:"content_type"`
}

func (h *Handler) GenerateUploadURL(c *gin.Context) {
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "application/octet-stream"
	}

	target, err := h.uploader.GenerateUploadURL(c.Request.Context(), req.ContentType)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, target)
}
