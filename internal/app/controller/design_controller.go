package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
)

type DesignController struct {
	designService service.DesignService
	clock         func() time.Time
}

func NewDesignController(designService service.DesignService) *DesignController {
	return &DesignController{
		designService: designService,
		clock:         time.Now,
	}
}

type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

type CreateDesignRequest struct {
	Title   string `json:"title"`
	Notes   string `json:"notes"`
	Size    string `json:"size" binding:"required"`
	Framed  bool   `json:"framed"`
	FileKey string `json:"file_key" binding:"required"`
	Phone   string `json:"phone"`
}

// RequestUploadURL returns a presigned PUT URL for the artwork file
// POST /api/v1/designs/upload-url
func (ctrl *DesignController) RequestUploadURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UploadURLRequest
	if !bindJSON(c, &req) {
		return
	}

	upload, err := ctrl.designService.RequestUploadURL(c.Request.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		respondError(c, err, "create upload url")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": upload.UploadURL,
		"file_url":   upload.FileURL,
		"file_key":   upload.Key,
		"expires_at": upload.ExpiresAt,
	})
}

// CreateDesign registers an uploaded artwork and puts it in the cart
// POST /api/v1/designs
func (ctrl *DesignController) CreateDesign(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateDesignRequest
	if !bindJSON(c, &req) {
		return
	}

	design, cart, err := ctrl.designService.CreateDesign(userID, service.CreateDesignInput{
		Title:   req.Title,
		Notes:   req.Notes,
		Size:    req.Size,
		Framed:  req.Framed,
		FileKey: req.FileKey,
		Phone:   req.Phone,
	})
	if err != nil {
		respondError(c, err, "create design")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"design": design,
		"cart":   cartBody(cart, ctrl.clock()),
	})
}

// GET /api/v1/designs
func (ctrl *DesignController) ListDesigns(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	designs, err := ctrl.designService.GetUserDesigns(userID)
	if err != nil {
		respondError(c, err, "list designs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"designs": designs, "count": len(designs)})
}

// GET /api/v1/designs/:id
func (ctrl *DesignController) GetDesign(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	designID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	design, err := ctrl.designService.GetDesign(userID, designID)
	if err != nil {
		respondError(c, err, "get design")
		return
	}

	c.JSON(http.StatusOK, gin.H{"design": design})
}
