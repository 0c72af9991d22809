package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/models"
	"github.com/Adham-ELshahed/Memar/internal/services"
	"github.com/Adham-ELshahed/Memar/internal/storage"
)

// ObjectHandler handles uploads and downloads of stored objects. The server
// never proxies object bytes; it hands out short-lived pre-signed URLs.
type ObjectHandler struct {
	cfg        *config.Config
	storage    storage.IObjectStorage
	aclService services.IObjectACLService
	orgService services.IOrganizationService
	scheduler  services.ITaskScheduler
}

// NewObjectHandler creates a new ObjectHandler.
func NewObjectHandler(cfg *config.Config, objectStorage storage.IObjectStorage, aclService services.IObjectACLService, orgService services.IOrganizationService, scheduler services.ITaskScheduler) *ObjectHandler {
	return &ObjectHandler{
		cfg:        cfg,
		storage:    objectStorage,
		aclService: aclService,
		orgService: orgService,
		scheduler:  scheduler,
	}
}

// CreateUploadURL handles POST /api/objects/upload. The response carries a
// pre-signed PUT URL; the client uploads directly to object storage. The
// object defaults to private until a policy says otherwise.
func (h *ObjectHandler) CreateUploadURL(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"contentType"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}
	if body.ContentType == "" {
		body.ContentType = "application/octet-stream"
	}

	url, objectKey, err := h.storage.GeneratePresignedPutURL(c.Request.Context(), authCtx.UserID, body.Filename, body.ContentType)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}

	if err := h.aclService.SetPolicy(c.Request.Context(), objectKey, authCtx.UserID, models.ObjectVisibilityPrivate); err != nil {
		respondServiceError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploadUrl": url,
		"objectKey": objectKey,
	})
}

// SetLogo handles PUT /api/upload/logo. The caller names an object it already
// uploaded; the object becomes public, the organization points at it, and a
// thumbnail render is queued.
func (h *ObjectHandler) SetLogo(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body struct {
		ObjectKey string `json:"objectKey" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	org, err := h.orgService.FindByUserID(c.Request.Context(), authCtx.UserID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "You must have an organization to set a logo"})
		return
	}

	canRead, err := h.aclService.CanRead(c.Request.Context(), body.ObjectKey, authCtx.UserID)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	if !canRead {
		c.JSON(http.StatusForbidden, gin.H{"message": "You do not own this object"})
		return
	}

	if err := h.aclService.SetPolicy(c.Request.Context(), body.ObjectKey, authCtx.UserID, models.ObjectVisibilityPublic); err != nil {
		respondServiceError(c, err, "")
		return
	}

	updated, err := h.orgService.Update(c.Request.Context(), org.ID, authCtx.UserID, map[string]interface{}{
		"logo_url": "/objects/" + body.ObjectKey,
	})
	if err != nil {
		respondServiceError(c, err, "Organization not found")
		return
	}

	if err := h.scheduler.EnqueueLogoThumbnail(org.ID, body.ObjectKey); err != nil {
		// The full-size logo still works; the thumbnail just never lands.
		_ = c.Error(err)
	}

	c.JSON(http.StatusOK, updated)
}

// DownloadObject handles GET /objects/*objectPath. After the ACL check the
// client is redirected to a short-lived pre-signed URL.
func (h *ObjectHandler) DownloadObject(c *gin.Context) {
	objectKey := strings.TrimPrefix(c.Param("objectPath"), "/")
	if objectKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Object key required"})
		return
	}

	// Anonymous callers have an empty user id; public objects still pass.
	authCtx, _ := middleware.GetAuthContext(c)

	canRead, err := h.aclService.CanRead(c.Request.Context(), objectKey, authCtx.UserID)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	if !canRead {
		c.JSON(http.StatusNotFound, gin.H{"message": "Object not found"})
		return
	}

	url, err := h.storage.GeneratePresignedGetURL(c.Request.Context(), objectKey)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.Redirect(http.StatusFound, url)
}
