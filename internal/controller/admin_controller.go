package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"studybot_backend/internal/model"
	"studybot_backend/internal/service"
	"studybot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	CatalogService *service.CatalogService
	ProfileService *service.ProfileService
	DigestService  *service.DigestService
	BackupService  *service.BackupService
}

func NewAdminController(catalogService *service.CatalogService, profileService *service.ProfileService, digestService *service.DigestService, backupService *service.BackupService) *AdminController {
	return &AdminController{
		CatalogService: catalogService,
		ProfileService: profileService,
		DigestService:  digestService,
		BackupService:  backupService,
	}
}

// IngestItems accepts a JSON array of item records, or a single record
// object for convenience. A payload that fails to parse at all ingests
// nothing; individual bad records are skipped and reported back.
func (c *AdminController) IngestItems(ctx *gin.Context) {
	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var records []model.ItemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		var single model.ItemRecord
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			util.BadRequest(ctx, fmt.Sprintf("failed to parse payload: %v", err))
			return
		}
		records = []model.ItemRecord{single}
	}

	applied, rejected, err := c.CatalogService.Ingest(records)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{
		"applied":  applied,
		"rejected": rejected,
	})
}

func (c *AdminController) DeleteItem(ctx *gin.Context) {
	err := c.CatalogService.Delete(ctx.Param("id"))
	if err == util.ErrItemNotFound {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}

type BroadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

// Broadcast pushes a message to every daily subscriber.
func (c *AdminController) Broadcast(ctx *gin.Context) {
	var req BroadcastRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	sent, err := c.ProfileService.Broadcast(ctx.Request.Context(), req.Message)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sent": sent})
}

// RunDigest triggers the daily digest outside its schedule.
func (c *AdminController) RunDigest(ctx *gin.Context) {
	sent, err := c.DigestService.RunOnce(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sent": sent})
}

// Backup snapshots both data documents to object storage.
func (c *AdminController) Backup(ctx *gin.Context) {
	objects, err := c.BackupService.Run(ctx.Request.Context())
	if err == util.ErrBackupDisabled {
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"objects": objects})
}
