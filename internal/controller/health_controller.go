package controller

import (
	"studybot_backend/internal/repository"
	"studybot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	CatalogRepo *repository.CatalogRepository
}

func NewHealthController(catalogRepo *repository.CatalogRepository) *HealthController {
	return &HealthController{CatalogRepo: catalogRepo}
}

func (c *HealthController) HealthCheck(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"catalog_items": c.CatalogRepo.Count(),
		},
	})
}
