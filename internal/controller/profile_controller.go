package controller

import (
	"studybot_backend/internal/model"
	"studybot_backend/internal/service"
	"studybot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	ProfileService *service.ProfileService
}

func NewProfileController(profileService *service.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: profileService}
}

type SetLanguageRequest struct {
	Lang string `json:"lang" binding:"required,oneof=hi en"`
}

func (c *ProfileController) GetLanguage(ctx *gin.Context) {
	lang, err := c.ProfileService.GetLanguage(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"lang": lang})
}

func (c *ProfileController) SetLanguage(ctx *gin.Context) {
	var req SetLanguageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ProfileService.SetLanguage(ctx.Param("id"), model.UILanguage(req.Lang)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"lang": req.Lang})
}

func (c *ProfileController) ListBookmarks(ctx *gin.Context) {
	items, err := c.ProfileService.Bookmarks(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

func (c *ProfileController) AddBookmark(ctx *gin.Context) {
	err := c.ProfileService.AddBookmark(ctx.Param("id"), ctx.Param("itemId"))
	if err == util.ErrItemNotFound {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"item_id": ctx.Param("itemId")})
}

func (c *ProfileController) RemoveBookmark(ctx *gin.Context) {
	if err := c.ProfileService.RemoveBookmark(ctx.Param("id"), ctx.Param("itemId")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"item_id": ctx.Param("itemId")})
}

type SetDailyRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (c *ProfileController) SetDaily(ctx *gin.Context) {
	var req SetDailyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ProfileService.SetDaily(ctx.Param("id"), *req.Enabled); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"enabled": *req.Enabled})
}

func (c *ProfileController) GetPoints(ctx *gin.Context) {
	points, err := c.ProfileService.Points(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"points": points})
}

func (c *ProfileController) Leaderboard(ctx *gin.Context) {
	util.Success(ctx, c.ProfileService.Leaderboard(limitParam(ctx, 10)))
}
