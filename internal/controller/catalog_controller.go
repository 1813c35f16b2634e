package controller

import (
	"strconv"

	"studybot_backend/internal/model"
	"studybot_backend/internal/service"
	"studybot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

func (c *CatalogController) ListClasses(ctx *gin.Context) {
	util.Success(ctx, c.CatalogService.ListClasses())
}

func (c *CatalogController) ListSubjects(ctx *gin.Context) {
	class := ctx.Param("class")
	if !model.ClassSupported(class) {
		util.BadRequest(ctx, util.ErrUnsupportedClass.Error())
		return
	}
	util.Success(ctx, c.CatalogService.ListSubjects(class))
}

func (c *CatalogController) ListCategories(ctx *gin.Context) {
	class := ctx.Param("class")
	if !model.ClassSupported(class) {
		util.BadRequest(ctx, util.ErrUnsupportedClass.Error())
		return
	}
	util.Success(ctx, c.CatalogService.ListCategories(class, ctx.Param("subject")))
}

// ListItems handles GET /api/items?class=&subject=&category=&lang=
func (c *CatalogController) ListItems(ctx *gin.Context) {
	class := ctx.Query("class")
	subject := ctx.Query("subject")
	category := ctx.Query("category")
	if class == "" || subject == "" || category == "" {
		util.BadRequest(ctx, "class, subject and category parameters are required")
		return
	}
	util.Success(ctx, c.CatalogService.ListItems(class, subject, category, ctx.Query("lang")))
}

func (c *CatalogController) Latest(ctx *gin.Context) {
	util.Success(ctx, c.CatalogService.Latest(limitParam(ctx, 10)))
}

func (c *CatalogController) MostViewed(ctx *gin.Context) {
	util.Success(ctx, c.CatalogService.MostViewed(limitParam(ctx, 10)))
}

// OpenItem returns the item and counts the view. The optional user query
// parameter identifies who gets the engagement point.
func (c *CatalogController) OpenItem(ctx *gin.Context) {
	item, err := c.CatalogService.OpenItem(ctx.Param("id"), ctx.Query("user"))
	if err == util.ErrItemNotFound {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

func (c *CatalogController) MarkDownloaded(ctx *gin.Context) {
	item, err := c.CatalogService.MarkDownloaded(ctx.Param("id"), ctx.Query("user"))
	if err == util.ErrItemNotFound {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// Search handles GET /api/search?q=&lang=&user=
func (c *CatalogController) Search(ctx *gin.Context) {
	q := ctx.Query("q")
	if q == "" {
		util.BadRequest(ctx, "q parameter is required")
		return
	}
	results, err := c.CatalogService.Search(q, ctx.Query("lang"), ctx.Query("user"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// SmartSearch handles GET /api/search/smart?q=class=12+subject=physics+...
func (c *CatalogController) SmartSearch(ctx *gin.Context) {
	q := ctx.Query("q")
	if q == "" {
		util.BadRequest(ctx, "q parameter is required")
		return
	}
	params := service.ParseSmartQuery(q)
	results, err := c.CatalogService.StructuredSearch(params, ctx.Query("user"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

func limitParam(ctx *gin.Context, fallback int) int {
	raw := ctx.Query("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
