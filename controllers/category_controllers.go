package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

type CategoryController struct {
	Catalog *services.CatalogService
}

func NewCategoryController(catalog *services.CatalogService) *CategoryController {
	return &CategoryController{Catalog: catalog}
}

func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	categories, err := cc.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", gin.H{"count": len(categories), "categories": categories})
}

func (cc *CategoryController) GetCategoryByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	category, err := cc.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category details", gin.H{"category": category})
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	category, err := cc.Catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Category created: %s", category.Name)
	utils.RespondJSON(c, http.StatusCreated, "Category created successfully", gin.H{"category": category})
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	category, err := cc.Catalog.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated successfully", gin.H{"category": category})
}

// UploadThumbnail -> multipart "thumbnail" field
func (cc *CategoryController) UploadThumbnail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	upload, file, ok := readImage(c, "thumbnail")
	if !ok {
		return
	}
	defer file.Close()

	category, err := cc.Catalog.SetCategoryThumbnail(c.Request.Context(), id, upload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category thumbnail updated", gin.H{"category": category})
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := cc.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Category %d deleted", id)
	utils.RespondJSON(c, http.StatusOK, "Category deleted successfully", nil)
}
