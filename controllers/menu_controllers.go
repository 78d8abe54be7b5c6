package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

type MenuController struct {
	Catalog *services.CatalogService
}

func NewMenuController(catalog *services.CatalogService) *MenuController {
	return &MenuController{Catalog: catalog}
}

// GetAllMenus -> optional ?category_id= filter
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondMessage(c, http.StatusBadRequest, "invalid category_id")
			return
		}
		cid := uint(id)
		categoryID = &cid
	}

	items, err := mc.Catalog.ListMenuItems(c.Request.Context(), categoryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", gin.H{"count": len(items), "menu_items": items})
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := mc.Catalog.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item details", gin.H{"menu_item": item})
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := mc.Catalog.CreateMenuItem(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Menu item created: %s", item.Name)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created successfully", gin.H{"menu_item": item})
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateMenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := mc.Catalog.UpdateMenuItem(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated successfully", gin.H{"menu_item": item})
}

// UploadImage -> multipart "image" field
func (mc *MenuController) UploadImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	upload, file, ok := readImage(c, "image")
	if !ok {
		return
	}
	defer file.Close()

	item, err := mc.Catalog.SetMenuItemImage(c.Request.Context(), id, upload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item image updated", gin.H{"menu_item": item})
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := mc.Catalog.DeleteMenuItem(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Menu item %d deleted", id)
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted successfully", nil)
}
