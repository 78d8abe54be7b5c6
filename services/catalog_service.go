package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/digital-menu/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService manages categories and menu items.
type CatalogService struct {
	db    *gorm.DB
	blobs BlobStore
}

func NewCatalogService(db *gorm.DB, blobs BlobStore) *CatalogService {
	return &CatalogService{db: db, blobs: blobs}
}

type CategoryInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

type UpdateCategoryInput struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
}

type OptionInput struct {
	Name          string           `json:"name"`
	PriceAddition *decimal.Decimal `json:"price_addition"`
}

type GroupInput struct {
	Name    string        `json:"name"`
	Options []OptionInput `json:"options"`
}

type MenuItemInput struct {
	Name                string           `json:"name"`
	Description         string           `json:"description"`
	Price               *decimal.Decimal `json:"price"`
	CategoryID          uint             `json:"category_id"`
	IsAvailable         *bool            `json:"is_available"`
	CustomizationGroups []GroupInput     `json:"customization_groups"`
}

type UpdateMenuItemInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uint            `json:"category_id"`
	IsAvailable *bool            `json:"is_available"`
	// CustomizationGroups replaces every group and option when present. An
	// empty list removes them all.
	CustomizationGroups *[]GroupInput `json:"customization_groups"`
}

// ---- categories ----

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&categories).Error
	return categories, err
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return findCategory(s.db.WithContext(ctx), id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, Validationf("category name is required")
	}
	db := s.db.WithContext(ctx)
	if err := ensureCategoryNameFree(db, name, 0); err != nil {
		return nil, err
	}

	category := models.Category{
		Name:         name,
		Description:  in.Description,
		DisplayOrder: in.DisplayOrder,
	}
	if err := db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in UpdateCategoryInput) (*models.Category, error) {
	db := s.db.WithContext(ctx)
	if _, err := findCategory(db, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, Validationf("category name cannot be empty")
		}
		if err := ensureCategoryNameFree(db, name, id); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.DisplayOrder != nil {
		updates["display_order"] = *in.DisplayOrder
	}
	if err := db.Model(&models.Category{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return findCategory(db, id)
}

// SetCategoryThumbnail replaces the category thumbnail.
func (s *CatalogService) SetCategoryThumbnail(ctx context.Context, id uint, up *Upload) (*models.Category, error) {
	db := s.db.WithContext(ctx)
	category, err := findCategory(db, id)
	if err != nil {
		return nil, err
	}
	blob, err := uploadBlob(ctx, s.blobs, up)
	if err != nil {
		return nil, err
	}

	oldPublicID := category.ThumbnailPublicID
	if err := db.Model(&models.Category{}).Where("id = ?", id).Updates(map[string]interface{}{
		"thumbnail_url":       blob.URL,
		"thumbnail_public_id": blob.PublicID,
		"updated_at":          time.Now(),
	}).Error; err != nil {
		discardBlob(ctx, s.blobs, blob.PublicID)
		return nil, err
	}
	discardBlob(ctx, s.blobs, oldPublicID)
	return findCategory(db, id)
}

// DeleteCategory removes a category that has no menu items.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	category, err := findCategory(db, id)
	if err != nil {
		return err
	}

	var items int64
	if err := db.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&items).Error; err != nil {
		return err
	}
	if items > 0 {
		return Conflictf("category %s still has %d menu items", category.Name, items)
	}
	if err := db.Delete(&models.Category{}, id).Error; err != nil {
		return err
	}
	discardBlob(ctx, s.blobs, category.ThumbnailPublicID)
	return nil
}

// ---- menu items ----

// ListMenuItems lists menu items, optionally only those of one category.
func (s *CatalogService) ListMenuItems(ctx context.Context, categoryID *uint) ([]models.MenuItem, error) {
	q := s.db.WithContext(ctx).
		Preload("Category").
		Preload("CustomizationGroups.Options")
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var items []models.MenuItem
	err := q.Order("id ASC").Find(&items).Error
	return items, err
}

func (s *CatalogService) GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("CustomizationGroups.Options").
		First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("menu item %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateMenuItem creates the item with its customization groups and options in
// one transaction.
func (s *CatalogService) CreateMenuItem(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, Validationf("menu item name is required")
	}
	if in.Price == nil || !in.Price.IsPositive() {
		return nil, Validationf("price must be greater than zero")
	}
	if in.CategoryID == 0 {
		return nil, Validationf("category_id is required")
	}
	groups, err := buildGroups(in.CustomizationGroups)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if _, err := findCategory(db, in.CategoryID); err != nil {
		return nil, err
	}

	item := models.MenuItem{
		Name:        name,
		Description: in.Description,
		Price:       *in.Price,
		CategoryID:  in.CategoryID,
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
			return err
		}
		return insertGroups(tx, item.ID, groups)
	})
	if err != nil {
		return nil, err
	}
	return s.GetMenuItem(ctx, item.ID)
}

func (s *CatalogService) UpdateMenuItem(ctx context.Context, id uint, in UpdateMenuItemInput) (*models.MenuItem, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.GetMenuItem(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, Validationf("menu item name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return nil, Validationf("price must be greater than zero")
		}
		updates["price"] = *in.Price
	}
	if in.CategoryID != nil {
		if _, err := findCategory(db, *in.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *in.CategoryID
	}
	if in.IsAvailable != nil {
		updates["is_available"] = *in.IsAvailable
	}
	var groups []models.CustomizationGroup
	if in.CustomizationGroups != nil {
		var err error
		if groups, err = buildGroups(*in.CustomizationGroups); err != nil {
			return nil, err
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.MenuItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if in.CustomizationGroups == nil {
			return nil
		}
		if err := deleteGroups(tx, id); err != nil {
			return err
		}
		return insertGroups(tx, id, groups)
	})
	if err != nil {
		return nil, err
	}
	return s.GetMenuItem(ctx, id)
}

// SetMenuItemImage replaces the menu item image.
func (s *CatalogService) SetMenuItemImage(ctx context.Context, id uint, up *Upload) (*models.MenuItem, error) {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	blob, err := uploadBlob(ctx, s.blobs, up)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.MenuItem{}).Where("id = ?", id).Updates(map[string]interface{}{
		"image_url":       blob.URL,
		"image_public_id": blob.PublicID,
		"updated_at":      time.Now(),
	}).Error; err != nil {
		discardBlob(ctx, s.blobs, blob.PublicID)
		return nil, err
	}
	discardBlob(ctx, s.blobs, item.ImagePublicID)
	return s.GetMenuItem(ctx, id)
}

// DeleteMenuItem removes a menu item that no order refers to. Items that were
// ordered should be marked unavailable instead.
func (s *CatalogService) DeleteMenuItem(ctx context.Context, id uint) error {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ordered int64
		if err := tx.Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&ordered).Error; err != nil {
			return err
		}
		if ordered > 0 {
			return Conflictf("menu item %s has been ordered; mark it unavailable instead", item.Name)
		}

		if err := deleteGroups(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.MenuItem{}, id).Error
	})
	if err != nil {
		return err
	}
	discardBlob(ctx, s.blobs, item.ImagePublicID)
	return nil
}

func insertGroups(tx *gorm.DB, menuItemID uint, groups []models.CustomizationGroup) error {
	for _, g := range groups {
		g.MenuItemID = menuItemID
		options := g.Options
		g.Options = nil
		if err := tx.Create(&g).Error; err != nil {
			return err
		}
		if len(options) == 0 {
			continue
		}
		for i := range options {
			options[i].GroupID = g.ID
		}
		if err := tx.Create(&options).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteGroups removes options first, then groups.
func deleteGroups(tx *gorm.DB, menuItemID uint) error {
	groupIDs := tx.Model(&models.CustomizationGroup{}).Select("id").Where("menu_item_id = ?", menuItemID)
	if err := tx.Where("group_id IN (?)", groupIDs).Delete(&models.CustomizationOption{}).Error; err != nil {
		return err
	}
	return tx.Where("menu_item_id = ?", menuItemID).Delete(&models.CustomizationGroup{}).Error
}

func buildGroups(in []GroupInput) ([]models.CustomizationGroup, error) {
	groups := make([]models.CustomizationGroup, 0, len(in))
	for _, g := range in {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return nil, Validationf("customization group name is required")
		}
		group := models.CustomizationGroup{Name: name}
		for _, o := range g.Options {
			optName := strings.TrimSpace(o.Name)
			if optName == "" {
				return nil, Validationf("option name is required in group %s", name)
			}
			addition := decimal.Zero
			if o.PriceAddition != nil {
				if o.PriceAddition.IsNegative() {
					return nil, Validationf("price_addition cannot be negative for option %s", optName)
				}
				addition = *o.PriceAddition
			}
			group.Options = append(group.Options, models.CustomizationOption{Name: optName, PriceAddition: addition})
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func findCategory(db *gorm.DB, id uint) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("category %d not found", id)
		}
		return nil, err
	}
	return &category, nil
}

func ensureCategoryNameFree(db *gorm.DB, name string, exceptID uint) error {
	var count int64
	q := db.Model(&models.Category{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return Conflictf("category %s already exists", name)
	}
	return nil
}
