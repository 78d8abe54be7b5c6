package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/hub"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

type TableController struct {
	Tables *services.TableService
	Hub    *hub.Hub
}

func NewTableController(tables *services.TableService, h *hub.Hub) *TableController {
	return &TableController{Tables: tables, Hub: h}
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", gin.H{"count": len(tables), "tables": tables})
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	table, err := tc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table details", gin.H{"table": table})
}

// CreateTable -> add a new dining table
func (tc *TableController) CreateTable(c *gin.Context) {
	var req services.CreateTableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("New table created: %s (capacity=%d)", table.TableNumber, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", gin.H{"table": table})
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateTableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	tc.Hub.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, "Table updated successfully", gin.H{"table": table})
}

// UpdateTableStatus -> admin override of table occupancy
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.SetTableStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("Table %d status changed to %s", table.ID, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", gin.H{"table": table})
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := tc.Tables.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Table %d deleted", id)
	utils.RespondJSON(c, http.StatusOK, "Table deleted successfully", nil)
}
