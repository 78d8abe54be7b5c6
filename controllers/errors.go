package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

// respondServiceError maps service error kinds to HTTP status codes.
// Unexpected errors are logged and reported without their details.
func respondServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondMessage(c, http.StatusInternalServerError, "internal server error")
		return
	}

	switch svcErr.Kind {
	case services.KindValidation:
		utils.RespondMessage(c, http.StatusBadRequest, svcErr.Message)
	case services.KindNotFound:
		utils.RespondMessage(c, http.StatusNotFound, svcErr.Message)
	case services.KindConflict:
		utils.RespondMessage(c, http.StatusConflict, svcErr.Message)
	case services.KindExternal:
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, svcErr)
		utils.RespondMessage(c, http.StatusBadGateway, svcErr.Message)
	default:
		utils.RespondMessage(c, http.StatusInternalServerError, svcErr.Message)
	}
}

// parseID reads a positive numeric path parameter. It writes the 400 response
// itself when the parameter is malformed.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondMessage(c, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}
