package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

type QRController struct {
	QR *services.QRCodeService
}

func NewQRController(qr *services.QRCodeService) *QRController {
	return &QRController{QR: qr}
}

func (qc *QRController) GetActiveQR(c *gin.Context) {
	qr, err := qc.QR.Active(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active QR code", gin.H{"qrCode": qr})
}

// UploadQR -> multipart "qrImage" field; replaces the active QR code
func (qc *QRController) UploadQR(c *gin.Context) {
	upload, file, ok := readImage(c, "qrImage")
	if !ok {
		return
	}
	defer file.Close()

	qr, err := qc.QR.Upload(c.Request.Context(), upload.Filename, upload.Reader)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("QR code %d uploaded", qr.ID)
	utils.RespondJSON(c, http.StatusCreated, "QR code uploaded successfully", gin.H{"qrCode": qr})
}

// GenerateQR -> render a QR code for the customer menu
func (qc *QRController) GenerateQR(c *gin.Context) {
	qr, err := qc.QR.Generate(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("QR code %d generated", qr.ID)
	utils.RespondJSON(c, http.StatusCreated, "QR code generated successfully", gin.H{"qrCode": qr})
}
