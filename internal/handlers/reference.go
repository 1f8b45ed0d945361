// internal/handlers/reference.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/opencustoms/trade-portal/internal/services"
	"github.com/opencustoms/trade-portal/internal/utils"
)

type ReferenceHandler struct {
	referenceService *services.ReferenceService
}

func NewReferenceHandler(referenceService *services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{
		referenceService: referenceService,
	}
}

// GET /reference/application-types
func (h *ReferenceHandler) ApplicationTypes(c *gin.Context) {
	types, err := h.referenceService.ApplicationTypes(c.Request.Context(), sessionContext(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"applicationTypes": types})
}

// GET /reference/districts
func (h *ReferenceHandler) Districts(c *gin.Context) {
	districts, err := h.referenceService.Districts(c.Request.Context(), sessionContext(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"districts": districts})
}

// GET /reference/districts/names
func (h *ReferenceHandler) DistrictNames(c *gin.Context) {
	names, err := h.referenceService.DistrictNames(c.Request.Context(), sessionContext(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"districtNames": names})
}

// GET /reference/units-of-measure
func (h *ReferenceHandler) UnitsOfMeasure(c *gin.Context) {
	uoms, err := h.referenceService.UnitsOfMeasure(c.Request.Context(), sessionContext(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"unitsOfMeasure": uoms})
}

// GET /reference/attachment-types
func (h *ReferenceHandler) AttachmentTypes(c *gin.Context) {
	if c.Query("required") == "true" {
		types, err := h.referenceService.RequiredAttachmentTypes(c.Request.Context(), sessionContext(c))
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{"attachmentTypes": types})
		return
	}

	types, err := h.referenceService.AttachmentTypes(c.Request.Context(), sessionContext(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"attachmentTypes": types})
}
