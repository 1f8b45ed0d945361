// internal/handlers/agent.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/opencustoms/trade-portal/internal/client"
	"github.com/opencustoms/trade-portal/internal/models"
	"github.com/opencustoms/trade-portal/internal/utils"
)

type agentAPI interface {
	LookupAgent(ctx context.Context, sc client.SessionContext, agentCode string) (*models.AgentInfo, error)
}

type AgentHandler struct {
	api agentAPI
}

func NewAgentHandler(api agentAPI) *AgentHandler {
	return &AgentHandler{api: api}
}

type agentLookupRequest struct {
	AgentCode string `json:"agentCode" validate:"required,agent_code"`
}

// POST /agents/lookup
func (h *AgentHandler) Lookup(c *gin.Context) {
	var req agentLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	info, err := h.api.LookupAgent(c.Request.Context(), sessionContext(c), req.AgentCode)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"agent": info})
}
