// internal/handlers/session.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/opencustoms/trade-portal/internal/client"
	"github.com/opencustoms/trade-portal/internal/draft"
	"github.com/opencustoms/trade-portal/internal/models"
	"github.com/opencustoms/trade-portal/internal/services"
	"github.com/opencustoms/trade-portal/internal/upload"
	"github.com/opencustoms/trade-portal/internal/utils"
)

type SessionHandler struct {
	sessionService     *services.SessionService
	applicationService *services.ApplicationService
}

func NewSessionHandler(sessionService *services.SessionService, applicationService *services.ApplicationService) *SessionHandler {
	return &SessionHandler{
		sessionService:     sessionService,
		applicationService: applicationService,
	}
}

func sessionContext(c *gin.Context) client.SessionContext {
	token, _ := utils.GetTokenFromContext(c)
	tin, _ := utils.GetTinFromContext(c)
	return client.SessionContext{Token: token, Tin: tin}
}

// sessionView is the snapshot handed to the UI on open and on every read.
func sessionView(sess *services.WizardSession) gin.H {
	return gin.H{
		"id":            sess.ID,
		"flow":          sess.Kind,
		"step":          sess.Step(),
		"status":        sess.Status(),
		"applicationId": sess.AppID(),
		"data":          sess.Store.Snapshot(),
	}
}

type openSessionRequest struct {
	Flow          string `json:"flow" validate:"required,oneof=aeo_licence duty_waiver company_profile"`
	ApplicationID *int   `json:"applicationId"`
}

// POST /sessions
func (h *SessionHandler) Open(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	kind, ok := models.ParseFlowKind(req.Flow)
	if !ok {
		utils.BadRequestResponse(c, "Unknown application flow", req.Flow)
		return
	}

	sess, err := h.sessionService.Open(c.Request.Context(), sessionContext(c), kind, userID, req.ApplicationID)
	if err != nil {
		if errors.Is(err, services.ErrNotEditable) {
			utils.ConflictResponse(c, err.Error())
			return
		}
		respondUpstreamError(c, err)
		return
	}

	utils.CreatedResponse(c, sessionView(sess))
}

// GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, sessionView(sess))
}

// DELETE /sessions/:id
func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.sessionService.Close(c.Param("id")); err != nil {
		utils.NotFoundResponse(c, "Session")
		return
	}
	utils.SuccessResponse(c, gin.H{"closed": true})
}

// PUT /sessions/:id/details
func (h *SessionHandler) UpdateDetails(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var fields models.Record
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	sess.Store.MergeDetails(fields)
	utils.SuccessResponse(c, gin.H{"details": sess.Store.Details()})
}

// PUT /sessions/:id/singletons/:name
func (h *SessionHandler) SetSingleton(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var rec models.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	name := c.Param("name")
	sess.Store.SetSingleton(name, rec)
	utils.SuccessResponse(c, gin.H{name: sess.Store.Singleton(name)})
}

// POST /sessions/:id/records/:list
func (h *SessionHandler) AddRecord(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	// An empty body means "use the list's default template".
	var template models.Record
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&template); err != nil {
			utils.BadRequestResponse(c, "Invalid request body", err.Error())
			return
		}
	}

	row, err := sess.Store.AddRecord(c.Param("list"), template)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.CreatedResponse(c, gin.H{"record": row})
}

// DELETE /sessions/:id/records/:list/:localId
func (h *SessionHandler) RemoveRecord(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := sess.Store.RemoveRecord(c.Param("list"), c.Param("localId")); err != nil {
		if errors.Is(err, draft.ErrRowNotFound) {
			utils.NotFoundResponse(c, "Record")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.SuccessResponse(c, gin.H{"records": sess.Store.Records(c.Param("list"))})
}

type updateFieldRequest struct {
	Field string      `json:"field" validate:"required"`
	Value interface{} `json:"value"`
}

// PUT /sessions/:id/records/:list/:localId
func (h *SessionHandler) UpdateField(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := sess.Store.UpdateField(c.Param("list"), c.Param("localId"), req.Field, req.Value); err != nil {
		if errors.Is(err, draft.ErrRowNotFound) {
			utils.NotFoundResponse(c, "Record")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.SuccessResponse(c, gin.H{"records": sess.Store.Records(c.Param("list"))})
}

// POST /sessions/:id/next
func (h *SessionHandler) Next(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, sess.Next(c.Request.Context()))
}

// POST /sessions/:id/back
func (h *SessionHandler) Back(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, gin.H{"step": sess.Back()})
}

// POST /sessions/:id/attachments/:localId/upload
func (h *SessionHandler) UploadAttachment(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "File is required", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read file", err.Error())
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.sessionService.UploadAttachment(c.Request.Context(), sess, c.Param("localId"), fileHeader.Filename, contentType, content)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrInvalidFileType), errors.Is(err, upload.ErrFileTooLarge):
			utils.BadRequestResponse(c, err.Error(), nil)
		case errors.Is(err, upload.ErrUploadInFlight):
			utils.ConflictResponse(c, err.Error())
		case errors.Is(err, draft.ErrRowNotFound):
			utils.NotFoundResponse(c, "Attachment record")
		default:
			respondUpstreamError(c, err)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"upload": result})
}

// GET /sessions/:id/uploads
func (h *SessionHandler) Uploads(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, gin.H{"uploads": sess.Uploads.Snapshot()})
}

// DELETE /sessions/:id/uploads/:name
func (h *SessionHandler) DismissUpload(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	if !sess.Uploads.Dismiss(c.Param("name")) {
		utils.ConflictResponse(c, "upload is not dismissible")
		return
	}
	utils.SuccessResponse(c, gin.H{"dismissed": true})
}

type submitRequest struct {
	Status string `json:"status" validate:"required,oneof=draft submitted"`
}

// POST /sessions/:id/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	id, err := h.applicationService.Submit(c.Request.Context(), sessionContext(c), sess, models.ApplicationStatus(req.Status))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"applicationId": id,
		"status":        sess.Status(),
	})
}

// POST /sessions/:id/submit-review
func (h *SessionHandler) SubmitForReview(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := h.applicationService.SubmitForReview(c.Request.Context(), sessionContext(c), sess); err != nil {
		respondUpstreamError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"applicationId": sess.AppID(),
		"status":        sess.Status(),
	})
}

func (h *SessionHandler) lookup(c *gin.Context) (*services.WizardSession, bool) {
	sess, err := h.sessionService.Get(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, "Session")
		return nil, false
	}
	return sess, true
}

// respondUpstreamError preserves upstream status codes and messages so the
// UI can show the server's own wording instead of a generic failure.
func respondUpstreamError(c *gin.Context, err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		utils.ErrorResponse(c, apiErr.StatusCode, "UPSTREAM_ERROR", apiErr.Message, nil)
		return
	}
	utils.BadRequestResponse(c, err.Error(), nil)
}
