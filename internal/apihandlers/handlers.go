package apihandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"minbar/internal/app"
	"minbar/internal/models"
	"minbar/internal/store"
	"minbar/internal/tasks"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(app *app.App) *APIHandler {
	return &APIHandler{App: app}
}

// RegisterRoutes mounts every handler on the router.
func (h *APIHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.HealthHandler)

	r.POST("/content", h.CreateContentHandler)
	r.GET("/content/:id", h.GetContentHandler)
	r.GET("/content/:id/similar", h.SimilarContentHandler)
	r.GET("/search", h.SearchContentHandler)

	r.GET("/jobs/:id/candidates", h.SuggestedProfilesHandler)
	r.POST("/profiles/:id/interests", h.SeedInterestsHandler)

	r.GET("/moderation/reports", h.ListReportsHandler)
}

// CreateContentRequest represents the JSON body to submit new content.
type CreateContentRequest struct {
	ContentType string `json:"content_type"`
	AuthorID    string `json:"author_id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}

// CreateContentHandler persists a content item and enqueues it for
// enrichment. The response carries the stored row before any pipeline stage
// has touched it.
func (h *APIHandler) CreateContentHandler(c *gin.Context) {
	var req CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	contentType, err := parseContentType(req.ContentType)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	authorID, err := uuid.Parse(req.AuthorID)
	if err != nil {
		BadRequest(c, "Invalid author_id: must be a UUID")
		return
	}
	if req.Title == "" || req.Body == "" {
		BadRequest(c, "Missing required fields: title and body")
		return
	}

	content := &models.Content{
		ContentType: contentType,
		AuthorID:    authorID,
		Title:       req.Title,
		Body:        req.Body,
	}
	if err := h.App.ContentStore.CreateContent(c.Request.Context(), content); err != nil {
		if errors.Is(err, store.ErrForeignKeyViolation) {
			BadRequest(c, fmt.Sprintf("Author not found: %s", authorID))
			return
		}
		Internal(c, "Failed to create content: "+err.Error())
		return
	}

	msg := tasks.PipelineMessage{
		ContentID:   content.ID,
		AuthorID:    content.AuthorID,
		ContentType: content.ContentType,
		Title:       content.Title,
		Content:     content.Body,
	}
	if err := h.App.JobClient.EnqueueProcessContent(c.Request.Context(), msg); err != nil {
		// The row exists; the sweep will pick it up if the enqueue was lost.
		Internal(c, "Content stored but could not be queued for processing")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": contentResponse(content)})
}

// GetContentHandler handles GET requests for a single content item by ID.
func (h *APIHandler) GetContentHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	content, err := h.App.ContentStore.GetContent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("Content not found with ID: %s", id))
		} else {
			Internal(c, "Failed to retrieve content: "+err.Error())
		}
		return
	}

	tags, err := h.App.TagStore.GetContentTags(c.Request.Context(), id)
	if err != nil {
		tags = []*models.Tag{}
	}

	resp := contentResponse(content)
	resp["tags"] = tagResponses(tags)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// SearchContentHandler runs a semantic search over stored content of one
// type. The query text is embedded on the fly.
func (h *APIHandler) SearchContentHandler(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		BadRequest(c, "Missing required 'query' parameter")
		return
	}
	contentType, err := parseContentType(c.DefaultQuery("type", string(models.ContentTypePost)))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	results, err := h.App.MatchingService.SearchContent(c.Request.Context(), query, contentType)
	if err != nil {
		if errors.Is(err, models.ErrRemoteService) {
			ServiceUnavailable(c, "Embedding backend unavailable")
			return
		}
		Internal(c, "Semantic search failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": matchResponses(results)})
}

// SimilarContentHandler returns stored items of the same type closest to the
// given one. Items still waiting on their embedding yield a conflict.
func (h *APIHandler) SimilarContentHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	content, err := h.App.ContentStore.GetContent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("Content not found with ID: %s", id))
		} else {
			Internal(c, "Failed to retrieve content: "+err.Error())
		}
		return
	}

	results, err := h.App.MatchingService.SimilarContent(c.Request.Context(), content)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			Conflict(c, "Content has not been embedded yet")
			return
		}
		Internal(c, "Similarity lookup failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": matchResponses(results)})
}

// SuggestedProfilesHandler ranks candidate profiles for a job posting.
func (h *APIHandler) SuggestedProfilesHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	content, err := h.App.ContentStore.GetContent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("Job posting not found with ID: %s", id))
		} else {
			Internal(c, "Failed to retrieve job posting: "+err.Error())
		}
		return
	}
	if content.ContentType != models.ContentTypeJobPosting {
		BadRequest(c, fmt.Sprintf("Content %s is not a job posting", id))
		return
	}
	if content.Embedding == nil {
		Conflict(c, "Job posting has not been embedded yet")
		return
	}

	results, err := h.App.MatchingService.SuggestedProfiles(c.Request.Context(), content.ID, *content.Embedding)
	if err != nil {
		Internal(c, "Candidate ranking failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": matchResponses(results)})
}

// SeedInterestsRequest carries free-text interest names gathered at
// onboarding.
type SeedInterestsRequest struct {
	Interests []string `json:"interests"`
}

// SeedInterestsHandler queues the onboarding interest seeding for a profile.
func (h *APIHandler) SeedInterestsHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	var req SeedInterestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Interests) == 0 {
		BadRequest(c, "No interests provided")
		return
	}

	if _, err := h.App.ProfileStore.GetProfile(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("Profile not found with ID: %s", id))
		} else {
			Internal(c, "Failed to retrieve profile: "+err.Error())
		}
		return
	}

	if err := h.App.JobClient.EnqueueSeedInterests(c.Request.Context(), tasks.SeedInterestsMessage{
		ProfileID: id,
		RawTags:   req.Interests,
	}); err != nil {
		Internal(c, "Failed to queue interest seeding: "+err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// ListReportsHandler pages through moderation reports, newest first.
func (h *APIHandler) ListReportsHandler(c *gin.Context) {
	limit := 50
	offset := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		} else {
			BadRequest(c, "Invalid limit: "+l)
			return
		}
	}
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		} else {
			BadRequest(c, "Invalid offset: "+o)
			return
		}
	}

	reports, err := h.App.ModerationStore.ListReports(c.Request.Context(), limit, offset)
	if err != nil {
		Internal(c, "Failed to list reports: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reportResponses(reports)})
}

func (h *APIHandler) HealthHandler(c *gin.Context) {
	if err := h.App.ContentStore.Ping(c.Request.Context()); err != nil {
		ServiceUnavailable(c, "Database unreachable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid ID format: %s", idStr)
	}
	return id, nil
}

func parseContentType(raw string) (models.ContentType, error) {
	switch models.ContentType(raw) {
	case models.ContentTypePost:
		return models.ContentTypePost, nil
	case models.ContentTypeJobPosting:
		return models.ContentTypeJobPosting, nil
	default:
		return "", fmt.Errorf("invalid content_type: %q (expected %q or %q)",
			raw, models.ContentTypePost, models.ContentTypeJobPosting)
	}
}

func contentResponse(content *models.Content) gin.H {
	resp := gin.H{
		"id":           content.ID,
		"content_type": content.ContentType,
		"author_id":    content.AuthorID,
		"title":        content.Title,
		"body":         content.Body,
		"is_processed": content.IsProcessed,
		"is_tagged":    content.IsTagged,
		"created_at":   content.CreatedAt,
		"updated_at":   content.UpdatedAt,
	}
	if content.Language != nil {
		resp["language"] = *content.Language
	}
	return resp
}

func tagResponses(tags []*models.Tag) []gin.H {
	resp := make([]gin.H, len(tags))
	for i, t := range tags {
		resp[i] = gin.H{
			"id":           t.ID,
			"english_name": t.EnglishName,
			"arabic_name":  t.ArabicName,
			"description":  t.Description,
		}
	}
	return resp
}

func matchResponses(results []models.MatchResult) []gin.H {
	resp := make([]gin.H, len(results))
	for i, r := range results {
		resp[i] = gin.H{
			"id":       r.ID,
			"distance": r.Distance,
		}
	}
	return resp
}

func reportResponses(reports []*models.ModerationReport) []gin.H {
	resp := make([]gin.H, len(reports))
	for i, r := range reports {
		resp[i] = gin.H{
			"id":            r.ID,
			"content_type":  r.ContentType,
			"content_id":    r.ContentID,
			"author_id":     r.AuthorID,
			"scores":        r.Scores,
			"is_negative":   r.IsNegative,
			"reason":        r.Reason,
			"is_resolved":   r.IsResolved,
			"reporter_kind": r.ReporterKind,
			"created_at":    r.CreatedAt,
		}
	}
	return resp
}
