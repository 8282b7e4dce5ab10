package handler

import (
	"github.com/crowdfund-api/internal/middleware"
	"github.com/crowdfund-api/internal/service"
	"github.com/crowdfund-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// ProjectHandler handles project API requests
type ProjectHandler struct {
	projectService *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// List returns every project
// GET /projects/
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, projects)
}

// Create creates a project owned by the caller
// POST /projects/
func (h *ProjectHandler) Create(c *gin.Context) {
	var in service.ProjectInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), middleware.CurrentUser(c), &in)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, project)
}

// Get returns one of the caller's projects
// GET /projects/:id/
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := parseID(c, "project")
	if err != nil {
		fail(c, err)
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, project)
}

// Update replaces one of the caller's projects
// PUT /projects/:id/
func (h *ProjectHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Patch partially updates one of the caller's projects
// PATCH /projects/:id/
func (h *ProjectHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *ProjectHandler) update(c *gin.Context, partial bool) {
	id, err := parseID(c, "project")
	if err != nil {
		fail(c, err)
		return
	}

	var in service.ProjectInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), middleware.CurrentUser(c), id, &in, partial)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, project)
}

// Delete removes one of the caller's projects
// DELETE /projects/:id/
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "project")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		fail(c, err)
		return
	}

	response.NoContent(c)
}

// Search returns projects starting or ending on a day
// GET /projects/search/?date=YYYY-MM-DD
func (h *ProjectHandler) Search(c *gin.Context) {
	projects, err := h.projectService.Search(c.Request.Context(), c.Query("date"))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, projects)
}

// MyProjects returns the caller's projects with a count
// GET /projects/my-projects/
func (h *ProjectHandler) MyProjects(c *gin.Context) {
	resp, err := h.projectService.MyProjects(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, resp)
}

// RegisterRoutes registers project routes
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	projects := rg.Group("/projects")
	projects.Use(authMiddleware)
	{
		projects.GET("/", h.List)
		projects.POST("/", h.Create)
		projects.GET("/search/", h.Search)
		projects.GET("/my-projects/", h.MyProjects)
		projects.GET("/:id/", h.Get)
		projects.PUT("/:id/", h.Update)
		projects.PATCH("/:id/", h.Patch)
		projects.DELETE("/:id/", h.Delete)
	}
}
