package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/pr-insights-service/internal/service"
	"github.com/maxviazov/pr-insights-service/pkg/response"
)

type PullRequestHandler struct {
	svc service.PullRequestService
}

func NewPullRequestHandler(svc service.PullRequestService) *PullRequestHandler {
	return &PullRequestHandler{svc: svc}
}

func (h *PullRequestHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/prs")
	{
		g.GET("/list", h.list)
		g.GET("/search", h.search)
		g.GET("/contributors/search", h.searchContributors)
		g.GET("/contributors/new", h.newContributors)
	}
	r.GET("/users/:username/prs", h.byContributor)
}

func (h *PullRequestHandler) list(c *gin.Context) {
	var p service.PageParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.WriteError(c, service.InvalidQuery(err))
		return
	}
	page, err := h.svc.ListPullRequests(c.Request.Context(), p)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, page)
}

func (h *PullRequestHandler) byContributor(c *gin.Context) {
	var p service.PageParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.WriteError(c, service.InvalidQuery(err))
		return
	}
	page, err := h.svc.ListByContributor(c.Request.Context(), c.Param("username"), p)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, page)
}

func (h *PullRequestHandler) search(c *gin.Context) {
	var p service.SearchParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.WriteError(c, service.InvalidQuery(err))
		return
	}
	page, err := h.svc.SearchPullRequests(c.Request.Context(), p)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, page)
}

func (h *PullRequestHandler) searchContributors(c *gin.Context) {
	var p service.SearchParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.WriteError(c, service.InvalidQuery(err))
		return
	}
	page, err := h.svc.SearchContributors(c.Request.Context(), p)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, page)
}

func (h *PullRequestHandler) newContributors(c *gin.Context) {
	var p service.SearchParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.WriteError(c, service.InvalidQuery(err))
		return
	}
	page, err := h.svc.NewContributors(c.Request.Context(), p)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, page)
}
