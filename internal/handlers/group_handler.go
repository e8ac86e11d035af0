package handlers

import (
	"net/http"

	"github.com/classmark/testing-service/internal/services"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	BaseHandler
	groupService services.GroupService
}

func NewGroupHandler(groupService services.GroupService, logger utils.Logger) *GroupHandler {
	return &GroupHandler{
		BaseHandler:  NewBaseHandler(logger),
		groupService: groupService,
	}
}

// ListGroups returns all groups ordered by name
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// CreateGroup creates a group; duplicate names conflict
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req services.CreateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating group", "name", req.Name)

	group, err := h.groupService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Group created successfully",
		"group_id": group.ID,
	})
}
