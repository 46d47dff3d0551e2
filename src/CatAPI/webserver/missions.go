package webserver

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/spycat-agency/src/CatAPI/agency"
	"github.com/stake-plus/spycat-agency/src/CatAPI/types"
)

type Missions struct {
	svc *agency.Service
	log *slog.Logger
}

func NewMissions(svc *agency.Service, log *slog.Logger) Missions {
	return Missions{svc: svc, log: log}
}

func (h Missions) List(c *gin.Context) {
	missions, err := h.svc.ListMissions(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if missions == nil {
		missions = []types.Mission{}
	}
	writeTagged(c, missions)
}

func (h Missions) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.GetMission(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeTagged(c, m)
}

func (h Missions) Create(c *gin.Context) {
	var req types.MissionCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	m, err := h.svc.CreateMission(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// Assign handles POST /missions/:id/assign?cat_id=N.
func (h Missions) Assign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	catID, err := strconv.ParseUint(c.Query("cat_id"), 10, 64)
	if err != nil || catID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "cat_id query parameter is required"})
		return
	}

	m, err := h.svc.AssignCat(c.Request.Context(), id, catID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h Missions) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteMission(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateTarget handles PATCH /targets/:id. Fields left out of the body are
// not touched.
func (h Missions) UpdateTarget(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req types.TargetUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	t, err := h.svc.UpdateTarget(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
