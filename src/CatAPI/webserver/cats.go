package webserver

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/spycat-agency/src/CatAPI/agency"
	"github.com/stake-plus/spycat-agency/src/CatAPI/types"
)

type Cats struct {
	svc *agency.Service
	log *slog.Logger
}

func NewCats(svc *agency.Service, log *slog.Logger) Cats {
	return Cats{svc: svc, log: log}
}

func (h Cats) List(c *gin.Context) {
	cats, err := h.svc.ListCats(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if cats == nil {
		cats = []types.Cat{}
	}
	writeTagged(c, cats)
}

func (h Cats) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cat, err := h.svc.GetCat(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeTagged(c, cat)
}

func (h Cats) Create(c *gin.Context) {
	var req types.CatCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	cat, err := h.svc.CreateCat(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// UpdateSalary accepts only {"salary": n}; other fields are ignored.
func (h Cats) UpdateSalary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req types.CatUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	cat, err := h.svc.UpdateCatSalary(c.Request.Context(), id, *req.Salary)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h Cats) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCat(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
