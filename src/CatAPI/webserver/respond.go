package webserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/OneOfOne/xxhash"
	"github.com/gin-gonic/gin"

	"github.com/stake-plus/spycat-agency/src/CatAPI/agency"
	"github.com/stake-plus/spycat-agency/src/logging"
)

// writeError maps service errors onto status codes. Rule violations of every
// kind are reported as 400; anything unexpected is logged and hidden.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var aerr *agency.Error
	msg := err.Error()
	if errors.As(err, &aerr) {
		msg = aerr.Message
	}
	switch {
	case errors.Is(err, agency.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": msg})
	case errors.Is(err, agency.ErrInvalidArgument), errors.Is(err, agency.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"err": msg})
	default:
		ctx := c.Request.Context()
		logging.FromContext(ctx, log).Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
	}
}

func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": fmt.Sprintf("invalid %s", name)})
		return 0, false
	}
	return id, true
}

// writeTagged writes v as JSON with a content hash ETag and answers 304 when
// the client already holds that representation.
func writeTagged(c *gin.Context, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	tag := fmt.Sprintf(`"%016x"`, xxhash.Checksum64(body))
	c.Header("ETag", tag)
	if etagMatches(c.GetHeader("If-None-Match"), tag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}
