package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"orderdesk/internal/dashboard"
	"orderdesk/internal/domain"
	"orderdesk/internal/listview"
	"orderdesk/internal/validation"
)

// registerScreen exposes list, create, update and delete for one screen.
func registerScreen[T, In any](api *gin.RouterGroup, path string, h *handlers, pick func(*dashboard.Workspace) *dashboard.Manager[T, In]) {
	api.GET(path, func(c *gin.Context) {
		m := pick(workspaceFrom(c))
		q, err := parseQuery(c, m.FilterKeys())
		if err != nil {
			h.writeError(c, err)
			return
		}
		snap, err := m.Apply(c.Request.Context(), q)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	})

	api.POST(path, func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		out, err := pick(workspaceFrom(c)).Create(c.Request.Context(), in)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	})

	api.PUT(path+"/:id", func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		out, err := pick(workspaceFrom(c)).Update(c.Request.Context(), pathID(c), in)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	api.DELETE(path+"/:id", func(c *gin.Context) {
		out, err := pick(workspaceFrom(c)).Delete(c.Request.Context(), pathID(c))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
}

func pathID(c *gin.Context) domain.ID {
	return domain.ID(strings.TrimSpace(c.Param("id")))
}

// parseQuery reads q, dir, page, size, refresh and the screen's filters.
// Pages are 0-based.
func parseQuery(c *gin.Context, filterKeys []string) (dashboard.Query, error) {
	values := c.Request.URL.Query()
	var q dashboard.Query

	if values.Has("q") {
		s := values.Get("q")
		q.Search = &s
	}
	if values.Has("dir") {
		d := listview.ParseDirection(values.Get("dir"))
		q.Direction = &d
	}
	for _, p := range []struct {
		name string
		dst  **int
		min  int
	}{
		{name: "page", dst: &q.Page, min: 0},
		{name: "size", dst: &q.PageSize, min: 1},
	} {
		if !values.Has(p.name) {
			continue
		}
		n, err := strconv.Atoi(values.Get(p.name))
		if err != nil || n < p.min {
			return dashboard.Query{}, validation.Field(p.name, "must be a whole number of at least "+strconv.Itoa(p.min))
		}
		*p.dst = &n
	}
	if values.Has("refresh") {
		q.Refresh, _ = strconv.ParseBool(values.Get("refresh"))
	}
	for _, key := range filterKeys {
		if values.Has(key) {
			if q.Filters == nil {
				q.Filters = map[string]string{}
			}
			q.Filters[key] = strings.TrimSpace(values.Get(key))
		}
	}
	return q, nil
}
