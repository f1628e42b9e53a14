package handlers

import (
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter records the engine whose routes /api/routes lists.
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.StoreDriver})
}

type routeEntry struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

type routeGroup struct {
	Area   string       `json:"area"`
	Routes []routeEntry `json:"routes"`
}

// routeArea names the API area of path: the first segment under /api, or
// "system" for anything mounted outside it.
func routeArea(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/")
	if !ok {
		return "system"
	}
	area, _, _ := strings.Cut(rest, "/")
	switch area {
	case "health", "routes", "metrics", "":
		return "system"
	case "me":
		return "auth"
	}
	return area
}

// groupRoutes sorts routes into areas ordered by name, each listing paths
// then methods in lexical order.
func groupRoutes(routes gin.RoutesInfo) []routeGroup {
	byArea := map[string][]routeEntry{}
	for _, rt := range routes {
		area := routeArea(rt.Path)
		byArea[area] = append(byArea[area], routeEntry{Method: rt.Method, Path: rt.Path})
	}
	out := make([]routeGroup, 0, len(byArea))
	for area, entries := range byArea {
		slices.SortFunc(entries, func(a, b routeEntry) int {
			if c := strings.Compare(a.Path, b.Path); c != 0 {
				return c
			}
			return strings.Compare(a.Method, b.Method)
		})
		out = append(out, routeGroup{Area: area, Routes: entries})
	}
	slices.SortFunc(out, func(a, b routeGroup) int { return strings.Compare(a.Area, b.Area) })
	return out
}

// Routes GET /api/routes
func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		RespondError(c, http.StatusServiceUnavailable, "router not ready", nil)
		return
	}
	routes := r.Routes()
	c.JSON(http.StatusOK, gin.H{"areas": groupRoutes(routes), "count": len(routes)})
}
