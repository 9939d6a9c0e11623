// Package router mounts the handler groups on the gin engine.
package router

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar is anything that can add its routes to a gin group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router separates the versioned API, which runs behind the session and
// security middleware, from the unversioned pages and probes at the root.
type Router struct {
	engine  *gin.Engine
	version string
	apiMW   []gin.HandlerFunc
	api     []RouteRegistrar
	public  []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIVersion replaces the default "v1" path segment.
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.version = version }
}

// WithAPIMiddleware appends handlers run before every API route.
func WithAPIMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.apiMW = append(r.apiMW, mw...) }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues an API group.
func (r *Router) Register(g RouteRegistrar) *Router {
	r.api = append(r.api, g)
	return r
}

// RegisterPublic queues a group mounted at the site root.
func (r *Router) RegisterPublic(g RouteRegistrar) *Router {
	r.public = append(r.public, g)
	return r
}

// Setup mounts everything queued so far.
func (r *Router) Setup() {
	api := r.engine.Group(r.APIPrefix(), r.apiMW...)
	for _, g := range r.api {
		g.RegisterRoutes(api)
	}
	root := &r.engine.RouterGroup
	for _, g := range r.public {
		g.RegisterRoutes(root)
	}
}

func (r *Router) APIPrefix() string {
	return "/api/" + r.version
}

// DomainGroup collects the routes of one resource before they are mounted.
type DomainGroup struct {
	name   string
	prefix string
	mw     []gin.HandlerFunc
	routes []route
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (g *DomainGroup) Name() string { return g.name }

// Use adds middleware for every route of the group.
func (g *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	g.mw = append(g.mw, compact(mw)...)
	return g
}

// Handle adds a route. Nil handlers are skipped, so optional middleware such
// as a disabled rate limit can be passed unconditionally.
func (g *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	g.routes = append(g.routes, route{method: method, path: path, handlers: compact(handlers)})
	return g
}

func (g *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.Handle(http.MethodGet, path, handlers...)
}

func (g *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.Handle(http.MethodPost, path, handlers...)
}

func (g *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.Handle(http.MethodPut, path, handlers...)
}

func (g *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.Handle(http.MethodPatch, path, handlers...)
}

func (g *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.Handle(http.MethodDelete, path, handlers...)
}

func (g *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(g.prefix, g.mw...)
	for _, rt := range g.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
}

func compact(handlers []gin.HandlerFunc) []gin.HandlerFunc {
	return slices.DeleteFunc(slices.Clone(handlers), func(h gin.HandlerFunc) bool { return h == nil })
}
