// Package pages turns resolved theme views into page responses: a JSON page
// object for client-side visits and an HTML shell embedding the same object
// for first loads.
package pages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"multistore/internal/theme"

	"github.com/gofiber/fiber/v2"
)

// Protocol headers.
const (
	HeaderPartial  = "X-Inertia"
	HeaderVersion  = "X-Inertia-Version"
	HeaderLocation = "X-Inertia-Location"
)

// Page is the object handed to the client application.
type Page struct {
	Component string       `json:"component"`
	Props     theme.Props  `json:"props"`
	URL       string       `json:"url"`
	Version   string       `json:"version"`
	Theme     theme.Key    `json:"theme"`
	Layout    theme.Layout `json:"layout"`
}

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{if .Favicon}}<link rel="icon" href="{{.Favicon}}">{{end}}
<link rel="stylesheet" href="/build/app.css?v={{.Version}}">
<script src="/build/app.js?v={{.Version}}" defer></script>
</head>
<body>
<div id="app" data-page="{{.Data}}"></div>
</body>
</html>
`))

type shellData struct {
	Lang, Dir, Title, Favicon, Version, Data string
}

// Bridge renders storefront pages.
type Bridge struct {
	resolver *theme.Resolver
	version  string
}

// NewBridge creates a Bridge. version is the current client asset version.
func NewBridge(resolver *theme.Resolver, version string) *Bridge {
	return &Bridge{resolver: resolver, version: version}
}

// Version returns the asset version.
func (b *Bridge) Version() string { return b.version }

// Build resolves a page for the session's store theme. Page props override shared props.
func (b *Bridge) Build(sess Session, page theme.Page, props theme.Props, url string) Page {
	merged := sess.Shared.Props()
	for k, v := range props {
		merged[k] = v
	}
	themeKey := ""
	if sess.Store != nil {
		themeKey = sess.Store.Theme
	}
	view := b.resolver.Resolve(themeKey, page, merged)
	return Page{
		Component: view.Component,
		Props:     view.Props,
		URL:       url,
		Version:   b.version,
		Theme:     view.Theme,
		Layout:    view.Layout,
	}
}

// Render writes the page as JSON for partial visits and as the HTML shell otherwise.
func (b *Bridge) Render(c *fiber.Ctx, sess Session, page theme.Page, props theme.Props) error {
	p := b.Build(sess, page, props, c.OriginalURL())
	c.Set(fiber.HeaderVary, HeaderPartial)

	if c.Get(HeaderPartial) == "true" {
		c.Set(HeaderPartial, "true")
		return c.JSON(p)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode page %s: %w", p.Component, err)
	}
	data := shellData{
		Lang:    sess.Shared.Layout.Locale,
		Dir:     sess.Shared.Layout.Direction,
		Title:   sess.Shared.Store.Name,
		Favicon: sess.Shared.Store.FaviconURL,
		Version: b.version,
		Data:    string(raw),
	}
	var buf bytes.Buffer
	if err := shellTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render page shell: %w", err)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// VersionGuard answers stale partial GET visits with 409 and the URL to
// reload, so the client fetches fresh assets.
func (b *Bridge) VersionGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet && c.Get(HeaderPartial) == "true" {
			if v := c.Get(HeaderVersion); v != "" && v != b.version {
				c.Set(HeaderLocation, c.OriginalURL())
				return c.SendStatus(fiber.StatusConflict)
			}
		}
		return c.Next()
	}
}
