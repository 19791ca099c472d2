// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"heritagepk/internal/cache"
	"heritagepk/internal/iconcache"
	"heritagepk/internal/layout"
	"heritagepk/internal/models"
	"heritagepk/internal/storage"
	"heritagepk/internal/store"
)

// Public serves the visitor-facing site. Rendered pages go through the
// full-page Valkey cache; admin saves invalidate the relevant keys.
type Public struct {
	settings      *store.SiteSettingStore
	templates     *store.LayoutTemplateStore
	sectionTypes  *store.SectionTypeStore
	categories    *store.CategoryStore
	iconCache     *iconcache.Cache
	storageClient *storage.Client
	pageCache     *cache.PageCache
}

// NewPublic creates a new Public handler group. storageClient may be nil
// if S3 is not configured; hero images are then omitted.
func NewPublic(settings *store.SiteSettingStore, templates *store.LayoutTemplateStore, sectionTypes *store.SectionTypeStore, categories *store.CategoryStore, iconCache *iconcache.Cache, storageClient *storage.Client, pageCache *cache.PageCache) *Public {
	return &Public{
		settings:      settings,
		templates:     templates,
		sectionTypes:  sectionTypes,
		categories:    categories,
		iconCache:     iconCache,
		storageClient: storageClient,
		pageCache:     pageCache,
	}
}

// homeSection is one rendered section of the homepage layout: the
// archetype slug plus the inline style derived from its settings.
type homeSection struct {
	Slug  string
	Name  string
	Style template.CSS
}

// homeCategory is a taxonomy entry with its resolved icon SVG.
type homeCategory struct {
	Name string
	Slug string
	Icon template.HTML
}

type homeData struct {
	HeroTitle    string
	HeroSubtitle string
	HeroImageURL string
	Sections     []homeSection
	Categories   []homeCategory
}

var homeTmpl = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{if .HeroTitle}}{{.HeroTitle}}{{else}}Heritage PK{{end}}</title>
  <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-white text-gray-900">
<header class="relative">
  {{if .HeroImageURL}}<img src="{{.HeroImageURL}}" alt="" class="h-96 w-full object-cover">{{end}}
  <div class="{{if .HeroImageURL}}absolute inset-0 flex flex-col items-center justify-center bg-black/40 text-white{{else}}py-24 text-center{{end}}">
    <h1 class="text-4xl font-bold">{{if .HeroTitle}}{{.HeroTitle}}{{else}}Heritage PK{{end}}</h1>
    {{if .HeroSubtitle}}<p class="mt-2 text-lg">{{.HeroSubtitle}}</p>{{end}}
  </div>
</header>
{{if .Categories}}
<nav class="border-b">
  <div class="mx-auto max-w-5xl flex flex-wrap gap-6 px-4 py-3 text-sm">
    {{range .Categories}}
    <a href="/categories/{{.Slug}}" class="flex items-center gap-1 hover:underline">
      {{if .Icon}}<span class="h-4 w-4 inline-block">{{.Icon}}</span>{{end}}{{.Name}}
    </a>
    {{end}}
  </div>
</nav>
{{end}}
<main>
  {{range .Sections}}
  <section class="layout-{{.Slug}}" style="{{.Style}}">
    <div class="text-center text-sm text-gray-400 py-4">{{.Name}}</div>
  </section>
  {{end}}
</main>
</body>
</html>`))

// Homepage renders the site homepage from the saved hero settings and the
// selected layout template, serving from the page cache when possible.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, ok := p.pageCache.Get(ctx, cache.HomepageKey()); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	settings, err := p.settings.All(ctx)
	if err != nil {
		slog.Error("load site settings failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := homeData{
		HeroTitle:    settings.Get(store.SettingHomeHeroTitle, ""),
		HeroSubtitle: settings.Get(store.SettingHomeHeroSubtitle, ""),
	}
	if key := settings.Get(store.SettingHomeHeroImageKey, ""); key != "" && p.storageClient != nil {
		data.HeroImageURL = p.storageClient.FileURL(key)
	}

	data.Sections = p.resolveSections(ctx, settings.Get(store.SettingHomeTemplateID, ""))
	data.Categories = p.resolveCategories(ctx)

	var buf bytes.Buffer
	if err := homeTmpl.Execute(&buf, data); err != nil {
		slog.Error("homepage render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rendered := buf.Bytes()
	p.pageCache.Set(ctx, cache.HomepageKey(), rendered)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(rendered)
}

// resolveSections loads the chosen layout template and maps each of its
// sections to an inline style built from the archetype's current
// settings. Disabled sections are skipped.
func (p *Public) resolveSections(ctx context.Context, templateID string) []homeSection {
	if templateID == "" {
		return nil
	}
	id, err := uuid.Parse(templateID)
	if err != nil {
		slog.Warn("bad home template id", "value", templateID)
		return nil
	}

	tpl, err := p.templates.Get(ctx, id)
	if err != nil || tpl == nil {
		if err != nil {
			slog.Error("home template lookup failed", "error", err)
		}
		return nil
	}

	types, err := p.sectionTypes.List(ctx)
	if err != nil {
		slog.Error("list section types failed", "error", err)
		return nil
	}
	byID := make(map[uuid.UUID]models.SectionType, len(types))
	for _, st := range types {
		byID[st.ID] = st
	}

	var sections []homeSection
	for _, sec := range tpl.Sections {
		st, ok := byID[sec.SectionTypeID]
		if !ok || !st.Enabled {
			continue
		}
		sections = append(sections, homeSection{
			Slug:  st.Slug,
			Name:  st.Name,
			Style: sectionStyle(st.Config),
		})
	}
	return sections
}

// resolveCategories returns the top-level taxonomy with icons from the
// read-through icon cache.
func (p *Public) resolveCategories(ctx context.Context) []homeCategory {
	tree, err := p.categories.Tree(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		return nil
	}

	var out []homeCategory
	for _, cat := range tree {
		hc := homeCategory{Name: cat.Name, Slug: cat.Slug}
		if cat.IconName != nil {
			if svg, found, err := p.iconCache.Get(ctx, *cat.IconName); err == nil && found {
				hc.Icon = template.HTML(svg)
			}
		}
		out = append(out, hc)
	}
	return out
}

// sectionStyle converts archetype settings into an inline CSS string.
func sectionStyle(s layout.Settings) template.CSS {
	bg := "#ffffff"
	switch s.Background {
	case layout.BackgroundLightGray:
		bg = "#f3f4f6"
	case layout.BackgroundTransparent:
		bg = "transparent"
	}
	style := fmt.Sprintf("padding:%dpx 0;margin:%dpx 0;background:%s;column-gap:%dpx;", s.PaddingY, s.MarginY, bg, s.Gutter)
	if s.MaxWidth > 0 {
		style += fmt.Sprintf("max-width:%dpx;margin-left:auto;margin-right:auto;", s.MaxWidth)
	}
	return template.CSS(style)
}

// Health reports liveness for the load balancer.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
