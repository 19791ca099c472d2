// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Heritage PK site.
// Handlers are grouped by concern (admin, public, auth, api) and receive
// their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"heritagepk/internal/cache"
	"heritagepk/internal/iconcache"
	"heritagepk/internal/layout"
	"heritagepk/internal/models"
	"heritagepk/internal/render"
	"heritagepk/internal/session"
	"heritagepk/internal/slug"
	"heritagepk/internal/storage"
	"heritagepk/internal/store"
)

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer      *render.Renderer
	sessions      *session.Store
	sectionTypes  *store.SectionTypeStore
	templates     *store.LayoutTemplateStore
	categories    *store.CategoryStore
	icons         *store.IconStore
	iconCache     *iconcache.Cache
	sites         *store.SiteStore
	users         *store.UserStore
	mediaStore    *store.MediaStore
	settings      *store.SiteSettingStore
	storageClient *storage.Client
	pageCache     *cache.PageCache
}

// NewAdmin creates a new Admin handler group with the given dependencies.
// storageClient may be nil if S3 is not configured; media upload and the
// hero image editor degrade gracefully.
func NewAdmin(renderer *render.Renderer, sessions *session.Store, sectionTypes *store.SectionTypeStore, templates *store.LayoutTemplateStore, categories *store.CategoryStore, icons *store.IconStore, iconCache *iconcache.Cache, sites *store.SiteStore, users *store.UserStore, mediaStore *store.MediaStore, settings *store.SiteSettingStore, storageClient *storage.Client, pageCache *cache.PageCache) *Admin {
	return &Admin{
		renderer:      renderer,
		sessions:      sessions,
		sectionTypes:  sectionTypes,
		templates:     templates,
		categories:    categories,
		icons:         icons,
		iconCache:     iconCache,
		sites:         sites,
		users:         users,
		mediaStore:    mediaStore,
		settings:      settings,
		storageClient: storageClient,
		pageCache:     pageCache,
	}
}

// Dashboard renders the admin dashboard page with real stats.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	siteCount, _ := a.sites.Count(r.Context())
	templateCount := 0
	if tpls, err := a.templates.List(r.Context()); err == nil {
		templateCount = len(tpls)
	}
	mediaCount, _ := a.mediaStore.Count(r.Context())
	userCount, _ := a.users.Count(r.Context())

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"siteCount":     siteCount,
			"templateCount": templateCount,
			"mediaCount":    mediaCount,
			"userCount":     userCount,
		},
	})
}

// --- Layout sections ---

// SectionsPage renders the archetype settings editor. Seeding runs first
// so a fresh database always shows all five rows.
func (a *Admin) SectionsPage(w http.ResponseWriter, r *http.Request) {
	a.renderSections(w, r, nil)
}

func (a *Admin) renderSections(w http.ResponseWriter, r *http.Request, flashes []render.Flash) {
	ctx := r.Context()
	if err := a.sectionTypes.SeedDefaults(ctx); err != nil {
		slog.Error("section type seed failed", "error", err)
	}
	sections, err := a.sectionTypes.List(ctx)
	if err != nil {
		slog.Error("list section types failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "sections", &render.PageData{
		Title:   "Layout Sections",
		Section: "sections",
		Flashes: flashes,
		Data:    map[string]any{"sections": sections},
	})
}

// SectionSave updates one archetype's settings and enabled flag. The form
// carries the revision the editor loaded; a stale revision is rejected so
// concurrent edits never silently overwrite each other.
func (a *Admin) SectionSave(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	settings := layout.Settings{
		PaddingY:   formInt(r, "padding_y"),
		MarginY:    formInt(r, "margin_y"),
		MaxWidth:   formInt(r, "max_width"),
		Gutter:     formInt(r, "gutter"),
		Background: layout.Background(r.FormValue("background")),
	}
	if err := settings.Validate(); err != nil {
		a.renderSections(w, r, []render.Flash{{Type: "error", Message: "Invalid settings: " + err.Error()}})
		return
	}

	version, err := strconv.Atoi(r.FormValue("version"))
	if err != nil {
		http.Error(w, "Invalid version", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	st, err := a.sectionTypes.UpdateSettingsChecked(ctx, id, settings, r.FormValue("enabled") == "1", version)
	if errors.Is(err, store.ErrVersionConflict) {
		a.renderSections(w, r, []render.Flash{{
			Type:    "error",
			Message: "This section was changed by someone else. Review the current values and save again.",
		}})
		return
	}
	if err != nil {
		slog.Error("section settings update failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if st == nil {
		a.renderSections(w, r, []render.Flash{{Type: "error", Message: "This section no longer exists."}})
		return
	}

	// Section settings affect every rendered page.
	a.pageCache.InvalidateAll(ctx)

	a.renderSections(w, r, []render.Flash{{Type: "success", Message: "Section saved."}})
}

// --- Layout templates ---

// TemplatesPage renders the template list and the builder form.
func (a *Admin) TemplatesPage(w http.ResponseWriter, r *http.Request) {
	a.renderTemplates(w, r, nil, nil)
}

// TemplateEditPage renders the builder pre-filled with an existing template.
func (a *Admin) TemplateEditPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	tpl, err := a.templates.Get(r.Context(), id)
	if err != nil {
		slog.Error("template lookup failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if tpl == nil {
		http.NotFound(w, r)
		return
	}
	a.renderTemplates(w, r, tpl, nil)
}

func (a *Admin) renderTemplates(w http.ResponseWriter, r *http.Request, editing *models.LayoutTemplate, flashes []render.Flash) {
	ctx := r.Context()
	if err := a.sectionTypes.SeedDefaults(ctx); err != nil {
		slog.Error("section type seed failed", "error", err)
	}
	sectionTypes, err := a.sectionTypes.List(ctx)
	if err != nil {
		slog.Error("list section types failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	tpls, err := a.templates.List(ctx)
	if err != nil {
		slog.Error("list templates failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// The Alpine builder keeps the chosen section type IDs as a JSON array.
	selected := []string{}
	if editing != nil {
		for _, sec := range editing.Sections {
			selected = append(selected, sec.SectionTypeID.String())
		}
	}
	selectedJSON, _ := json.Marshal(selected)

	firstSectionID := ""
	if len(sectionTypes) > 0 {
		firstSectionID = sectionTypes[0].ID.String()
	}

	a.renderer.Page(w, r, "templates", &render.PageData{
		Title:   "Layout Templates",
		Section: "templates",
		Flashes: flashes,
		Data: map[string]any{
			"templates":      tpls,
			"sectionTypes":   sectionTypes,
			"editing":        editing,
			"selectedJSON":   string(selectedJSON),
			"firstSectionID": firstSectionID,
		},
	})
}

// TemplateSave creates or updates a template from the builder form. The
// form posts one section_type_id value per chosen section, in order.
func (a *Admin) TemplateSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if msg := validateTemplateName(name); msg != "" {
		a.renderTemplates(w, r, nil, []render.Flash{{Type: "error", Message: msg}})
		return
	}

	tpl := &models.LayoutTemplate{
		Name: name,
		Slug: strings.TrimSpace(r.FormValue("slug")),
	}
	if tpl.Slug == "" {
		tpl.Slug = slug.Generate(name)
	}
	if idStr := r.FormValue("id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}
		tpl.ID = id
	}

	for i, idStr := range r.PostForm["section_type_id"] {
		sid, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "Invalid section type", http.StatusBadRequest)
			return
		}
		tpl.Sections = append(tpl.Sections, models.TemplateSection{
			SectionTypeID: sid,
			SortOrder:     i,
		})
	}

	ctx := r.Context()
	if _, err := a.templates.Upsert(ctx, tpl); err != nil {
		slog.Error("template save failed", "error", err, "slug", tpl.Slug)
		a.renderTemplates(w, r, nil, []render.Flash{{Type: "error", Message: "Failed to save template."}})
		return
	}

	a.pageCache.InvalidateAll(ctx)
	http.Redirect(w, r, "/admin/layouts/templates", http.StatusSeeOther)
}

// TemplateDelete removes a template and its section links.
func (a *Admin) TemplateDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := a.templates.Delete(ctx, id); err != nil {
		slog.Error("template delete failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(ctx)
	a.renderTemplates(w, r, nil, []render.Flash{{Type: "success", Message: "Template deleted."}})
}

// --- Categories ---

// CategoriesPage renders the taxonomy tree and the create form.
func (a *Admin) CategoriesPage(w http.ResponseWriter, r *http.Request) {
	a.renderCategories(w, r, nil)
}

func (a *Admin) renderCategories(w http.ResponseWriter, r *http.Request, flashes []render.Flash) {
	ctx := r.Context()
	cats, err := a.categories.FlatTree(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	icons, err := a.icons.List(ctx)
	if err != nil {
		slog.Error("list icons failed", "error", err)
	}

	a.renderer.Page(w, r, "categories", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Flashes: flashes,
		Data: map[string]any{
			"categories": cats,
			"icons":      icons,
		},
	})
}

// CategoryCreate adds a taxonomy node from the form.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if msg := validateCategoryName(name); msg != "" {
		a.renderCategories(w, r, []render.Flash{{Type: "error", Message: msg}})
		return
	}

	cat := &models.Category{
		Name: name,
		Slug: slug.Generate(name),
	}
	if pid := r.FormValue("parent_id"); pid != "" {
		parentID, err := uuid.Parse(pid)
		if err != nil {
			http.Error(w, "Invalid parent", http.StatusBadRequest)
			return
		}
		cat.ParentID = &parentID
	}
	if iconName := r.FormValue("icon_name"); iconName != "" {
		cat.IconName = &iconName
	}

	if _, err := a.categories.Create(r.Context(), cat); err != nil {
		slog.Error("category create failed", "error", err, "slug", cat.Slug)
		a.renderCategories(w, r, []render.Flash{{Type: "error", Message: "Failed to create category."}})
		return
	}

	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryDelete removes a category. Sites referencing it fall back to
// uncategorized; child categories are promoted to its parent.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := a.categories.Delete(r.Context(), id); err != nil {
		slog.Error("category delete failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderCategories(w, r, []render.Flash{{Type: "success", Message: "Category deleted."}})
}

// --- Icon library ---

// IconsPage renders the icon list, optionally filtered by ?q=.
func (a *Admin) IconsPage(w http.ResponseWriter, r *http.Request) {
	a.renderIcons(w, r, nil)
}

func (a *Admin) renderIcons(w http.ResponseWriter, r *http.Request, flashes []render.Flash) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		icons []models.Icon
		err   error
	)
	if query != "" {
		icons, err = a.icons.Search(ctx, query)
	} else {
		icons, err = a.icons.List(ctx)
	}
	if err != nil {
		slog.Error("list icons failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "icons", &render.PageData{
		Title:   "Icon Library",
		Section: "icons",
		Flashes: flashes,
		Data: map[string]any{
			"icons": icons,
			"query": query,
		},
	})
}

// IconUpsert creates or replaces an icon by name and drops any cached copy.
func (a *Admin) IconUpsert(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	svg := strings.TrimSpace(r.FormValue("svg"))
	if msg := validateIcon(name, svg); msg != "" {
		a.renderIcons(w, r, []render.Flash{{Type: "error", Message: msg}})
		return
	}

	ctx := r.Context()
	err := a.icons.Upsert(ctx, &models.Icon{
		Name:     name,
		SVG:      svg,
		Keywords: strings.TrimSpace(r.FormValue("keywords")),
	})
	if err != nil {
		slog.Error("icon upsert failed", "error", err, "name", name)
		a.renderIcons(w, r, []render.Flash{{Type: "error", Message: "Failed to save icon."}})
		return
	}

	// The cache may hold the previous SVG under this name.
	a.iconCache.Invalidate(ctx, name)
	a.pageCache.InvalidateAll(ctx)

	http.Redirect(w, r, "/admin/icons", http.StatusSeeOther)
}

// IconDelete removes an icon from the library and the cache.
func (a *Admin) IconDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ctx := r.Context()

	if err := a.icons.Delete(ctx, name); err != nil {
		slog.Error("icon delete failed", "error", err, "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.iconCache.Invalidate(ctx, name)
	a.renderIcons(w, r, []render.Flash{{Type: "success", Message: "Icon deleted."}})
}

// --- Home page editor ---

// HomePage renders the home page editor form.
func (a *Admin) HomePage(w http.ResponseWriter, r *http.Request) {
	a.renderHome(w, r, nil)
}

func (a *Admin) renderHome(w http.ResponseWriter, r *http.Request, flashes []render.Flash) {
	ctx := r.Context()
	settings, err := a.settings.All(ctx)
	if err != nil {
		slog.Error("load site settings failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	tpls, err := a.templates.List(ctx)
	if err != nil {
		slog.Error("list templates failed", "error", err)
	}

	heroImageURL := ""
	if key := settings.Get(store.SettingHomeHeroImageKey, ""); key != "" && a.storageClient != nil {
		heroImageURL = a.storageClient.FileURL(key)
	}

	a.renderer.Page(w, r, "home", &render.PageData{
		Title:   "Home Page",
		Section: "home",
		Flashes: flashes,
		Data: map[string]any{
			"heroTitle":    settings.Get(store.SettingHomeHeroTitle, ""),
			"heroSubtitle": settings.Get(store.SettingHomeHeroSubtitle, ""),
			"heroImageURL": heroImageURL,
			"templates":    tpls,
			"templateID":   settings.Get(store.SettingHomeTemplateID, ""),
		},
	})
}

// HomeSave persists the hero settings and, when a new hero image was
// attached, pushes it through the compression pipeline to S3.
func (a *Admin) HomeSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		a.renderHome(w, r, []render.Flash{{Type: "error", Message: "Upload too large."}})
		return
	}

	updates := map[string]string{
		store.SettingHomeHeroTitle:    strings.TrimSpace(r.FormValue("hero_title")),
		store.SettingHomeHeroSubtitle: strings.TrimSpace(r.FormValue("hero_subtitle")),
	}

	if tid := r.FormValue("template_id"); tid != "" {
		if _, err := uuid.Parse(tid); err != nil {
			http.Error(w, "Invalid template", http.StatusBadRequest)
			return
		}
		updates[store.SettingHomeTemplateID] = tid
	} else {
		updates[store.SettingHomeTemplateID] = ""
	}

	if key, msg := a.uploadHeroImage(r); msg != "" {
		a.renderHome(w, r, []render.Flash{{Type: "error", Message: msg}})
		return
	} else if key != "" {
		updates[store.SettingHomeHeroImageKey] = key
	}

	if err := a.settings.SetMany(ctx, updates); err != nil {
		slog.Error("save site settings failed", "error", err)
		a.renderHome(w, r, []render.Flash{{Type: "error", Message: "Failed to save settings."}})
		return
	}

	a.pageCache.InvalidateHomepage(ctx)
	a.renderHome(w, r, []render.Flash{{Type: "success", Message: "Home page saved."}})
}

// formInt parses an integer form field, treating blank or garbage as 0.
func formInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.FormValue(name))
	return n
}
