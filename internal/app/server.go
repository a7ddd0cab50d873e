package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Server wires handlers, templates, and storage together.
type Server struct {
	registry  *Registry
	store     Store
	selector  *Selector
	renderer  *Renderer
	sessions  *Sessions
	metrics   *Metrics
	logger    *slog.Logger
	templates *template.Template
	mux       *http.ServeMux
	handler   http.Handler
}

// NewServer constructs an HTTP handler serving every registered content type.
func NewServer(store Store, registry *Registry, sessions *Sessions, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.New("base").ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}

	srv := &Server{
		registry:  registry,
		store:     store,
		selector:  NewSelector(registry, store, store, logger),
		renderer:  NewRenderer(),
		sessions:  sessions,
		metrics:   NewMetrics(),
		logger:    logger,
		templates: tmpl,
		mux:       http.NewServeMux(),
	}

	srv.mux.HandleFunc("GET /{$}", srv.handleIndex)
	srv.mux.HandleFunc("GET /healthz", srv.handleHealth)
	srv.mux.Handle("GET /metrics", srv.metrics.Handler())

	for _, pt := range registry.Types() {
		srv.mux.HandleFunc("GET /"+pt.Prefix, redirectTo(pt.ArchivePath()))
		srv.mux.HandleFunc("GET /"+pt.Prefix+"/{$}", srv.archiveHandler(pt))
		srv.mux.HandleFunc("GET /"+pt.Prefix+"/{path...}", srv.itemHandler(pt))
	}

	srv.mux.HandleFunc("GET /admin/login", srv.handleLoginForm)
	srv.mux.HandleFunc("POST /admin/login", srv.handleLogin)
	srv.mux.HandleFunc("POST /admin/logout", srv.handleLogout)
	srv.mux.HandleFunc("GET /admin/{$}", requireAdmin(srv.handleDashboard))
	srv.mux.HandleFunc("GET /admin/types/{type}/homepage", requireAdmin(srv.handleHomepageForm))
	srv.mux.HandleFunc("POST /admin/types/{type}/homepage", requireAdmin(srv.handleHomepageSave))
	srv.mux.HandleFunc("GET /admin/types/{type}/items", requireAdmin(srv.handleItemList))
	srv.mux.HandleFunc("GET /admin/types/{type}/items/new", requireAdmin(srv.handleItemNew))
	srv.mux.HandleFunc("POST /admin/types/{type}/items", requireAdmin(srv.handleItemCreate))
	srv.mux.HandleFunc("GET /admin/items/{id}/edit", requireAdmin(srv.handleItemEdit))
	srv.mux.HandleFunc("POST /admin/items/{id}", requireAdmin(srv.handleItemUpdate))
	srv.mux.HandleFunc("POST /admin/items/{id}/delete", requireAdmin(srv.handleItemDelete))

	srv.handler = sessions.identify(logRequests(logger, srv.metrics, srv.mux))
	return srv, nil
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Selector exposes the homepage setting the server reads.
func (s *Server) Selector() *Selector {
	return s.selector
}

// Metrics exposes the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	}
}

// render executes a template into a buffer so failures still yield a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "render template", "template", name, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.ErrorContext(r.Context(), msg, "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

type pageData struct {
	View     PageView
	AdminBar *AdminBar
}

func (s *Server) archiveHandler(pt PostType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ref := s.selector.Homepage(ctx, pt)
		res := Resolve(ctx, s.store, pt, ref, s.logger)
		s.metrics.observeArchive(pt.Name, res)

		s.render(w, r, http.StatusOK, "page.gohtml", pageData{
			View:     s.renderer.Archive(pt, res),
			AdminBar: ArchiveAdminBar(AdminUser(ctx), pt, res),
		})
	}
}

func (s *Server) itemHandler(pt PostType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := AdminUser(ctx)
		it, err := s.findByPath(ctx, pt, r.PathValue("path"), user != "")
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			s.serverError(w, r, "lookup item", err)
			return
		}

		s.render(w, r, http.StatusOK, "page.gohtml", pageData{
			View:     s.renderer.Page(pt, it),
			AdminBar: ItemAdminBar(user, pt, it, r.URL.Path),
		})
	}
}

// findByPath walks slug segments from the root of pt. Items that are not
// published are only reachable when showHidden is set.
func (s *Server) findByPath(ctx context.Context, pt PostType, path string, showHidden bool) (Item, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return Item{}, ErrNotFound
	}
	if !pt.Hierarchical && len(segments) > 1 {
		return Item{}, ErrNotFound
	}

	parent := None()
	var it Item
	for _, seg := range segments {
		slug, err := NormalizeSlug(seg)
		if err != nil || slug != seg {
			return Item{}, ErrNotFound
		}
		it, err = s.store.ItemBySlug(ctx, pt.Name, parent, slug)
		if err != nil {
			return Item{}, err
		}
		if !it.Published() && !showHidden {
			return Item{}, ErrNotFound
		}
		parent = Some(it.ID)
	}
	return it, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.render(w, r, http.StatusOK, "index.gohtml", struct {
		Sections []sectionSummary
		AdminBar *AdminBar
	}{
		Sections: s.sectionSummaries(ctx),
		AdminBar: dashboardAdminBar(AdminUser(ctx)),
	})
}

func dashboardAdminBar(user string) *AdminBar {
	if user == "" {
		return nil
	}
	return &AdminBar{User: user, Links: []AdminLink{{Label: "Dashboard", Href: "/admin/"}}}
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "admin_login.gohtml", loginData{
		ReturnTo: localRedirect(r.URL.Query().Get("return_to"), "/admin/"),
	})
}

type loginData struct {
	User     string
	ReturnTo string
	Error    string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	user := r.PostFormValue("user")
	returnTo := localRedirect(r.PostFormValue("return_to"), "/admin/")

	token, err := s.sessions.Login(user, r.PostFormValue("password"))
	if err != nil {
		s.logger.InfoContext(r.Context(), "admin login rejected", "user", user)
		s.render(w, r, http.StatusUnauthorized, "admin_login.gohtml", loginData{
			User:     user,
			ReturnTo: returnTo,
			Error:    ErrBadCredentials.Error(),
		})
		return
	}
	http.SetCookie(w, s.sessions.Cookie(token))
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessions.ClearCookie())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.render(w, r, http.StatusOK, "admin_dashboard.gohtml", struct {
		Sections []sectionSummary
		AdminBar *AdminBar
	}{
		Sections: s.sectionSummaries(ctx),
		AdminBar: dashboardAdminBar(AdminUser(ctx)),
	})
}

// typeFromPath resolves the {type} wildcard, answering 404 itself.
func (s *Server) typeFromPath(w http.ResponseWriter, r *http.Request) (PostType, bool) {
	pt, err := s.registry.Lookup(r.PathValue("type"))
	if err != nil {
		http.NotFound(w, r)
		return PostType{}, false
	}
	return pt, true
}

type homepageFormData struct {
	Type      PostType
	Action    string
	Options   []Option
	Current   Ref
	CurrentID ItemID
	Stale     bool
	Updated   bool
	Error     string
	AdminBar  *AdminBar
}

func (s *Server) homepageForm(ctx context.Context, pt PostType) (homepageFormData, error) {
	data := homepageFormData{
		Type:     pt,
		Action:   homepageSettingsPath(pt),
		AdminBar: dashboardAdminBar(AdminUser(ctx)),
	}

	var res Resolution
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data.Current = s.selector.Homepage(gctx, pt)
		res = Resolve(gctx, s.store, pt, data.Current, s.logger)
		return nil
	})
	g.Go(func() error {
		opts, err := s.selector.Options(gctx, pt)
		data.Options = opts
		return err
	})
	if err := g.Wait(); err != nil {
		return data, err
	}

	if it, ok := res.Item(); ok {
		data.CurrentID = it.ID
	}
	data.Stale = data.Current.IsSet() && !res.Found()
	return data, nil
}

func (s *Server) handleHomepageForm(w http.ResponseWriter, r *http.Request) {
	pt, ok := s.typeFromPath(w, r)
	if !ok {
		return
	}
	data, err := s.homepageForm(r.Context(), pt)
	if err != nil {
		s.serverError(w, r, "load homepage options", err)
		return
	}
	data.Updated = r.URL.Query().Get("updated") == "1"
	s.render(w, r, http.StatusOK, "admin_homepage.gohtml", data)
}

func (s *Server) handleHomepageSave(w http.ResponseWriter, r *http.Request) {
	pt, ok := s.typeFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	_, err := s.selector.SetHomepage(ctx, pt.Name, r.PostFormValue("homepage"))
	if errors.Is(err, ErrInvalidRef) {
		data, loadErr := s.homepageForm(ctx, pt)
		if loadErr != nil {
			s.serverError(w, r, "load homepage options", loadErr)
			return
		}
		data.Error = "Choose an item from the list."
		s.render(w, r, http.StatusBadRequest, "admin_homepage.gohtml", data)
		return
	}
	if err != nil {
		s.serverError(w, r, "save homepage setting", err)
		return
	}
	http.Redirect(w, r, withQuery(homepageSettingsPath(pt), "updated", "1"), http.StatusSeeOther)
}

func (s *Server) handleItemList(w http.ResponseWriter, r *http.Request) {
	pt, ok := s.typeFromPath(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	items, err := s.store.ListItems(ctx, pt.Name, ListFilter{})
	if err != nil {
		s.serverError(w, r, "list items", err)
		return
	}
	SortByTitle(items, func(it Item) (string, ItemID) { return it.DisplayTitle(), it.ID })

	homepageID, _ := s.selector.Homepage(ctx, pt).Get()
	s.render(w, r, http.StatusOK, "admin_items.gohtml", struct {
		Type       PostType
		Items      []Item
		HomepageID ItemID
		NewPath    string
		AdminBar   *AdminBar
	}{
		Type:       pt,
		Items:      items,
		HomepageID: homepageID,
		NewPath:    "/admin/types/" + pt.Name + "/items/new",
		AdminBar:   dashboardAdminBar(AdminUser(ctx)),
	})
}

type editFormData struct {
	Heading  string
	Type     PostType
	Item     Item
	ParentID ItemID
	Parents  []Option
	Statuses []Status
	Action   string
	ReturnTo string
	Error    string
	AdminBar *AdminBar
}

func (s *Server) editForm(ctx context.Context, pt PostType, it Item, returnTo string) (editFormData, error) {
	data := editFormData{
		Heading:  "New " + pt.Label,
		Type:     pt,
		Item:     it,
		Statuses: Statuses,
		Action:   "/admin/types/" + pt.Name + "/items",
		ReturnTo: returnTo,
		AdminBar: dashboardAdminBar(AdminUser(ctx)),
	}
	if it.ID != 0 {
		data.Heading = "Edit " + it.DisplayTitle()
		data.Action = "/admin/items/" + it.ID.String()
	}
	data.ParentID, _ = it.Parent.Get()
	if !pt.Hierarchical {
		return data, nil
	}

	items, err := s.store.ListItems(ctx, pt.Name, ListFilter{})
	if err != nil {
		return data, err
	}
	for _, candidate := range items {
		if candidate.ID == it.ID {
			continue
		}
		data.Parents = append(data.Parents, Option{ID: candidate.ID, Title: candidate.DisplayTitle()})
	}
	SortByTitle(data.Parents, func(o Option) (string, ItemID) { return o.Title, o.ID })
	return data, nil
}

func (s *Server) handleItemNew(w http.ResponseWriter, r *http.Request) {
	pt, ok := s.typeFromPath(w, r)
	if !ok {
		return
	}
	data, err := s.editForm(r.Context(), pt, Item{Type: pt.Name, Status: StatusDraft}, "")
	if err != nil {
		s.serverError(w, r, "load edit form", err)
		return
	}
	s.render(w, r, http.StatusOK, "admin_edit.gohtml", data)
}

// formError is a validation message shown back to the editor.
type formError string

func (e formError) Error() string { return string(e) }

// itemFromForm applies the posted fields to base.
func (s *Server) itemFromForm(ctx context.Context, r *http.Request, pt PostType, base Item) (Item, error) {
	it := base
	it.Type = pt.Name
	it.Title = strings.TrimSpace(r.PostFormValue("title"))
	it.Body = r.PostFormValue("body")

	rawSlug := strings.TrimSpace(r.PostFormValue("slug"))
	if rawSlug == "" {
		rawSlug = it.Title
	}
	slug, err := NormalizeSlug(rawSlug)
	if err != nil {
		return it, formError("Slug: " + err.Error())
	}
	it.Slug = slug

	status, err := ParseStatus(r.PostFormValue("status"))
	if err != nil {
		return it, formError("Status: " + err.Error())
	}
	it.Status = status

	it.Parent = None()
	if pt.Hierarchical {
		parent, err := ParseRef(r.PostFormValue("parent"))
		if err != nil {
			return it, formError("Parent: choose an item from the list")
		}
		if err := s.checkParent(ctx, pt, it.ID, parent); err != nil {
			return it, err
		}
		it.Parent = parent
	}
	return it, nil
}

// checkParent rejects parents of another type and parent chains that
// would loop back to the item itself.
func (s *Server) checkParent(ctx context.Context, pt PostType, self ItemID, parent Ref) error {
	seen := map[ItemID]struct{}{}
	for ref := parent; ref.IsSet(); {
		id, _ := ref.Get()
		if id == self {
			return formError("Parent: an item cannot be its own ancestor")
		}
		if _, loop := seen[id]; loop {
			return nil
		}
		seen[id] = struct{}{}

		p, err := s.store.Item(ctx, id)
		if errors.Is(err, ErrNotFound) {
			if ref == parent {
				return formError("Parent: item #" + id.String() + " does not exist")
			}
			return nil
		}
		if err != nil {
			return err
		}
		if p.Type != pt.Name {
			return formError("Parent: item #" + id.String() + " belongs to another content type")
		}
		ref = p.Parent
	}
	return nil
}

func (s *Server) saveFailed(w http.ResponseWriter, r *http.Request, pt PostType, it Item, err error) {
	var fe formError
	status := http.StatusBadRequest
	switch {
	case errors.As(err, &fe):
	case errors.Is(err, ErrDuplicateSlug):
		fe = formError("Slug: another item at this level already uses " + strconv.Quote(it.Slug))
		status = http.StatusConflict
	default:
		s.serverError(w, r, "save item", err)
		return
	}
	data, loadErr := s.editForm(r.Context(), pt, it, localRedirect(r.PostFormValue("return_to"), ""))
	if loadErr != nil {
		s.serverError(w, r, "load edit form", loadErr)
		return
	}
	data.Error = string(fe)
	s.render(w, r, status, "admin_edit.gohtml", data)
}

func (s *Server) handleItemCreate(w http.ResponseWriter, r *http.Request) {
	pt, ok := s.typeFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	it, err := s.itemFromForm(ctx, r, pt, Item{})
	if err == nil {
		it, err = s.store.CreateItem(ctx, it)
	}
	if err != nil {
		s.saveFailed(w, r, pt, it, err)
		return
	}
	s.logger.InfoContext(ctx, "item created", "type", pt.Name, "id", it.ID, "slug", it.Slug)
	http.Redirect(w, r, editPath(it.ID), http.StatusSeeOther)
}

// itemFromPath resolves the {id} wildcard and its content type, answering
// 404 itself.
func (s *Server) itemFromPath(w http.ResponseWriter, r *http.Request) (Item, PostType, bool) {
	ref, err := ParseRef(r.PathValue("id"))
	id, set := ref.Get()
	if err != nil || !set {
		http.NotFound(w, r)
		return Item{}, PostType{}, false
	}
	it, err := s.store.Item(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.NotFound(w, r)
		return Item{}, PostType{}, false
	}
	if err != nil {
		s.serverError(w, r, "lookup item", err)
		return Item{}, PostType{}, false
	}
	pt, err := s.registry.Lookup(it.Type)
	if err != nil {
		http.NotFound(w, r)
		return Item{}, PostType{}, false
	}
	return it, pt, true
}

func (s *Server) handleItemEdit(w http.ResponseWriter, r *http.Request) {
	it, pt, ok := s.itemFromPath(w, r)
	if !ok {
		return
	}
	data, err := s.editForm(r.Context(), pt, it, localRedirect(r.URL.Query().Get("return_to"), ""))
	if err != nil {
		s.serverError(w, r, "load edit form", err)
		return
	}
	s.render(w, r, http.StatusOK, "admin_edit.gohtml", data)
}

func (s *Server) handleItemUpdate(w http.ResponseWriter, r *http.Request) {
	base, pt, ok := s.itemFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	it, err := s.itemFromForm(ctx, r, pt, base)
	if err == nil {
		err = s.store.UpdateItem(ctx, it)
	}
	if err != nil {
		s.saveFailed(w, r, pt, it, err)
		return
	}
	s.logger.InfoContext(ctx, "item updated", "type", pt.Name, "id", it.ID, "status", it.Status)
	http.Redirect(w, r, localRedirect(r.PostFormValue("return_to"), editPath(it.ID)), http.StatusSeeOther)
}

func (s *Server) handleItemDelete(w http.ResponseWriter, r *http.Request) {
	it, pt, ok := s.itemFromPath(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := s.store.DeleteItem(ctx, it.ID); err != nil && !errors.Is(err, ErrNotFound) {
		s.serverError(w, r, "delete item", err)
		return
	}
	s.logger.InfoContext(ctx, "item deleted", "type", pt.Name, "id", it.ID)
	http.Redirect(w, r, fmt.Sprintf("/admin/types/%s/items", pt.Name), http.StatusSeeOther)
}
