package echoapi

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/chapa-studio/chapa/core"
	"github.com/chapa-studio/chapa/core/editor"
	"github.com/chapa-studio/chapa/core/template"
	"github.com/chapa-studio/chapa/core/user"
	docinfosvc "github.com/chapa-studio/chapa/services/docinfo"
	rendersvc "github.com/chapa-studio/chapa/services/render"
)

var errTplNotFoundInCtx = errors.New("template object not found in echo.Context")

// previews without known source dimensions fall back to an A-series page.
const (
	defaultPreviewWidth  = 1000.0
	defaultPreviewHeight = 1414.0

	maxSourceFetchSize = 32 << 20 // 32MB
)

type templateDeps struct {
	conf     *core.Config
	svc      *template.Service
	userSvc  *user.Service
	render   *rendersvc.Service
	docInfo  *docinfosvc.Service
	validate *validator.Validate
}

type templateApi struct {
	templateDeps
	client *http.Client
}

func registerTemplateAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps templateDeps) {
	api := templateApi{
		templateDeps: deps,
		client:       &http.Client{Timeout: 30 * time.Second},
	}

	tg := g.Group("/templates", jwt)
	tg.POST("", api.create)
	tg.GET("", api.query)
	tg.DELETE("", api.destroyMultiple)

	dg := tg.Group("/:id", ctxTemplateOrAdminMiddleware(api.svc, api.userSvc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/duplicate", api.duplicate)
	dg.POST("/share", api.share)
	dg.GET("/preview.png", api.preview)
	dg.GET("/dimensions", api.dimensions)
}

// Handlers

func (api *templateApi) create(ctx echo.Context) error {
	var data template.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	tpl, err := api.svc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating template")
	}
	return ctx.JSON(http.StatusCreated, tpl)
}

func (api *templateApi) query(ctx echo.Context) error {
	filter := new(template.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []template.Template{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	// non-admins only ever see their own templates
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() {
		filter.OwnerID = ctxUsr.ID
	}

	tpls, err := api.svc.Filter(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying templates")
	}
	if tpls == nil {
		tpls = []template.Template{}
	}
	return ctx.JSON(http.StatusOK, tpls)
}

func (api *templateApi) retrieve(ctx echo.Context) error {
	tpl, ok := ctx.Get("object").(template.Template)
	if !ok {
		return errors.Wrap(errTplNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, tpl)
}

func (api *templateApi) update(ctx echo.Context) error {
	tpl, ok := ctx.Get("object").(template.Template)
	if !ok {
		return errors.Wrap(errTplNotFoundInCtx, "retrieving object from context")
	}

	var data template.UpdateTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTemplate")
	}
	if err := data.Validate(tpl, api.validate); err != nil {
		return err
	}

	tpl, err := api.svc.Update(ctx.Request().Context(), tpl, data)
	if err != nil {
		return errors.Wrap(err, "updating template")
	}
	return ctx.JSON(http.StatusOK, tpl)
}

func (api *templateApi) destroy(ctx echo.Context) error {
	tpl, ok := ctx.Get("object").(template.Template)
	if !ok {
		return errors.Wrap(errTplNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), tpl.ID); err != nil {
		return errors.Wrap(err, "deleting template")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *templateApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// non-admins may only delete their own templates
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	reqCtx := ctx.Request().Context()
	if !ctxUsr.IsAdmin() {
		owned, err := api.svc.Filter(reqCtx, &template.QueryFilter{OwnerID: ctxUsr.ID}, nil)
		if err != nil {
			return errors.Wrap(err, "querying owned templates")
		}
		ownedIDs := make([]string, 0, len(owned))
		for _, tpl := range owned {
			ownedIDs = append(ownedIDs, tpl.ID)
		}
		sort.Strings(ownedIDs)
		for _, id := range query.IDs {
			if i := sort.SearchStrings(ownedIDs, id); i >= len(ownedIDs) || ownedIDs[i] != id {
				return errHttpForbidden
			}
		}
	}

	if err := api.svc.Delete(reqCtx, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting templates")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *templateApi) duplicate(ctx echo.Context) error {
	tpl, ok := ctx.Get("object").(template.Template)
	if !ok {
		return errors.Wrap(errTplNotFoundInCtx, "retrieving object from context")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	dup, err := api.svc.Duplicate(ctx.Request().Context(), tpl.ID, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "duplicating template")
	}
	return ctx.JSON(http.StatusCreated, dup)
}

func (api *templateApi) share(ctx echo.Context) error {
	tpl, ok := ctx.Get("object").(template.Template)
	if !ok {
		return errors.Wrap(errTplNotFoundInCtx, "retrieving object from context")
	}

	var data ShareRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ShareRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	api.svc.Share(ctx.Request().Context(), tpl, ctxUsr.Name, data.Emails)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Template shared."})
}

func (api *templateApi) preview(ctx echo.Context) error {
	tpl, ok := ctx.Get("object").(template.Template)
	if !ok {
		return errors.Wrap(errTplNotFoundInCtx, "retrieving object from context")
	}

	size := editor.DocSize{
		Width:  floatQueryParam(ctx, "width", defaultPreviewWidth),
		Height: floatQueryParam(ctx, "height", defaultPreviewHeight),
	}
	if !size.Known() {
		return core.NewValidationError(errors.New("invalid preview dimensions"))
	}

	var buf bytes.Buffer
	if err := api.render.Render(tpl.Document, size, &buf); err != nil {
		return errors.Wrap(err, "rendering preview")
	}
	return ctx.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (api *templateApi) dimensions(ctx echo.Context) error {
	tpl, ok := ctx.Get("object").(template.Template)
	if !ok {
		return errors.Wrap(errTplNotFoundInCtx, "retrieving object from context")
	}
	if tpl.SourceURL == "" {
		return core.NewValidationError(errors.New("template has no source document"))
	}

	req, err := http.NewRequestWithContext(ctx.Request().Context(), http.MethodGet, tpl.SourceURL, nil)
	if err != nil {
		return core.NewValidationError(errors.New("invalid source document URL"))
	}
	resp, err := api.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "fetching source document")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return core.NewValidationError(errors.Errorf("source document fetch failed: %s", resp.Status))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceFetchSize))
	if err != nil {
		return errors.Wrap(err, "reading source document")
	}

	info, err := api.docInfo.Inspect(tpl.Kind, bytes.NewReader(raw))
	if err != nil {
		if errors.Cause(err) == docinfosvc.ErrUnknownKind {
			return core.NewValidationError(err)
		}
		return core.NewValidationError(errors.New("source document could not be parsed"))
	}
	return ctx.JSON(http.StatusOK, info)
}

func ctxTemplateOrAdminMiddleware(svc *template.Service, userSvc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, userSvc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			tpl, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == template.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding template by ID")
			}
			if tpl.OwnerID == ctxUsr.ID || ctxUsr.IsAdmin() {
				ctx.Set("object", tpl)
				return next(ctx)
			}
			return errHttpNotFound
		}
	}
}

func floatQueryParam(ctx echo.Context, name string, deflt float64) float64 {
	val := ctx.QueryParam(name)
	if val == "" {
		return deflt
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return deflt
	}
	return f
}

type ShareRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,email"`
}

func (sr *ShareRequest) Validate(validate *validator.Validate) error {
	for i, email := range sr.Emails {
		sr.Emails[i] = core.CleanString(email, true /* lower */)
	}
	return validate.Struct(sr)
}
