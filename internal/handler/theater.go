package handler // handler package contains the theater resource handlers

import (
	"errors"   // errors unwraps repository sentinels
	"fmt"      // fmt builds the delete confirmation message
	"io"       // io.EOF marks an empty chunked body
	"net/http" // http provides status code constants
	"strconv"  // strconv parses path identifiers
	"time"

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/iliyamo/theater-service/internal/errs"
	"github.com/iliyamo/theater-service/internal/metrics"
	"github.com/iliyamo/theater-service/internal/middleware"
	"github.com/iliyamo/theater-service/internal/model"
	"github.com/iliyamo/theater-service/internal/queue"
	"github.com/iliyamo/theater-service/internal/repository"
	"github.com/iliyamo/theater-service/internal/service"
	"github.com/iliyamo/theater-service/internal/validation"
)

// Route names, used to build Location headers.
const (
	RouteListTheaters  = "GetAllTheaters"
	RouteGetTheater    = "GetTheaterById"
	RouteCreateTheater = "CreateTheater"
	RouteUpdateTheater = "UpdateTheater"
	RouteDeleteTheater = "DeleteTheater"
)

// Client-facing messages.
const (
	msgNoTheaters     = "No theaters found."
	msgNotFound       = "Theater not found."
	msgAlreadyDeleted = "Theater was already deleted."
	msgDataRequired   = "Theater data is required."
	msgFieldsRequired = "Theater name and location are required."
	msgNameTooLong    = "Theater name is too long."
	msgValueTooLong   = "Theater data is too long."
	msgInvalidUpdate  = "Invalid update request."
	msgInvalidID      = "invalid id"
)

// TheaterHandler serves the /theater resource.  Every request opens its own
// store session through NewStore.
type TheaterHandler struct {
	NewStore  repository.StoreFactory // NewStore opens a per-request unit of work
	Publisher service.Publisher       // Publisher receives change events after commits
	Metrics   *metrics.Metrics        // Metrics counts operations (may be nil)
	Now       func() time.Time        // Now stamps events
}

// NewTheaterHandler constructs a TheaterHandler and panics if stores is nil.
// A nil publisher is replaced by service.NopPublisher.
func NewTheaterHandler(stores repository.StoreFactory, pub service.Publisher, m *metrics.Metrics) *TheaterHandler {
	if stores == nil {
		panic("nil store factory passed to NewTheaterHandler")
	}
	if pub == nil {
		pub = service.NopPublisher{}
	}
	return &TheaterHandler{NewStore: stores, Publisher: pub, Metrics: m, Now: time.Now}
}

// List handles GET /theater.  An empty table answers 404 rather than an
// empty array; clients depend on that.
func (h *TheaterHandler) List(c echo.Context) error {
	theaters, err := h.NewStore().ListAll(c.Request().Context())
	if err != nil {
		h.observe("list", "error")
		return err
	}
	if len(theaters) == 0 {
		h.observe("list", "not_found")
		return errs.NewNotFoundError(msgNoTheaters)
	}
	h.observe("list", "ok")
	return c.JSON(http.StatusOK, theaters)
}

// Get handles GET /theater/:id.
func (h *TheaterHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.NewStore().FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			middleware.GetLogger(c).Warn().Int64("id", id).Msg("Theater not found.")
			h.observe("get", "not_found")
			return errs.NewNotFoundError(msgNotFound)
		}
		h.observe("get", "error")
		return err
	}
	h.observe("get", "ok")
	return c.JSON(http.StatusOK, t)
}

// Create handles POST /theater.  Checks run in order and stop at the first
// failure: body present, name and location non-empty, name length.
func (h *TheaterHandler) Create(c echo.Context) error {
	log := middleware.GetLogger(c)
	in, err := bindInput(c)
	if err != nil {
		return err
	}
	if in == nil {
		log.Warn().Msg("Invalid request: Theater data is missing.")
		h.observe("create", "invalid")
		return errs.NewBadRequestError(msgDataRequired, nil)
	}
	if verr := in.Validate(); verr != nil {
		h.observe("create", "invalid")
		fields := validation.FieldErrors(verr)
		if validation.HasTag(verr, "required") {
			log.Warn().Msg("Invalid request: Theater name or location is missing.")
			return errs.NewBadRequestError(msgFieldsRequired, fields)
		}
		if validation.HasTag(verr, "max") {
			log.Warn().Msgf("Invalid request: Theater name exceeds %d characters.", model.NameMaxLength)
			return errs.NewBadRequestError(msgNameTooLong, fields)
		}
		return errs.NewBadRequestError(verr.Error(), fields)
	}

	t := in.ToTheater(0) // id is assigned by the store
	store := h.NewStore()
	store.Add(t)
	if err := store.SaveChanges(c.Request().Context()); err != nil {
		return h.writeFailed(c, "create", err)
	}

	h.observe("create", "ok")
	h.publish(c, queue.ActionCreated, t)
	c.Response().Header().Set(echo.HeaderLocation, theaterURL(c, t.ID))
	return c.JSON(http.StatusCreated, t)
}

// Update handles PUT /theater/:id.  The body must carry the same id as the
// path.  Fields are copied as sent: unlike Create, empty values are not
// rejected here.
func (h *TheaterHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	in, err := bindInput(c)
	if err != nil {
		return err
	}
	if in == nil || in.ID != id {
		middleware.GetLogger(c).Warn().Int64("id", id).Msg("Invalid update request for theater.")
		h.observe("update", "invalid")
		return errs.NewBadRequestError(msgInvalidUpdate, nil)
	}

	ctx := c.Request().Context()
	store := h.NewStore()
	t, err := store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			h.observe("update", "not_found")
			return errs.NewNotFoundError(msgNotFound)
		}
		h.observe("update", "error")
		return err
	}

	t.Name = in.Name
	t.Location = in.Location
	t.Notes = in.Notes
	store.Update(t)
	if err := store.SaveChanges(ctx); err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			h.observe("update", "not_found")
			return errs.NewNotFoundError(msgNotFound)
		}
		return h.writeFailed(c, "update", err)
	}

	h.observe("update", "ok")
	h.publish(c, queue.ActionUpdated, t)
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /theater/:id.  After the commit the id is looked up
// again and the confirmation is only sent once the row is really gone.  A
// commit that matched no row means another request deleted it first.
func (h *TheaterHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	store := h.NewStore()
	t, err := store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			h.observe("delete", "not_found")
			return errs.NewNotFoundError(msgNotFound)
		}
		h.observe("delete", "error")
		return err
	}

	store.Remove(t)
	if err := store.SaveChanges(ctx); err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			h.observe("delete", "already_deleted")
			return errs.NewNotFoundError(msgAlreadyDeleted)
		}
		return h.writeFailed(c, "delete", err)
	}

	switch _, err := store.FindByID(ctx, id); {
	case err == nil:
		middleware.GetLogger(c).Error().Int64("id", id).Msg("theater still present after delete commit")
		h.observe("delete", "error")
		return errs.NewInternalServerError()
	case !errors.Is(err, repository.ErrTheaterNotFound):
		h.observe("delete", "error")
		return err
	}

	h.observe("delete", "ok")
	h.publish(c, queue.ActionDeleted, t)
	return c.String(http.StatusOK, fmt.Sprintf("Theater with ID %d was deleted successfully.", id))
}

// writeFailed maps a SaveChanges error for op.
func (h *TheaterHandler) writeFailed(c echo.Context, op string, err error) error {
	if errors.Is(err, repository.ErrValueTooLong) {
		middleware.GetLogger(c).Warn().Err(err).Str("operation", op).Msg("Invalid request: value too long for storage.")
		h.observe(op, "invalid")
		return errs.NewBadRequestError(msgValueTooLong, nil)
	}
	h.observe(op, "error")
	return err
}

// publish sends a change event.  Broker failures are logged by the
// publisher and never fail the request.
func (h *TheaterHandler) publish(c echo.Context, action string, t *model.Theater) {
	ev := queue.NewTheaterChangedEvent(action, t, h.Now().UTC().Format(time.RFC3339))
	if err := h.Publisher.PublishTheaterChanged(c.Request().Context(), ev); err != nil {
		middleware.GetLogger(c).Warn().Err(err).Str("action", action).Int64("id", t.ID).Msg("theater event not published")
	}
}

func (h *TheaterHandler) observe(op, outcome string) {
	if h.Metrics != nil {
		h.Metrics.ObserveOperation(op, outcome)
	}
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errs.NewBadRequestError(msgInvalidID, nil)
	}
	return id, nil
}

// bindInput decodes the request body.  A missing body, an empty body and a
// JSON null all yield a nil input without error.
func bindInput(c echo.Context) (*model.TheaterInput, error) {
	var in *model.TheaterInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return in, nil
}

// theaterURL resolves the named get-by-id route for id.
func theaterURL(c echo.Context, id int64) string {
	if u := c.Echo().Reverse(RouteGetTheater, id); u != "" {
		return u
	}
	return "/theater/" + strconv.FormatInt(id, 10)
}
