// Package handler implements the HTTP controllers. Each handler
// orchestrates one or more stores per request, maps the outcome to a
// rendered page or a redirect with a flash notice, and never lets a
// raw store error reach a template.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lvaldez/driveline/internal/middleware"
	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/view"
)

// Stores are consumed through narrow interfaces so the controllers can
// be exercised against in-memory fakes; the repository package
// satisfies them with MySQL-backed implementations.

// AccountStore persists accounts.
type AccountStore interface {
	Create(ctx context.Context, firstName, lastName, email, password string, role model.Role, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	GetByID(ctx context.Context, id uint64) (model.Account, error)
	UpdateProfile(ctx context.Context, id uint64, firstName, lastName, email string) error
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
	UpdateAccount(ctx context.Context, id uint64, firstName, lastName, email string, role model.Role) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context) ([]model.Account, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.Account, error)
}

// ClassificationStore persists vehicle classifications.
type ClassificationStore interface {
	Create(ctx context.Context, name string) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Classification, error)
	List(ctx context.Context) ([]model.Classification, error)
}

// VehicleStore persists inventory items and serves the aggregate reads.
type VehicleStore interface {
	Create(ctx context.Context, v *model.Vehicle) error
	GetByID(ctx context.Context, id uint64) (model.Vehicle, error)
	GetWithStats(ctx context.Context, id uint64) (model.VehicleWithStats, error)
	ListByClassificationWithStats(ctx context.Context, classificationID uint64) ([]model.VehicleWithStats, error)
	Update(ctx context.Context, v *model.Vehicle) error
	Delete(ctx context.Context, id uint64) error
}

// ReviewStore persists reviews and the moderation flag.
type ReviewStore interface {
	Create(ctx context.Context, rv *model.Review) error
	GetByID(ctx context.Context, id uint64) (model.ReviewWithContext, error)
	Update(ctx context.Context, id uint64, title, body string, rating int) error
	Delete(ctx context.Context, id uint64) error
	ListByVehicle(ctx context.Context, vehicleID uint64) ([]model.ReviewWithContext, error)
	ListByAccount(ctx context.Context, accountID uint64) ([]model.ReviewWithContext, error)
	ListAll(ctx context.Context) ([]model.ReviewWithContext, error)
	ToggleApproval(ctx context.Context, id uint64) (bool, error)
}

// loadNav fetches the classification list for the layout navigation.
// A failing nav is logged and rendered empty; it never blocks a page.
func loadNav(c echo.Context, s ClassificationStore) []model.Classification {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := s.List(ctx)
	if err != nil {
		c.Logger().Errorf("load nav classifications: %v", err)
		return nil
	}
	return items
}

// reqCtx bounds every store call made on behalf of a request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// render executes a page template, filling in the keys the layout
// needs on every page. Handlers that already fetched the nav pass it
// in; otherwise the nav renders empty rather than failing the page.
func render(c echo.Context, code int, page string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	data["Identity"] = middleware.CurrentIdentity(c)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = view.PopFlash(c)
	}
	for _, key := range []string{"Title", "Nav", "Errors"} {
		if _, ok := data[key]; !ok {
			data[key] = nil
		}
	}
	return c.Render(code, page, data)
}

// redirectFlash queues a notice and redirects, the standard way every
// non-render outcome is reported to the user.
func redirectFlash(c echo.Context, target, msg string) error {
	view.SetFlash(c, msg)
	return c.Redirect(http.StatusSeeOther, target)
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// formID parses a numeric form field.
func formID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.FormValue(name), 10, 64)
}
