package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/lvaldez/driveline/internal/middleware"
	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/queue"
	"github.com/lvaldez/driveline/internal/repository"
	queue_publisher "github.com/lvaldez/driveline/internal/service"
)

// ReviewHandler serves review submission, self-service editing and
// the admin moderation screen.
//
// The publish funcs default to the RabbitMQ publisher and are plain
// fields so tests can capture events without a broker. Publishing is
// best effort: a review outcome never depends on the broker being up.
type ReviewHandler struct {
	Classifications  ClassificationStore
	Vehicles         VehicleStore
	Reviews          ReviewStore
	PublishSubmitted func(ctx context.Context, ev queue.ReviewSubmittedEvent) error
	PublishModerated func(ctx context.Context, ev queue.ReviewModeratedEvent) error
}

func NewReviewHandler(classifications ClassificationStore, vehicles VehicleStore, reviews ReviewStore) *ReviewHandler {
	return &ReviewHandler{
		Classifications:  classifications,
		Vehicles:         vehicles,
		Reviews:          reviews,
		PublishSubmitted: queue_publisher.PublishReviewSubmitted,
		PublishModerated: queue_publisher.PublishReviewModerated,
	}
}

func (h *ReviewHandler) nav(c echo.Context) []model.Classification {
	return loadNav(c, h.Classifications)
}

// BuildAdd renders the review form for one vehicle.
func (h *ReviewHandler) BuildAdd(c echo.Context) error {
	vehicleID, err := paramID(c, "invId")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "vehicle not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "vehicle not found")
		}
		c.Logger().Errorf("load vehicle %d: %v", vehicleID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}
	return render(c, http.StatusOK, "review-add", echo.Map{
		"Title": "Review the " + v.Name(), "Nav": h.nav(c),
		"VehicleID": v.ID, "ReviewTitle": "", "ReviewBody": "", "Rating": 0,
	})
}

// Add stores a new pending review. The one-review-per-vehicle rule is
// enforced by the unique key, so a duplicate comes back as a typed
// error here rather than being pre-checked.
func (h *ReviewHandler) Add(c echo.Context) error {
	vehicleID, err := formID(c, "vehicle_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "vehicle not found")
	}
	id := middleware.CurrentIdentity(c)
	title := strings.TrimSpace(c.FormValue("title"))
	body := strings.TrimSpace(c.FormValue("body"))
	rating, _ := strconv.Atoi(c.FormValue("rating"))

	if errs := validateReviewFields(title, body, rating); len(errs) > 0 {
		return render(c, http.StatusBadRequest, "review-add", echo.Map{
			"Title": "Write a review", "Nav": h.nav(c), "Errors": errs,
			"VehicleID": vehicleID, "ReviewTitle": title, "ReviewBody": body, "Rating": rating,
		})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rv := model.Review{VehicleID: vehicleID, AccountID: id.AccountID, Title: title, Body: body, Rating: rating}
	if err := h.Reviews.Create(ctx, &rv); err != nil {
		detail := fmt.Sprintf("/inv/detail/%d", vehicleID)
		switch {
		case errors.Is(err, repository.ErrDuplicateReview):
			return redirectFlash(c, detail,
				"You have already reviewed this vehicle. You can edit your existing review instead.")
		case errors.Is(err, repository.ErrBadReference):
			return redirectFlash(c, "/", "Sorry, that vehicle could not be found.")
		}
		c.Logger().Errorf("create review: %v", err)
		return redirectFlash(c, detail, "Sorry, your review could not be saved.")
	}

	h.publishSubmitted(c, rv)
	return redirectFlash(c, fmt.Sprintf("/inv/detail/%d", vehicleID),
		"Thank you for your review! It will appear once our staff approve it.")
}

func (h *ReviewHandler) publishSubmitted(c echo.Context, rv model.Review) {
	if h.PublishSubmitted == nil {
		return
	}
	var vehicleName string
	{
		ctx, cancel := reqCtx(c)
		defer cancel()
		if v, err := h.Vehicles.GetByID(ctx, rv.VehicleID); err == nil {
			vehicleName = v.Name()
		}
	}
	ev := queue.ReviewSubmittedEvent{
		ReviewID:    rv.ID,
		VehicleID:   rv.VehicleID,
		VehicleName: vehicleName,
		AccountID:   rv.AccountID,
		Rating:      rv.Rating,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}
	// The request finishes before a slow broker would; detach.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.PublishSubmitted(ctx, ev)
	}()
}

// BuildEdit renders the edit form for a review the caller owns, or any
// review when the caller is an admin.
func (h *ReviewHandler) BuildEdit(c echo.Context) error {
	rv, err := h.loadOwnedReview(c)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "review-edit", echo.Map{
		"Title": fmt.Sprintf("Edit your review of the %d %s %s", rv.VehicleYear, rv.VehicleMake, rv.VehicleModel),
		"Nav":   h.nav(c),
		"ReviewID": rv.ID, "ReviewTitle": rv.Title, "ReviewBody": rv.Body, "Rating": rv.Rating,
	})
}

// Update applies an edit. The approval flag is untouched: an edited
// review keeps its moderation state.
func (h *ReviewHandler) Update(c echo.Context) error {
	rv, err := h.loadOwnedReviewForm(c)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	body := strings.TrimSpace(c.FormValue("body"))
	rating, _ := strconv.Atoi(c.FormValue("rating"))

	if errs := validateReviewFields(title, body, rating); len(errs) > 0 {
		return render(c, http.StatusBadRequest, "review-edit", echo.Map{
			"Title": "Edit your review", "Nav": h.nav(c), "Errors": errs,
			"ReviewID": rv.ID, "ReviewTitle": title, "ReviewBody": body, "Rating": rating,
		})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Reviews.Update(ctx, rv.ID, title, body, rating); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return redirectFlash(c, "/review/my-reviews", "Sorry, that review could not be found.")
		}
		c.Logger().Errorf("update review %d: %v", rv.ID, err)
		return redirectFlash(c, "/review/my-reviews", "Sorry, the update failed.")
	}
	return redirectFlash(c, h.afterEditTarget(c, rv), "Your review was successfully updated.")
}

// BuildDelete renders the delete confirmation page.
func (h *ReviewHandler) BuildDelete(c echo.Context) error {
	rv, err := h.loadOwnedReview(c)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "review-delete", echo.Map{
		"Title": "Delete Review", "Nav": h.nav(c), "Review": rv,
	})
}

// Delete removes the review; its rating leaves the vehicle's
// aggregates on the next read.
func (h *ReviewHandler) Delete(c echo.Context) error {
	rv, err := h.loadOwnedReviewForm(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Reviews.Delete(ctx, rv.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return redirectFlash(c, "/review/my-reviews", "Sorry, that review could not be found.")
		}
		c.Logger().Errorf("delete review %d: %v", rv.ID, err)
		return redirectFlash(c, "/review/my-reviews", "Sorry, the delete failed.")
	}
	return redirectFlash(c, h.afterEditTarget(c, rv), "Your review was successfully deleted.")
}

// MyReviews lists every review the caller wrote, pending included.
func (h *ReviewHandler) MyReviews(c echo.Context) error {
	id := middleware.CurrentIdentity(c)

	ctx, cancel := reqCtx(c)
	defer cancel()
	reviews, err := h.Reviews.ListByAccount(ctx, id.AccountID)
	if err != nil {
		c.Logger().Errorf("list reviews for account %d: %v", id.AccountID, err)
		return redirectFlash(c, "/account/", "Sorry, your reviews could not be loaded.")
	}
	return render(c, http.StatusOK, "my-reviews", echo.Map{
		"Title": "My Reviews", "Nav": h.nav(c), "Reviews": reviews,
	})
}

// loadOwnedReview fetches the review named by the :id path parameter
// and checks the caller may modify it: the owner always, an admin for
// any review. Everyone else gets the same not-found treatment so the
// route does not confirm which review ids exist.
func (h *ReviewHandler) loadOwnedReview(c echo.Context) (model.ReviewWithContext, error) {
	reviewID, err := paramID(c, "id")
	if err != nil {
		return model.ReviewWithContext{}, echo.NewHTTPError(http.StatusNotFound, "review not found")
	}
	return h.fetchOwned(c, reviewID)
}

// loadOwnedReviewForm is loadOwnedReview for the POST routes, which
// carry the id in the review_id form field instead.
func (h *ReviewHandler) loadOwnedReviewForm(c echo.Context) (model.ReviewWithContext, error) {
	reviewID, err := formID(c, "review_id")
	if err != nil {
		return model.ReviewWithContext{}, echo.NewHTTPError(http.StatusNotFound, "review not found")
	}
	return h.fetchOwned(c, reviewID)
}

func (h *ReviewHandler) fetchOwned(c echo.Context, reviewID uint64) (model.ReviewWithContext, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			c.Logger().Errorf("load review %d: %v", reviewID, err)
		}
		return model.ReviewWithContext{}, echo.NewHTTPError(http.StatusNotFound, "review not found")
	}
	id := middleware.CurrentIdentity(c)
	if rv.AccountID != id.AccountID && id.Role != model.RoleAdmin {
		return model.ReviewWithContext{}, echo.NewHTTPError(http.StatusNotFound, "review not found")
	}
	return rv, nil
}

// afterEditTarget sends owners back to their review list and an admin
// who edited someone else's review back to moderation.
func (h *ReviewHandler) afterEditTarget(c echo.Context, rv model.ReviewWithContext) string {
	if id := middleware.CurrentIdentity(c); id.AccountID != rv.AccountID {
		return "/review/admin"
	}
	return "/review/my-reviews"
}

// validateReviewFields checks the shared rules of the review forms:
// title 1-100 characters, body 10-1000, rating 1-5.
func validateReviewFields(title, body string, rating int) []string {
	var errs []string
	if n := utf8.RuneCountInString(title); n < 1 || n > 100 {
		errs = append(errs, "Title must be between 1 and 100 characters.")
	}
	if n := utf8.RuneCountInString(body); n < 10 || n > 1000 {
		errs = append(errs, "Review text must be between 10 and 1000 characters.")
	}
	if rating < 1 || rating > 5 {
		errs = append(errs, "Rating must be between 1 and 5.")
	}
	return errs
}
