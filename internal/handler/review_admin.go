package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lvaldez/driveline/internal/middleware"
	"github.com/lvaldez/driveline/internal/queue"
	"github.com/lvaldez/driveline/internal/repository"
)

// Moderation renders the admin review queue: every review in every
// state, pending first by virtue of newest-first ordering.
func (h *ReviewHandler) Moderation(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	reviews, err := h.Reviews.ListAll(ctx)
	if err != nil {
		c.Logger().Errorf("list all reviews: %v", err)
		return redirectFlash(c, "/account/", "Sorry, the review queue could not be loaded.")
	}
	return render(c, http.StatusOK, "review-admin", echo.Map{
		"Title": "Review Moderation", "Nav": h.nav(c), "Reviews": reviews,
	})
}

// ToggleApproval flips one review between pending and approved. The
// flip happens in a single statement, so two admins racing on the same
// review land on a deterministic final state instead of a lost update.
func (h *ReviewHandler) ToggleApproval(c echo.Context) error {
	reviewID, err := formID(c, "review_id")
	if err != nil {
		return redirectFlash(c, "/review/admin", "Sorry, that review could not be found.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	approved, err := h.Reviews.ToggleApproval(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return redirectFlash(c, "/review/admin", "Sorry, that review could not be found.")
		}
		c.Logger().Errorf("toggle approval for review %d: %v", reviewID, err)
		return redirectFlash(c, "/review/admin", "Sorry, the approval change failed.")
	}

	h.publishModerated(c, reviewID, approved)

	if approved {
		return redirectFlash(c, "/review/admin", "Review has been approved.")
	}
	return redirectFlash(c, "/review/admin", "Review has been unapproved.")
}

func (h *ReviewHandler) publishModerated(c echo.Context, reviewID uint64, approved bool) {
	if h.PublishModerated == nil {
		return
	}
	var vehicleID uint64
	{
		ctx, cancel := reqCtx(c)
		defer cancel()
		if rv, err := h.Reviews.GetByID(ctx, reviewID); err == nil {
			vehicleID = rv.VehicleID
		}
	}
	ev := queue.ReviewModeratedEvent{
		ReviewID:    reviewID,
		VehicleID:   vehicleID,
		ModeratorID: middleware.CurrentIdentity(c).AccountID,
		Approved:    approved,
		ModeratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.PublishModerated(ctx, ev)
	}()
}
