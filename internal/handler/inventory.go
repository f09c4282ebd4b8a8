package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/repository"
)

// InventoryHandler serves the public browsing pages and the staff
// inventory management screens.
type InventoryHandler struct {
	Classifications ClassificationStore
	Vehicles        VehicleStore
	Reviews         ReviewStore
}

func NewInventoryHandler(classifications ClassificationStore, vehicles VehicleStore, reviews ReviewStore) *InventoryHandler {
	return &InventoryHandler{Classifications: classifications, Vehicles: vehicles, Reviews: reviews}
}

func (h *InventoryHandler) nav(c echo.Context) []model.Classification {
	return loadNav(c, h.Classifications)
}

// Home renders the landing page.
func (h *InventoryHandler) Home(c echo.Context) error {
	return render(c, http.StatusOK, "home", echo.Map{
		"Title": "Home", "Nav": h.nav(c),
	})
}

// ByClassification lists the vehicles of one classification together
// with their approved-review aggregates. The aggregates come straight
// from the query, so an approval toggled a moment ago already shows.
func (h *InventoryHandler) ByClassification(c echo.Context) error {
	id, err := paramID(c, "classificationId")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "classification not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cls, err := h.Classifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "classification not found")
		}
		c.Logger().Errorf("load classification %d: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}
	vehicles, err := h.Vehicles.ListByClassificationWithStats(ctx, id)
	if err != nil {
		c.Logger().Errorf("list vehicles for classification %d: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}
	return render(c, http.StatusOK, "classification", echo.Map{
		"Title": cls.Name + " vehicles", "Nav": h.nav(c), "Vehicles": vehicles,
	})
}

// Detail renders one vehicle with its aggregates and the approved
// reviews, newest first.
func (h *InventoryHandler) Detail(c echo.Context) error {
	id, err := paramID(c, "inventoryId")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "vehicle not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Vehicles.GetWithStats(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "vehicle not found")
		}
		c.Logger().Errorf("load vehicle %d: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}
	reviews, err := h.Reviews.ListByVehicle(ctx, id)
	if err != nil {
		c.Logger().Errorf("list reviews for vehicle %d: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}
	return render(c, http.StatusOK, "detail", echo.Map{
		"Title":   fmt.Sprintf("%d %s", v.Year, v.Name()),
		"Nav":     h.nav(c),
		"Vehicle": v,
		"Reviews": reviews,
	})
}

// vehicleJSON is the payload shape of the inventory JSON endpoint.
type vehicleJSON struct {
	ID               uint64  `json:"inv_id"`
	Make             string  `json:"inv_make"`
	Model            string  `json:"inv_model"`
	Year             int     `json:"inv_year"`
	Description      string  `json:"inv_description"`
	Image            string  `json:"inv_image"`
	Thumbnail        string  `json:"inv_thumbnail"`
	PriceCents       uint64  `json:"inv_price_cents"`
	Miles            uint32  `json:"inv_miles"`
	Color            string  `json:"inv_color"`
	ClassificationID uint64  `json:"classification_id"`
	AvgRating        float64 `json:"avg_rating"`
	ReviewCount      int     `json:"review_count"`
}

// JSON serves one classification's vehicles as JSON for the
// management screen's dynamic table.
func (h *InventoryHandler) JSON(c echo.Context) error {
	id, err := paramID(c, "classificationId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	vehicles, err := h.Vehicles.ListByClassificationWithStats(ctx, id)
	if err != nil {
		c.Logger().Errorf("inventory json for classification %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]vehicleJSON, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, vehicleJSON{
			ID: v.ID, Make: v.Make, Model: v.Model, Year: v.Year,
			Description: v.Description, Image: v.Image, Thumbnail: v.Thumbnail,
			PriceCents: v.PriceCents, Miles: v.Miles, Color: v.Color,
			ClassificationID: v.ClassificationID,
			AvgRating:        v.AvgRating, ReviewCount: v.ReviewCount,
		})
	}
	return c.JSON(http.StatusOK, out)
}
