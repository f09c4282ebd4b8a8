package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lvaldez/driveline/internal/model"
	"github.com/lvaldez/driveline/internal/repository"
)

// Staff inventory management. Everything below sits behind the
// Employee role gate in the router.

// Management renders the inventory management screen; when a
// classification is selected its vehicles are listed for editing.
func (h *InventoryHandler) Management(c echo.Context) error {
	selected, _ := strconv.ParseUint(c.QueryParam("classification_id"), 10, 64)

	var vehicles []model.VehicleWithStats
	if selected != 0 {
		ctx, cancel := reqCtx(c)
		defer cancel()
		var err error
		vehicles, err = h.Vehicles.ListByClassificationWithStats(ctx, selected)
		if err != nil {
			c.Logger().Errorf("list vehicles for classification %d: %v", selected, err)
			return redirectFlash(c, "/account/", "Sorry, the inventory could not be loaded.")
		}
	}
	return render(c, http.StatusOK, "inv-manage", echo.Map{
		"Title": "Inventory Management", "Nav": h.nav(c),
		"SelectedClassification": selected, "Vehicles": vehicles,
	})
}

// BuildAddClassification renders the add-classification form.
func (h *InventoryHandler) BuildAddClassification(c echo.Context) error {
	return render(c, http.StatusOK, "classification-add", echo.Map{
		"Title": "Add Classification", "Nav": h.nav(c), "Name": "",
	})
}

// AddClassification creates a classification. Names are restricted to
// letters, digits and spaces so they render cleanly in the nav.
func (h *InventoryHandler) AddClassification(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))

	rerender := func(status int, errs []string) error {
		return render(c, status, "classification-add", echo.Map{
			"Title": "Add Classification", "Nav": h.nav(c), "Name": name, "Errors": errs,
		})
	}
	if !validClassificationName(name) {
		return rerender(http.StatusBadRequest, []string{"Classification name must use letters, digits and spaces only."})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Classifications.Create(ctx, name); err != nil {
		if errors.Is(err, repository.ErrClassificationExists) {
			return rerender(http.StatusBadRequest, []string{"That classification already exists."})
		}
		c.Logger().Errorf("add classification: %v", err)
		return rerender(http.StatusInternalServerError, []string{"Sorry, the classification could not be added."})
	}
	return redirectFlash(c, "/inv/", "The "+name+" classification was successfully added.")
}

// BuildAddVehicle renders the add-vehicle form.
func (h *InventoryHandler) BuildAddVehicle(c echo.Context) error {
	return render(c, http.StatusOK, "vehicle-add", echo.Map{
		"Title": "Add Vehicle", "Nav": h.nav(c),
		"ClassificationID": uint64(0),
		"Make":             "", "Model": "", "Year": "", "Description": "",
		"Image": "", "Thumbnail": "", "Price": "", "Miles": "", "Color": "",
	})
}

// AddVehicle validates the ten vehicle fields and inserts the row.
func (h *InventoryHandler) AddVehicle(c echo.Context) error {
	f := readVehicleForm(c)

	rerender := func(status int, errs []string) error {
		data := f.formData()
		data["Title"] = "Add Vehicle"
		data["Nav"] = h.nav(c)
		data["Errors"] = errs
		return render(c, status, "vehicle-add", data)
	}

	v, errs := f.toVehicle()
	if len(errs) > 0 {
		return rerender(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Vehicles.Create(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrBadReference) {
			return rerender(http.StatusBadRequest, []string{"A valid classification is required."})
		}
		c.Logger().Errorf("add vehicle: %v", err)
		return rerender(http.StatusInternalServerError, []string{"Sorry, the vehicle could not be added."})
	}
	return redirectFlash(c, "/inv/", "The "+v.Name()+" was successfully added.")
}

// BuildEditVehicle renders the edit form pre-filled from the row.
func (h *InventoryHandler) BuildEditVehicle(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return redirectFlash(c, "/inv/", "Sorry, that vehicle could not be found.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			c.Logger().Errorf("load vehicle %d: %v", id, err)
		}
		return redirectFlash(c, "/inv/", "Sorry, that vehicle could not be found.")
	}
	return render(c, http.StatusOK, "vehicle-edit", echo.Map{
		"Title": "Edit " + v.Name(), "Nav": h.nav(c),
		"VehicleID":        v.ID,
		"ClassificationID": v.ClassificationID,
		"Make":             v.Make, "Model": v.Model,
		"Year":        strconv.Itoa(v.Year),
		"Description": v.Description,
		"Image":       v.Image, "Thumbnail": v.Thumbnail,
		"Price": centsToDollars(v.PriceCents),
		"Miles": strconv.FormatUint(uint64(v.Miles), 10),
		"Color": v.Color,
	})
}

// UpdateVehicle applies an edit to an existing vehicle.
func (h *InventoryHandler) UpdateVehicle(c echo.Context) error {
	id, err := formID(c, "vehicle_id")
	if err != nil {
		return redirectFlash(c, "/inv/", "Sorry, that vehicle could not be found.")
	}
	f := readVehicleForm(c)

	rerender := func(status int, errs []string) error {
		data := f.formData()
		data["Title"] = "Edit " + f.makeName + " " + f.model
		data["Nav"] = h.nav(c)
		data["Errors"] = errs
		data["VehicleID"] = id
		return render(c, status, "vehicle-edit", data)
	}

	v, errs := f.toVehicle()
	if len(errs) > 0 {
		return rerender(http.StatusBadRequest, errs)
	}
	v.ID = id

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Vehicles.Update(ctx, &v); err != nil {
		switch {
		case errors.Is(err, repository.ErrBadReference):
			return rerender(http.StatusBadRequest, []string{"A valid classification is required."})
		case errors.Is(err, repository.ErrNotFound):
			return redirectFlash(c, "/inv/", "Sorry, that vehicle could not be found.")
		}
		c.Logger().Errorf("update vehicle %d: %v", id, err)
		return rerender(http.StatusInternalServerError, []string{"Sorry, the update failed."})
	}
	return redirectFlash(c, "/inv/", "The "+v.Name()+" was successfully updated.")
}

// BuildDeleteVehicle renders the delete confirmation page.
func (h *InventoryHandler) BuildDeleteVehicle(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return redirectFlash(c, "/inv/", "Sorry, that vehicle could not be found.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			c.Logger().Errorf("load vehicle %d: %v", id, err)
		}
		return redirectFlash(c, "/inv/", "Sorry, that vehicle could not be found.")
	}
	return render(c, http.StatusOK, "vehicle-delete", echo.Map{
		"Title": "Delete " + v.Name(), "Nav": h.nav(c), "Vehicle": v,
	})
}

// DeleteVehicle removes the vehicle; its reviews go with it via the
// database cascade.
func (h *InventoryHandler) DeleteVehicle(c echo.Context) error {
	id, err := formID(c, "vehicle_id")
	if err != nil {
		return redirectFlash(c, "/inv/", "Sorry, that vehicle could not be found.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Vehicles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return redirectFlash(c, "/inv/", "Sorry, that vehicle could not be found.")
		}
		c.Logger().Errorf("delete vehicle %d: %v", id, err)
		return redirectFlash(c, "/inv/", "Sorry, the delete failed.")
	}
	return redirectFlash(c, "/inv/", "The vehicle was successfully deleted.")
}

// vehicleForm carries the raw field values so a failed validation can
// re-render the form exactly as submitted.
type vehicleForm struct {
	classificationID string
	makeName            string
	model            string
	year             string
	description      string
	image            string
	thumbnail        string
	price            string
	miles            string
	color            string
}

func readVehicleForm(c echo.Context) vehicleForm {
	return vehicleForm{
		classificationID: c.FormValue("classification_id"),
		makeName:            strings.TrimSpace(c.FormValue("make")),
		model:            strings.TrimSpace(c.FormValue("model")),
		year:             strings.TrimSpace(c.FormValue("year")),
		description:      strings.TrimSpace(c.FormValue("description")),
		image:            strings.TrimSpace(c.FormValue("image")),
		thumbnail:        strings.TrimSpace(c.FormValue("thumbnail")),
		price:            strings.TrimSpace(c.FormValue("price")),
		miles:            strings.TrimSpace(c.FormValue("miles")),
		color:            strings.TrimSpace(c.FormValue("color")),
	}
}

func (f vehicleForm) formData() echo.Map {
	clsID, _ := strconv.ParseUint(f.classificationID, 10, 64)
	return echo.Map{
		"ClassificationID": clsID,
		"Make":             f.makeName, "Model": f.model, "Year": f.year,
		"Description": f.description, "Image": f.image, "Thumbnail": f.thumbnail,
		"Price": f.price, "Miles": f.miles, "Color": f.color,
	}
}

// toVehicle validates every field and converts the form into a model
// value. All errors are collected so the form reports them at once.
func (f vehicleForm) toVehicle() (model.Vehicle, []string) {
	var errs []string
	var v model.Vehicle

	clsID, err := strconv.ParseUint(f.classificationID, 10, 64)
	if err != nil || clsID == 0 {
		errs = append(errs, "A classification is required.")
	}
	v.ClassificationID = clsID

	for _, fld := range []struct{ name, val string }{
		{"Make", f.makeName}, {"Model", f.model}, {"Description", f.description},
		{"Image path", f.image}, {"Thumbnail path", f.thumbnail}, {"Color", f.color},
	} {
		if fld.val == "" {
			errs = append(errs, fld.name+" is required.")
		}
	}
	v.Make, v.Model, v.Description = f.makeName, f.model, f.description
	v.Image, v.Thumbnail, v.Color = f.image, f.thumbnail, f.color

	year, err := strconv.Atoi(f.year)
	if err != nil || year < 1900 || year > 2100 {
		errs = append(errs, "Year must be between 1900 and 2100.")
	}
	v.Year = year

	cents, err := dollarsToCents(f.price)
	if err != nil {
		errs = append(errs, "Price must be a non-negative dollar amount.")
	}
	v.PriceCents = cents

	miles, err := strconv.ParseUint(f.miles, 10, 32)
	if err != nil {
		errs = append(errs, "Miles must be a non-negative whole number.")
	}
	v.Miles = uint32(miles)

	return v, errs
}

// dollarsToCents converts a dollar amount such as "23500" or "23500.00"
// into whole cents. Sub-cent precision is rejected.
func dollarsToCents(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("empty amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	dollars, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has sub-cent precision", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	cents, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	if dollars > (math.MaxUint64-cents)/100 {
		return 0, fmt.Errorf("amount %q overflows", s)
	}
	return dollars*100 + cents, nil
}

// centsToDollars formats whole cents as a plain "12345.67" string for
// a numeric form input. Display formatting with separators lives in
// the template money func instead.
func centsToDollars(cents uint64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// validClassificationName reports whether the name is non-empty and
// contains only letters, digits and spaces.
func validClassificationName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
		default:
			return false
		}
	}
	return true
}
