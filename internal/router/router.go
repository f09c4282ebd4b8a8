// Package router wires every HTTP route to its handler and guards.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/lvaldez/driveline/internal/config"
	"github.com/lvaldez/driveline/internal/handler"
	"github.com/lvaldez/driveline/internal/middleware"
	"github.com/lvaldez/driveline/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg       config.Config
	Accounts  *handler.AccountHandler
	Inventory *handler.InventoryHandler
	Reviews   *handler.ReviewHandler
	Redis     *redis.Client
}

// Register attaches all routes to the Echo instance. Session restore
// runs on every request so templates always have an identity; the
// role gates wrap whole groups, not individual handlers.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.SessionRestore(d.Cfg.SessionSecret))

	e.GET("/healthz", handler.Health)
	e.GET("/", d.Inventory.Home)

	registerAccount(e, d)
	registerInventory(e, d)
	registerReviews(e, d)
}

func registerAccount(e *echo.Echo, d Deps) {
	// Credential forms carry the token-bucket limiter; everything else
	// stays unthrottled.
	limited := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)

	g := e.Group("/account")
	g.GET("/login", d.Accounts.BuildLogin)
	g.POST("/login", d.Accounts.Login, limited)
	g.GET("/register", d.Accounts.BuildRegister)
	g.POST("/register", d.Accounts.Register, limited)
	g.GET("/logout", d.Accounts.Logout)

	auth := e.Group("/account", middleware.RequireLogin())
	auth.GET("/", d.Accounts.Management)
	auth.GET("/update", d.Accounts.BuildUpdate)
	auth.POST("/update", d.Accounts.Update)
	auth.POST("/update-password", d.Accounts.UpdatePassword)
	auth.GET("/json/:id", d.Accounts.JSON)

	admin := e.Group("/account", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/manage", d.Accounts.Manage)
	admin.GET("/add-user", d.Accounts.BuildAddUser)
	admin.POST("/add-user", d.Accounts.AddUser)
	admin.GET("/edit/:id", d.Accounts.BuildEditUser)
	admin.POST("/update-user", d.Accounts.UpdateUser)
	admin.GET("/delete/:id", d.Accounts.BuildDeleteUser)
	admin.POST("/delete", d.Accounts.DeleteUser)
}

func registerInventory(e *echo.Echo, d Deps) {
	e.GET("/inv/classification/:classificationId", d.Inventory.ByClassification)
	e.GET("/inv/detail/:inventoryId", d.Inventory.Detail)
	e.GET("/inv/json/:classificationId", d.Inventory.JSON)

	staff := e.Group("/inv", middleware.RequireRole(model.RoleEmployee))
	staff.GET("/", d.Inventory.Management)
	staff.GET("/add-classification", d.Inventory.BuildAddClassification)
	staff.POST("/add-classification", d.Inventory.AddClassification)
	staff.GET("/add-vehicle", d.Inventory.BuildAddVehicle)
	staff.POST("/add-vehicle", d.Inventory.AddVehicle)
	staff.GET("/edit/:id", d.Inventory.BuildEditVehicle)
	staff.POST("/update", d.Inventory.UpdateVehicle)
	staff.GET("/delete/:id", d.Inventory.BuildDeleteVehicle)
	staff.POST("/delete", d.Inventory.DeleteVehicle)
}

func registerReviews(e *echo.Echo, d Deps) {
	auth := e.Group("/review", middleware.RequireLogin())
	auth.GET("/", d.Reviews.MyReviews)
	auth.GET("/add/:invId", d.Reviews.BuildAdd)
	auth.POST("/add", d.Reviews.Add)
	auth.GET("/edit/:id", d.Reviews.BuildEdit)
	auth.POST("/update", d.Reviews.Update)
	auth.GET("/delete/:id", d.Reviews.BuildDelete)
	auth.POST("/delete", d.Reviews.Delete)
	auth.GET("/my-reviews", d.Reviews.MyReviews)

	admin := e.Group("/review", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/admin", d.Reviews.Moderation)
	admin.POST("/toggle-approval", d.Reviews.ToggleApproval)
}
