package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/lvaldez/driveline/internal/config"
	"github.com/lvaldez/driveline/internal/database"
	"github.com/lvaldez/driveline/internal/handler"
	"github.com/lvaldez/driveline/internal/middleware"
	"github.com/lvaldez/driveline/internal/queue"
	"github.com/lvaldez/driveline/internal/repository"
	"github.com/lvaldez/driveline/internal/router"
	"github.com/lvaldez/driveline/internal/view"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	rdb := config.NewRedisClient()

	go func() {
		if err := queue.StartReviewConsumer(); err != nil {
			log.Printf("review consumer stopped: %v", err)
		}
	}()

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Fatalf("parse templates: %v", err)
	}
	view.UseSecureCookies(cfg.SecureCookies())

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.HTTPErrorHandler = errorHandler
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Static("/static", "static")

	accounts := repository.NewAccountRepo(db)
	classifications := repository.NewClassificationRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	reviews := repository.NewReviewRepo(db)

	router.Register(e, router.Deps{
		Cfg:       cfg,
		Accounts:  handler.NewAccountHandler(cfg, accounts, classifications),
		Inventory: handler.NewInventoryHandler(classifications, vehicles, reviews),
		Reviews:   handler.NewReviewHandler(classifications, vehicles, reviews),
		Redis:     rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// errorHandler renders the shared error page for anything a handler
// did not turn into a redirect itself.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Oh no! There was a crash. Maybe try a different route?"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if code == http.StatusNotFound {
			msg = "Sorry, we appear to have lost that page."
		} else if s, ok := he.Message.(string); ok {
			msg = s
		}
	}
	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	data := map[string]interface{}{
		"Title":    "Error",
		"Nav":      nil,
		"Errors":   nil,
		"Flash":    "",
		"Identity": middleware.CurrentIdentity(c),
		"Message":  msg,
	}
	if rerr := c.Render(code, "error", data); rerr != nil {
		c.Logger().Errorf("render error page: %v", rerr)
		_ = c.String(code, msg)
	}
}
