package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comcol/comcol-backend/api/controllers"
	"github.com/comcol/comcol-backend/api/middleware"
	"github.com/comcol/comcol-backend/internal/computers"
	"github.com/comcol/comcol-backend/internal/pictures"
	"github.com/comcol/comcol-backend/pkg/config"
	"github.com/comcol/comcol-backend/pkg/db"
	"github.com/comcol/comcol-backend/pkg/logger"
	"github.com/comcol/comcol-backend/pkg/storage"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	blobP storage.Pinger,
	computerService computers.Service,
	pictureService pictures.Service,
	gate middleware.WriteGate,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	writable := middleware.RequireWritable(gate, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, blobP))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Get("/settings", controllers.Settings(cfg.Settings, gate))

	// Serve stored media straight off the blob root. A fronting web server
	// takes this over in production.
	r.Handle(cfg.Media.PublicPrefix+"/*", http.StripPrefix(cfg.Media.PublicPrefix+"/",
		http.FileServer(http.Dir(cfg.Media.RootDir))))

	r.Route("/api/v1/computers", func(r chi.Router) {
		r.Get("/", controllers.ListComputers(computerService, logg))
		r.With(writable).Post("/", controllers.CreateComputer(computerService, logg))

		r.Route("/{computerId}", func(r chi.Router) {
			r.Get("/", controllers.GetComputer(computerService, logg))
			r.With(writable).Put("/", controllers.UpdateComputer(computerService, logg))
			r.With(writable).Patch("/", controllers.UpdateComputer(computerService, logg))
			r.With(writable).Delete("/", controllers.DeleteComputer(computerService, logg))
			r.Get("/pictures", controllers.ListComputerPictures(pictureService, logg))
			r.With(writable).Post("/reorder-images", controllers.ReorderComputerImages(pictureService, logg))
		})
	})

	r.Route("/api/v1/pictures", func(r chi.Router) {
		r.With(writable).Post("/", controllers.UploadPicture(pictureService, cfg.Media.MaxUploadBytes(), logg))

		r.Route("/{pictureId}", func(r chi.Router) {
			r.Get("/", controllers.GetPicture(pictureService, logg))
			r.With(writable).Delete("/", controllers.DeletePicture(pictureService, logg))
		})
	})

	return r
}
