package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/trio-pos/api/controllers"
	"github.com/angelmondragon/trio-pos/api/middleware"
	"github.com/angelmondragon/trio-pos/pkg/config"
	"github.com/angelmondragon/trio-pos/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storePinger controllers.Pinger,
	term controllers.Terminal,
	gatherer prometheus.Gatherer,
) http.Handler {
	if logg == nil {
		logg = logger.Nop()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, storePinger))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/", controllers.TerminalPage(term, logg))

	r.Route("/api/terminal", func(r chi.Router) {
		r.Use(middleware.Confirm())

		r.Get("/state", controllers.TerminalState(term))
		r.Get("/notifications", controllers.TerminalNotifications(term, logg))
		r.Get("/invoice/{orderID}", controllers.TerminalInvoice(term, logg))

		r.Route("/events", func(r chi.Router) {
			r.Post("/key", controllers.TerminalKey(term, logg))
			r.Post("/paste", controllers.TerminalPaste(term, logg))
			r.Post("/input", controllers.TerminalInput(term, logg))
			r.Post("/click", controllers.TerminalClick(term, logg))
			r.Post("/image-error", controllers.TerminalImageError(term, logg))
		})

		r.Post("/admin/image", controllers.TerminalImageSelect(term, logg, cfg.Terminal.MaxImageBytes))
		r.Post("/language/toggle", controllers.TerminalLanguageToggle(term, logg))
		r.Post("/prompt/answer", controllers.TerminalPromptAnswer(term, logg))
	})

	return r
}
