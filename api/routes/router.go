package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gsindri/kaupa-skil-sub004/api/controllers"
	"github.com/gsindri/kaupa-skil-sub004/api/middleware"
	"github.com/gsindri/kaupa-skil-sub004/internal/quote"
	"github.com/gsindri/kaupa-skil-sub004/pkg/config"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
	"github.com/gsindri/kaupa-skil-sub004/pkg/metrics"
	"github.com/gsindri/kaupa-skil-sub004/pkg/redis"
)

// Deps carries the services and infrastructure the router wires into handlers.
// DB, Redis, Gatherer and HTTPMetrics may be nil.
type Deps struct {
	Quote       quote.Service
	Units       controllers.EngineProvider
	Rules       controllers.RuleReplacer
	History     controllers.OrderHistoryRecorder
	DB          controllers.Pinger
	Redis       *redis.Client
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.HTTP.CORSAllowedOrigins),
	)

	ready := map[string]controllers.Pinger{"db": deps.DB, "redis": nil}
	var rateStore *redis.Client
	if deps.Redis != nil {
		ready["redis"] = deps.Redis
		rateStore = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	quotePolicy := middleware.NewRateLimitPolicy("api", time.Minute, cfg.HTTP.RateLimitPerMinute)

	r.Route("/api/v1", func(r chi.Router) {
		if rateStore != nil {
			r.Use(middleware.RateLimit(quotePolicy, rateStore, logg))
		}

		r.Route("/delivery", func(r chi.Router) {
			r.Post("/calculate", controllers.DeliveryCalculate(deps.Quote, logg))
			r.Post("/optimize", controllers.DeliveryOptimize(deps.Quote, logg))
		})

		r.Route("/units", func(r chi.Router) {
			r.Get("/", controllers.UnitsList(deps.Units, logg))
			r.Post("/convert", controllers.UnitsConvert(deps.Units, logg))
			r.Post("/price-per-base", controllers.UnitsPricePerBase(deps.Units, logg))
		})

		r.Post("/vat/price", controllers.VatPrice(deps.Units, logg))

		r.Route("/suppliers/{supplierId}", func(r chi.Router) {
			r.Put("/delivery-rule", controllers.DeliveryRuleReplace(deps.Rules, logg))
			r.Post("/order-history", controllers.SupplierMarkOrdered(deps.History, logg))
		})
	})

	return r
}
