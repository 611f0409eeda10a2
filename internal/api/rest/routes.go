package rest

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/hanssonfredrik/customers/config"
	"github.com/hanssonfredrik/customers/internal/api/rest/handlers"
	"github.com/hanssonfredrik/customers/internal/api/rest/middleware"
	"github.com/hanssonfredrik/customers/internal/metrics"
	"github.com/hanssonfredrik/customers/internal/service"
	"github.com/hanssonfredrik/customers/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps are the collaborators the router wires into handlers.
type RouterDeps struct {
	Config    *config.Config
	Log       *logger.Logger
	Registry  *prometheus.Registry
	Customers service.CustomerService
	Store     handlers.Pinger
}

// SetupRouter builds the gin engine with its middleware and routes.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.LoggerMiddleware(deps.Log.Named("http")))
	r.Use(middleware.Metrics(metrics.NewHTTPMetrics(deps.Registry)))
	r.Use(middleware.CORS(deps.Config.CORS.AllowOrigins))

	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Log)
	customerHandler := handlers.NewCustomerHandler(deps.Customers, deps.Log)

	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	customers := r.Group("/customers")
	{
		customers.GET("", customerHandler.ListCustomers)
		customers.GET("/:id", customerHandler.GetCustomer)
		customers.POST("", customerHandler.CreateCustomer)
		customers.PUT("/:id", customerHandler.UpdateCustomer)
		customers.DELETE("/:id", customerHandler.DeleteCustomer)
	}

	if dir := deps.Config.Admin.Dir; dir != "" {
		deps.Log.Info("Serving admin UI from %s", dir)
		r.GET("/admin/*filepath", adminHandler(dir))
	}

	return r
}

// adminHandler serves files from dir and falls back to index.html so the
// single-page app can resolve its own routes.
func adminHandler(dir string) gin.HandlerFunc {
	root := http.Dir(dir)
	index := filepath.Join(dir, "index.html")

	return func(c *gin.Context) {
		name := c.Param("filepath")
		if name != "/" && isFile(root, name) {
			c.FileFromFS(name, root)
			return
		}
		if _, err := os.Stat(index); err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.File(index)
	}
}

func isFile(root http.FileSystem, name string) bool {
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	st, err := f.Stat()
	return err == nil && !st.IsDir()
}
