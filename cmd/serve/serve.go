// Package serve runs the HTTP upload API
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/stock-categorizer/cmd/root"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the categorize API over HTTP",
	Long: `Serve the categorize API over HTTP.

POST /api/categorize takes a multipart "image" file and an "apiKeys" JSON
array of {provider, key, enabled}. GET /metrics exposes Prometheus metrics.

Example:
  stock-categorizer serve --addr :5000`,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}
	cfg := appContainer.GetConfig()
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(appContainer.GetCategorizer(), appContainer.GetLogger(), server.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		UploadDir:      cfg.Server.UploadDir,
		Extensions:     models.AcceptedImageExtensions,
	})

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, addr)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
