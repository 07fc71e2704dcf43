package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/voltlab/cdckit/pkg/pipeline"
	"github.com/voltlab/cdckit/pkg/server"
	"github.com/voltlab/cdckit/pkg/store"
)

// newServeCmd runs the HTTP API server.
func newServeCmd() *cobra.Command {
	var (
		addr     string
		redisURL string
		mongoURI string
		mongoDB  string
		cacheDir string
		defs     string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API over HTTP",
		Long: `Start the HTTP API. Layouts and rendered artifacts are cached in Redis
when --redis is set, otherwise on disk. Saved circuits live in MongoDB
when --mongo is set, otherwise in memory for the lifetime of the
process.`,
		Example: `  cdckit serve
  cdckit serve --addr :9000 --redis redis://localhost:6379/0
  cdckit serve --mongo mongodb://localhost:27017 --mongo-db cdckit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			reg, err := loadRegistry(defs)
			if err != nil {
				return err
			}
			c, err := openCache(ctx, redisURL, cacheDir, noCache)
			if err != nil {
				return err
			}
			defer c.Close()

			var st store.Store
			if mongoURI != "" {
				ms, err := store.NewMongoStore(ctx, mongoURI, mongoDB)
				if err != nil {
					return err
				}
				st = ms
			} else {
				st = store.NewMemoryStore()
			}
			defer st.Close(context.Background())

			srv := server.New(server.Config{
				Runner:   pipeline.NewRunner(c, logger),
				Store:    st,
				Registry: reg,
				Logger:   logger,
			})

			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", addr)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			printInfo("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for the artifact cache")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for circuit storage")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", "cdckit", "MongoDB database name")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "on-disk cache directory")
	cmd.Flags().StringVar(&defs, "defs", "", "TOML file with custom element definitions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
