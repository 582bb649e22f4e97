// internal/app/app.go
package app

import (
	"context"
	"time"

	"github.com/markdave123-py/s3handler/internal/config"
	"github.com/markdave123-py/s3handler/pkg/logger"
	"github.com/markdave123-py/s3handler/pkg/objectclient"
)

type App struct {
	ObjectClient *objectclient.Holder
	Server       *Server
}

// NewApp configures the object client and builds the HTTP server. A storage
// configuration error is returned unchanged so the caller can halt startup.
func NewApp(ctx context.Context, cfg *config.Config, opts ...objectclient.HolderOption) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts = append([]objectclient.HolderOption{
		objectclient.WithClientOptions(objectclient.WithLogger(logger.Component("objectclient"))),
	}, opts...)
	holder := objectclient.NewHolder(opts...)
	if err := holder.Configure(appCtx, cfg.Storage); err != nil {
		return nil, err
	}
	logger.Log.Info().
		Str("bucket", cfg.Storage.BucketName).
		Str("region", cfg.Storage.Region).
		Msg("Object client initialized and ready.")

	return &App{ObjectClient: holder, Server: NewServer(cfg, holder)}, nil
}

// Close stops the HTTP server.
func (a *App) Close(ctx context.Context) error {
	if a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}
