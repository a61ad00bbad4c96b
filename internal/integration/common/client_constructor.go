package common

import (
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/config"
	pkgHTTP "github.com/formloom/forms-backend/pkg/http"
)

// NewBaseConnector assembles the shared outbound client from connector
// configuration. Provider specifics (auth headers, extra transports)
// arrive through extra options.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
	}
	opts = append(opts, extra...)

	return pkgHTTP.NewConnector(connCfg, opts...)
}
