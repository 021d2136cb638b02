// @title           Faktura API
// @version         1.0
// @description     Invoice generation and billing API
// @host      localhost:8080
// @BasePath  /api
// @Schemes 	http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/billingsettings"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/contact"
	"github.com/smallbiznis/faktura/internal/events"
	"github.com/smallbiznis/faktura/internal/export"
	"github.com/smallbiznis/faktura/internal/invoice"
	"github.com/smallbiznis/faktura/internal/migration"
	"github.com/smallbiznis/faktura/internal/observability"
	"github.com/smallbiznis/faktura/internal/seed"
	"github.com/smallbiznis/faktura/internal/server"
	"github.com/smallbiznis/faktura/internal/tax"
	"github.com/smallbiznis/faktura/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		events.Module,
		tax.Module,
		contact.Module,
		billingsettings.Module,
		invoice.Module,
		export.Module,

		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.IsProduction() {
				return seed.EnsureDefaultOrg(conn)
			}
			return seed.EnsureDefaultOrgAndKey(conn)
		}),

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
