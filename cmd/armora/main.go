package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/config"
	"github.com/quartzsec/armora/internal/logger"
	"github.com/quartzsec/armora/internal/migration"
	"github.com/quartzsec/armora/internal/server"
	"github.com/quartzsec/armora/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
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
