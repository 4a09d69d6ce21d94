package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fredis "github.com/gofiber/storage/redis/v3"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/evetools/tokend/config"
	"github.com/evetools/tokend/internal/handlers"
	"github.com/evetools/tokend/internal/middlewares"
	"github.com/evetools/tokend/internal/seed"
	"github.com/evetools/tokend/internal/sso"
	"github.com/evetools/tokend/internal/store"
	"github.com/evetools/tokend/internal/tokens"
	"github.com/evetools/tokend/model"
	"github.com/evetools/tokend/params"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "EVE SSO token broker"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
		{
			Name:  "seed",
			Usage: "Bulk-load static data export files into MySQL",
			Subcommands: []*cli.Command{
				{
					Name:      "typeids",
					ArgsUsage: "<typeIDs.yaml>",
					Action:    seedTypeIDs,
				},
				{
					Name:      "blueprints",
					ArgsUsage: "<blueprints.yaml>",
					Action:    seedBlueprints,
				},
			},
		},
	}
	app.Action = run
}

func initLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		return nil, err
	}
	initLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))
	return cfg, nil
}

func openMySQL(cfg config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.Dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	return db, nil
}

func newTokenStore(cfg *config.Config) (tokens.TokenStore, error) {
	switch cfg.Storage {
	case config.StorageRedis:
		storage := fredis.New(fredis.Config{URL: cfg.RedisURL})
		kv := store.NewRedisStore[model.CharacterToken](storage.Conn(), params.TokenStoreKeyPrefix)
		return tokens.NewKVTokenStore(kv), nil
	case config.StorageMySQL:
		db, err := openMySQL(cfg.MySQL)
		if err != nil {
			return nil, err
		}
		return tokens.NewMySQLTokenStore(db)
	default:
		return tokens.NewKVTokenStore(store.NewMemoryStore[model.CharacterToken]()), nil
	}
}

func seedTypeIDs(ctx *cli.Context) error {
	db, err := openSeedDB(ctx)
	if err != nil {
		return err
	}
	return seed.TypeIDs(db, ctx.Args().First())
}

func seedBlueprints(ctx *cli.Context) error {
	db, err := openSeedDB(ctx)
	if err != nil {
		return err
	}
	return seed.Blueprints(db, ctx.Args().First())
}

func openSeedDB(ctx *cli.Context) (*gorm.DB, error) {
	if ctx.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one input file, got %d", ctx.NArg())
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.MySQL.Dsn == "" {
		return nil, fmt.Errorf("seeding requires mysql.dsn")
	}
	return openMySQL(cfg.MySQL)
}

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	tokenStore, err := newTokenStore(cfg)
	if err != nil {
		slog.Error("Could not initialize token store.", "error", err)
		return err
	}
	ssoClient := sso.NewClient(cfg.SSO.ClientID, cfg.SSO.ClientSecret, cfg.SSO.TokenURL, cfg.SSO.VerifyURL)
	tokenHandler := handlers.NewTokenHandler(tokens.NewService(ssoClient, tokenStore))

	router := fiber.New(fiber.Config{
		BodyLimit:    params.ServerBodyLimit,
		IdleTimeout:  params.ServerIdleTimeout,
		ReadTimeout:  params.ServerReadTimeout,
		WriteTimeout: params.ServerWriteTimeout,
		ErrorHandler: middlewares.ErrorHandler,
	})
	router.Use(cors.New(cors.Config{AllowOrigins: strings.Join(cfg.AllowOrigins, ",")}))
	router.Get("/token", tokenHandler.GetToken)
	router.Get("/auth", tokenHandler.GetAuthenticate)

	slog.Info("Starting token broker", "address", cfg.ListenAddr, "storage", cfg.Storage)
	return router.Listen(cfg.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
