package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"settlement/cmd"
	settlementhttp "settlement/internal/adapters/in/http"
	"settlement/internal/adapters/out/postgres/escrowrepo"
	"settlement/internal/adapters/out/postgres/orderrepo"
	"settlement/internal/adapters/out/postgres/requestrepo"
	"settlement/internal/adapters/out/postgres/tariffrepo"
	"settlement/internal/adapters/out/postgres/walletrepo"
	"settlement/internal/core/domain/model/tariff"
	"settlement/internal/jobs"
	"settlement/internal/pkg/errs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustConnectDB(configs)
	mustMigrateDB(gormDB)
	mustSeedCommissionSettings(gormDB)

	app := cmd.NewCompositionRoot(configs, gormDB, logger)

	jobManager := jobs.NewJobManager(app.CreateMarkReleaseEligibleCommandHandler(), logger)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(&app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:           goDotEnvVariable("HTTP_PORT"),
		DBHost:             goDotEnvVariable("DB_HOST"),
		DBPort:             goDotEnvVariable("DB_PORT"),
		DBUser:             goDotEnvVariable("DB_USER"),
		DBPassword:         goDotEnvVariable("DB_PASSWORD"),
		DBName:             goDotEnvVariable("DB_NAME"),
		DBSslMode:          goDotEnvVariable("DB_SSLMODE"),
		GracePeriodSeconds: goDotEnvVariable("GRACE_PERIOD_SECONDS"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func mustConnectDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return gormDB
}

func mustMigrateDB(gormDB *gorm.DB) {
	err := gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.LineDTO{},
		&escrowrepo.EscrowDTO{},
		&walletrepo.WalletDTO{},
		&requestrepo.ReleaseRequestDTO{},
		&tariffrepo.CommissionSettingDTO{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}

// mustSeedCommissionSettings inserts the tariff rows the pricing engine needs
// on first start. Existing rows are left alone so admin changes survive
// restarts.
func mustSeedCommissionSettings(gormDB *gorm.DB) {
	defaults := []struct {
		key    string
		rate   string
		minFee int64
		maxFee int64
	}{
		{tariff.KeyPlatformCommission, "0.10", 0, 0},
		{tariff.KeyFastDeliveryAgent, "0.15", 100, 5000},
		{tariff.KeyPickupDeliveryAgent, "0.08", 50, 2000},
	}

	ctx := context.Background()
	repo := tariffrepo.NewGormCommissionSettingRepository(gormDB)

	for _, d := range defaults {
		_, err := repo.GetByKey(ctx, d.key)
		if err == nil {
			continue
		}
		if !errors.Is(err, errs.ErrObjectNotFound) {
			log.Fatalf("Failed to read commission setting %s: %v", d.key, err)
		}

		setting, err := tariff.NewSetting(d.key, decimal.RequireFromString(d.rate), d.minFee, d.maxFee)
		if err != nil {
			log.Fatalf("Failed to build commission setting %s: %v", d.key, err)
		}
		if err := repo.Add(ctx, setting); err != nil {
			log.Fatalf("Failed to seed commission setting %s: %v", d.key, err)
		}
	}
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	server := settlementhttp.NewServer(
		app.CreateCreateOrderCommandHandler(),
		app.CreateHoldEscrowCommandHandler(),
		app.CreateTransitionOrderCommandHandler(),
		app.CreateClaimOrderCommandHandler(),
		app.CreateRequestReleaseCommandHandler(),
		app.CreateApproveReleaseCommandHandler(),
		app.CreateRejectReleaseCommandHandler(),
		app.CreateConfirmReceiptCommandHandler(),
		app.CreateRefundOrderCommandHandler(),
		app.CreateUpdateCommissionSettingCommandHandler(),
		app.CreateGetOrderSummaryQueryHandler(),
		app.CreateGetPendingReleaseRequestsQueryHandler(),
	)
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
