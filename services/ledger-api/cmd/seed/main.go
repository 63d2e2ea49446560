package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"

	"github.com/joho/godotenv"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/repositories"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/app"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/configs"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// main seeds users with login credentials and a funded account each.
// Existing users and accounts are skipped so the seeder can be re-run.
func main() {
	noOfUsers := flag.Int("noOfUsers", 100, "Number of users to seed")
	minAccountBalance := flag.Float64("minBalance", 700.0, "Min account balance")
	maxAccountBalance := flag.Float64("maxBalance", 1000.0, "Max account balance")
	password := flag.String("password", "changeme", "Password given to every seeded user")
	isTest := flag.Bool("isTest", true, "Seed the test partition")
	flag.Parse()

	_ = godotenv.Load()
	pkg.InitLogger()
	logger := pkg.Logger
	defer logger.Sync()

	cfg, err := configs.Load(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	kv, closer, err := app.OpenStore(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("failed_to_open_store", zap.Error(err))
	}
	defer closer()

	userRepo := repositories.NewUserRepository(kv)
	credentials, err := services.NewCredentialService(logger, services.CredentialConfig{
		Secret:     []byte(cfg.JwtSecret),
		Algorithm:  cfg.JwtAlgorithm,
		BcryptCost: cfg.BcryptCost,
	}, userRepo)
	if err != nil {
		logger.Fatal("failed_to_init_credentials", zap.Error(err))
	}
	userService := services.NewUserService(logger, credentials, userRepo)
	ledgerService := services.NewLedgerService(logger, services.LedgerConfig{},
		repositories.NewAccountRepository(kv), repositories.NewPortfolioRepository(kv), userRepo,
		services.NewNoopLedgerPublisher(logger))

	minBal, maxBal := *minAccountBalance, *maxAccountBalance
	if minBal > maxBal {
		minBal, maxBal = maxBal, minBal
	}

	env := pkg.EnvFromFlag(*isTest)
	traceID := pkg.GenerateUUID()
	created, skipped := 0, 0
	for i := 1; i <= *noOfUsers; i++ {
		name := fmt.Sprintf("user%d", i)

		if _, err := userService.CreateUser(ctx, traceID, env, name, *password); err != nil {
			if !pkg.HasCode(err, pkg.ErrStoreDuplicateCode) {
				logger.Fatal("failed_to_seed_user", zap.String(pkg.Username, name), zap.Error(err))
			}
			skipped++
		}

		balance := decimal.NewFromFloat(minBal + rand.Float64()*(maxBal-minBal)).Round(2)
		if _, err := ledgerService.CreateAccount(ctx, traceID, env, name, balance); err != nil {
			if !pkg.HasCode(err, pkg.ErrStoreDuplicateCode) {
				logger.Fatal("failed_to_seed_account", zap.String(pkg.Username, name), zap.Error(err))
			}
			continue
		}
		created++
	}
	logger.Info("data_seeded_successfully", zap.Int("accounts_created", created), zap.Int("users_skipped", skipped),
		zap.String(pkg.Environment, string(env)))
}
