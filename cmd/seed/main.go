package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/joho/godotenv"

	"telegram-giveaway-bot/internal/config"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/repository"
	pg "telegram-giveaway-bot/internal/infra/db/postgres"
	"telegram-giveaway-bot/internal/usecase"
)

// Seeds the cinema promo code pool from a file (or stdin with -file -).
func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	filePath := flag.String("file", "-", "code list file, one code per line; - for stdin")
	replace := flag.Bool("replace", false, "drop existing codes before inserting")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var raw []byte
	if *filePath == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(*filePath)
	}
	if err != nil {
		log.Fatalf("read codes: %v", err)
	}
	codes := usecase.ParseCodes(string(raw))
	if len(codes) == 0 {
		log.Fatal("no codes found in input")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	promoRepo := pg.NewPromoCodeRepo(pool)
	txManager := pg.NewTxManager(pool)

	var inserted int
	err = txManager.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		n, err := promoRepo.BulkInsert(ctx, tx, model.RewardCinema, codes, *replace)
		if err != nil {
			return err
		}
		inserted = n
		return nil
	})
	if err != nil {
		log.Fatalf("insert codes: %v", err)
	}

	stats, err := promoRepo.Stats(ctx, nil, model.RewardCinema)
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	fmt.Printf("parsed %d codes, inserted %d new\n", len(codes), inserted)
	fmt.Printf("pool now: %d total, %d used, %d free\n", stats.Total, stats.Used, stats.Free)
}
