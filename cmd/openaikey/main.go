package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"productstudio/internal/infra"
	"productstudio/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	var (
		keyFlag  string
		showFlag bool
	)
	flag.StringVar(&keyFlag, "key", "", "OpenAI API key to save (falls back to OPENAI_API_KEY)")
	flag.BoolVar(&showFlag, "show", false, "print the masked key currently saved and exit")
	flag.Parse()

	cfg := &infra.Config{DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL"))}
	if !cfg.HasDatabase() {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "openaikey").Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
	if err := store.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare credential table: %v\n", err)
		os.Exit(1)
	}

	if showFlag {
		key, err := store.OpenAIAPIKey(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read key: %v\n", err)
			os.Exit(1)
		}
		if key == "" {
			fmt.Println("no OpenAI API key saved")
			return
		}
		fmt.Printf("saved OpenAI API key: %s\n", credentials.Mask(key))
		return
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "OpenAI API key is required via -key or OPENAI_API_KEY")
		os.Exit(1)
	}

	if err := store.SetOpenAIAPIKey(ctx, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist openai api key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OpenAI API key %s stored successfully\n", credentials.Mask(key))
}
