package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nhle/voter-roll/internal/report"
	"github.com/nhle/voter-roll/internal/seed"
	"github.com/nhle/voter-roll/internal/server"
	"github.com/nhle/voter-roll/internal/store"
)

const usage = `Usage: rolld [flags] <command> [args]

Commands:
  serve               serve the voter API
  seed                load a generated demo ward
  import <file.csv>   load a ward from a CSV export
  stats               print per-booth marking and turnout
  token <operator>    mint a session token

Flags:
`

type config struct {
	dbType    string
	dbURL     string
	port      int
	jwtSecret string
	ward      int
	accessLog bool

	booths    int
	perBooth  int
	seedValue int64
	tokenTTL  time.Duration
}

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := run(os.Args[1:]); err != nil {
		slog.Error("rolld failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config{
		dbType:    os.Getenv("DATABASE_TYPE"),
		dbURL:     envOr("DATABASE_URL", "rolld.db"),
		port:      envInt("PORT", 8080),
		jwtSecret: os.Getenv("JWT_SECRET"),
	}

	flags := pflag.NewFlagSet("rolld", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	flags.StringVar(&cfg.dbType, "db-type", cfg.dbType, "sqlite or postgres (DATABASE_TYPE)")
	flags.StringVar(&cfg.dbURL, "db", cfg.dbURL, "sqlite path or postgres URL (DATABASE_URL)")
	flags.IntVar(&cfg.port, "port", cfg.port, "listen port (PORT)")
	flags.StringVar(&cfg.jwtSecret, "jwt-secret", cfg.jwtSecret, "token signing secret; empty disables auth (JWT_SECRET)")
	flags.IntVar(&cfg.ward, "ward", 12, "ward for seed, import and stats")
	flags.BoolVar(&cfg.accessLog, "access-log", false, "log every request")
	flags.IntVar(&cfg.booths, "booths", 3, "booths to generate")
	flags.IntVar(&cfg.perBooth, "voters", 50, "voters per generated booth")
	flags.Int64Var(&cfg.seedValue, "seed", time.Now().UnixNano(), "random seed for generated names")
	flags.DurationVar(&cfg.tokenTTL, "ttl", 24*time.Hour, "session token lifetime")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	command := flags.Arg(0)
	if command == "token" {
		return mintToken(cfg, flags.Arg(1))
	}

	st, err := store.Open(cfg.dbType, cfg.dbURL)
	if err != nil {
		return err
	}
	defer st.Close()

	switch command {
	case "serve", "":
		return serve(cfg, st)
	case "seed":
		return seedDemo(cfg, st)
	case "import":
		return importCSV(cfg, st, flags.Arg(1))
	case "stats":
		return printStats(cfg, st)
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func serve(cfg config, st store.Store) error {
	if cfg.jwtSecret == "" {
		slog.Warn("JWT_SECRET is empty; the API accepts requests without a token")
	}

	app := server.New(st, server.Config{
		JWTSecret: cfg.jwtSecret,
		AccessLog: cfg.accessLog,
		Logger:    slog.Default(),
	})

	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("shutdown", "err", err)
		}
	}()

	addr := ":" + strconv.Itoa(cfg.port)
	slog.Info("listening", "addr", addr, "db", cfg.dbURL)
	return app.Listen(addr)
}

func seedDemo(cfg config, st store.Store) error {
	roll := seed.Generate(seed.Options{
		WardNo:         cfg.ward,
		Booths:         cfg.booths,
		VotersPerBooth: cfg.perBooth,
		FirstBooth:     1,
		Seed:           cfg.seedValue,
	})
	if err := seed.Load(context.Background(), st, roll); err != nil {
		return err
	}
	color.Green("Seeded ward %d: %d booths, %d voters", cfg.ward, len(roll.Booths), len(roll.Voters))
	return nil
}

func importCSV(cfg config, st store.Store, path string) error {
	if path == "" {
		return fmt.Errorf("import needs a CSV file")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	roll, err := seed.ParseCSV(f, cfg.ward)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := seed.Load(context.Background(), st, roll); err != nil {
		return err
	}
	color.Green("Imported %d voters into ward %d (%d booths)", len(roll.Voters), cfg.ward, len(roll.Booths))
	return nil
}

func printStats(cfg config, st store.Store) error {
	tallies, err := st.Tallies(context.Background(), cfg.ward)
	if err != nil {
		return err
	}
	report.Render(os.Stdout, cfg.ward, tallies)
	return nil
}

func mintToken(cfg config, operator string) error {
	if operator == "" {
		return fmt.Errorf("token needs an operator name")
	}
	token, err := server.MintToken(cfg.jwtSecret, operator, cfg.tokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}
