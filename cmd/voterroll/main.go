package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/nhle/voter-roll/internal/app"
	"github.com/nhle/voter-roll/internal/credential"
	"github.com/nhle/voter-roll/internal/directory/remote"
	"github.com/nhle/voter-roll/internal/listctl"
	"github.com/nhle/voter-roll/internal/model"
)

const usage = `Usage:
  voterroll [flags]            open the ward dashboard
  voterroll login <token>      store the session token in the system keyring
  voterroll logout             forget the stored session token

Flags:
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "voterroll:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	v := model.NewViper()

	flags := pflag.NewFlagSet("voterroll", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	configPath := flags.String("config", model.DefaultConfigPath(), "config file")
	flags.String("api", "", "voter API base URL")
	flags.Int("ward", 0, "ward to open")
	flags.String("operator", "", "name recorded against status updates")
	flags.Bool("debug", false, "log at debug level")
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	for key, flag := range map[string]string{
		"api.base_url": "api",
		"ward":         "ward",
		"updated_by":   "operator",
	} {
		if f := flags.Lookup(flag); f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	switch flags.Arg(0) {
	case "login":
		token := strings.TrimSpace(flags.Arg(1))
		if token == "" {
			return fmt.Errorf("login needs a token")
		}
		if err := credential.SetSessionToken(token); err != nil {
			return err
		}
		fmt.Println("Session token saved.")
		return nil

	case "logout":
		if err := credential.ClearSessionToken(); err != nil {
			return err
		}
		fmt.Println("Session token removed.")
		return nil

	case "":
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", flags.Arg(0))
	}

	cfg, err := model.LoadConfig(v, *configPath)
	if err != nil {
		return err
	}

	debug, _ := flags.GetBool("debug")
	closeLog, err := setupLogging(cfg.LogFile, debug)
	if err != nil {
		return err
	}
	defer closeLog()

	session := credential.NewSession(credential.SessionToken)
	api := remote.NewAdapter(cfg.API.BaseURL, session.Token, cfg.RequestTimeout())

	debounce := cfg.SearchDebounce()
	if debounce == 0 {
		debounce = -1
	}

	slog.Info("starting", "api", cfg.API.BaseURL, "ward", cfg.Ward, "operator", cfg.UpdatedBy)

	root := app.New(app.Options{
		Directory: api,
		Mutator:   api,
		Ward:      cfg.Ward,
		UpdatedBy: cfg.UpdatedBy,
		List: listctl.Options{
			Debounce: debounce,
			Timeout:  cfg.RequestTimeout(),
			Logger:   slog.Default(),
		},
		Logout:       credential.ClearSessionToken,
		SessionReset: session.Invalidate,
	})

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// setupLogging sends the default slog logger to path. The terminal is
// owned by the UI while it runs.
func setupLogging(path string, debug bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "voterroll")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))

	return func() { f.Close() }, nil
}
