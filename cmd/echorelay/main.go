// ABOUTME: Entry point for the echorelay operator tool
// ABOUTME: Inspects live correspondence snapshots and migrates them between backends

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/echorelay/echorelay/internal/config"
	"github.com/echorelay/echorelay/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the path to the echorelay config file.
// Priority: ECHORELAY_CONFIG env var > XDG_CONFIG_HOME/echorelay/config.yaml > ~/.config/echorelay/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("ECHORELAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "echorelay", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("echorelay %s\n\n", version)
		fmt.Println("Usage: echorelay <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  inspect   Print the persisted correspondence index")
		fmt.Println("  migrate   Copy a file snapshot into the sqlite backend")
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "inspect":
		err = runInspect()
	case "migrate":
		err = runMigrate()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openSnapshot builds the configured snapshot backend.
func openSnapshot(cfg *config.Config, logger *slog.Logger) (store.Snapshot, error) {
	if !cfg.Storage.Enabled {
		return nil, fmt.Errorf("storage is not enabled in this config")
	}

	switch cfg.Storage.Backend {
	case "sqlite":
		return store.NewSQLiteSnapshot(filepath.Join(cfg.Storage.DataDir, "messageMap.sqlite"), logger)
	default:
		return store.NewFileSnapshot(cfg.Storage.DataDir, logger), nil
	}
}

func runInspect() error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := setupLogger(cfg.Logging)

	snap, err := openSnapshot(cfg, logger)
	if err != nil {
		return err
	}
	defer snap.Close()

	idx, err := snap.Load()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	if len(idx) == 0 {
		gray.Println("snapshot is empty")
		return nil
	}

	bridges := make([]string, 0, len(idx))
	for name := range idx {
		bridges = append(bridges, name)
	}
	sort.Strings(bridges)

	for _, bridge := range bridges {
		cyan.Printf("%s\n", bridge)

		keys := make([]string, 0, len(idx[bridge]))
		for key := range idx[bridge] {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			fmt.Printf("  %s ", key)
			gray.Printf("-> %s\n", strings.Join(idx[bridge][key], ", "))
		}
	}

	return nil
}

func runMigrate() error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Storage.Enabled {
		return fmt.Errorf("storage is not enabled in this config")
	}
	logger := setupLogger(cfg.Logging)

	src := store.NewFileSnapshot(cfg.Storage.DataDir, logger)
	idx, err := src.Load()
	if err != nil {
		return fmt.Errorf("loading file snapshot: %w", err)
	}

	dst, err := store.NewSQLiteSnapshot(filepath.Join(cfg.Storage.DataDir, "messageMap.sqlite"), logger)
	if err != nil {
		return err
	}
	defer dst.Close()

	if err := dst.Save(idx); err != nil {
		return fmt.Errorf("writing sqlite snapshot: %w", err)
	}

	entries := 0
	for _, sub := range idx {
		entries += len(sub)
	}
	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("migrated %d bridges, %d entries\n", len(idx), entries)
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	// Handler-level attrs first (from WithAttrs), then record attrs
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
