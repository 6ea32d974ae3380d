package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"scribe/app/config"

	"github.com/rs/zerolog/log"
)

// restoreWriters bounds badger's pending writes while loading a backup.
const restoreWriters = 16

// HandleCommand runs a database or server subcommand and returns the exit
// code.
func HandleCommand(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	switch args[0] {
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := RunAppServer(ctx, cfg); err != nil {
			log.Error().Err(err).Msg("Server stopped with an error")
			return 1
		}
		return 0
	case "clean":
		return clean(cfg)
	case "init":
		return initDb(cfg)
	case "backup":
		return backup(cfg)
	case "restore":
		if len(args) < 2 {
			printFail("Error: backup file path required for restore")
			return 1
		}
		return restore(cfg, args[1])
	case "help":
		printHelp()
		return 0
	default:
		printFail("Unknown command: %s\n", args[0])
		printHelp()
		return 1
	}
}

func printHelp() {
	printInfo(`Usage: scribe <command> [options]

Commands:
  serve                 Run the content API
  init                  Initialize a new empty database
  clean                 Remove the database
  backup                Write a backup of the database to database.backup_dir
  restore <file>        Restore the database from a backup
  version               Show version information
  help                  Display this help message

Settings are read from settings.toml and SCRIBE_* environment variables.`)
}

func clean(cfg *config.Config) int {
	if cfg.Database.InMemory {
		printInfo("Database is in memory, nothing to clean")
		return 0
	}
	if !dbExists(cfg) {
		printInfo("Database is already clean (does not exist)")
		return 0
	}
	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		printInfo("Operation cancelled")
		return 1
	}
	if err := os.RemoveAll(cfg.Database.Path); err != nil {
		printFail("Failed to clean database: %v", err)
		return 1
	}
	printOK("Database cleaned successfully")
	return 0
}

func initDb(cfg *config.Config) int {
	if cfg.Database.InMemory {
		printInfo("Database is in memory, nothing to initialize")
		return 0
	}
	if dbExists(cfg) {
		printInfo("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}
	store, err := openStore(cfg)
	if err != nil {
		printFail("Failed to initialize database: %v", err)
		return 1
	}
	if err := store.Close(); err != nil {
		printFail("Failed to initialize database: %v", err)
		return 1
	}
	printOK("Database initialized successfully at %s", cfg.Database.Path)
	return 0
}

func backup(cfg *config.Config) int {
	if cfg.Database.InMemory || !dbExists(cfg) {
		printFail("No database exists to backup")
		return 1
	}
	if err := os.MkdirAll(cfg.Database.BackupDir, 0o755); err != nil {
		printFail("Failed to create backup directory: %v", err)
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		printFail("Failed to open database: %v", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(cfg.Database.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		printFail("Failed to create backup file: %v", err)
		return 1
	}
	defer f.Close()

	if _, err := store.DB().Backup(f, 0); err != nil {
		printFail("Failed to backup database: %v", err)
		return 1
	}
	printOK("Database backed up successfully to %s", backupFile)
	return 0
}

func restore(cfg *config.Config, backupFile string) int {
	if cfg.Database.InMemory {
		printFail("Cannot restore into an in-memory database")
		return 1
	}
	fi, err := os.Stat(backupFile)
	if err != nil {
		printFail("Backup file does not exist: %s", backupFile)
		return 1
	}
	if fi.Size() == 0 {
		printFail("Backup file is empty: %s", backupFile)
		return 1
	}

	if dbExists(cfg) {
		if !confirm("Existing database found. Do you want to replace it?") {
			printInfo("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(cfg.Database.Path); err != nil {
			printFail("Failed to remove existing database: %v", err)
			return 1
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		printFail("Failed to open backup file: %v", err)
		return 1
	}
	defer f.Close()

	store, err := openStore(cfg)
	if err != nil {
		printFail("Failed to open database: %v", err)
		return 1
	}
	defer store.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.DB().Load(f, restoreWriters)
	}()
	if err != nil {
		printFail("Failed to restore database: %v", err)
		return 1
	}

	printOK("Database restored successfully")
	return 0
}
