package main

import (
	"fmt"
	"os"
	"strings"

	"scribe/app/config"
	"scribe/service"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const cliVersion = "1.0.0"

var exit = os.Exit

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func main() {
	exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 && strings.ToLower(args[0]) == "version" {
		fmt.Printf("scribe version %s\n", cliVersion)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when loading settings.")
		return 1
	}
	configureLogging(cfg)

	if len(args) > 0 && args[0] == "serve" {
		printBanner()
	}
	return service.HandleCommand(cfg, args)
}

// configureLogging applies log.level and log.pretty. Pretty output is the
// console writer installed by init; otherwise logs are JSON lines on stderr.
func configureLogging(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.LogLevel())
	if !cfg.Log.Pretty {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func printBanner() {
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprint("scribe"), cliVersion)
	fmt.Println("Posts, categories and comments over a JSON API")
	color.HiBlack("=====================================================")
}
