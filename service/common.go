package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"scribe/app/config"
	"scribe/app/repositories"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

// Command output goes through these so tests can capture it.
var (
	stdout io.Writer = color.Output
	stdin  io.Reader = os.Stdin
)

var (
	okColor     = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
	promptColor = color.New(color.FgYellow)
)

func printOK(format string, a ...interface{}) {
	okColor.Fprintf(stdout, format+"\n", a...)
}

func printFail(format string, a ...interface{}) {
	failColor.Fprintf(stdout, format+"\n", a...)
}

func printInfo(format string, a ...interface{}) {
	fmt.Fprintf(stdout, format+"\n", a...)
}

// confirm asks a yes/no question; anything but y or Y is a no.
func confirm(question string) bool {
	promptColor.Fprintf(stdout, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(stdin).ReadString('\n')
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}

// openStore opens the configured database with badger logging routed
// through the global logger.
func openStore(cfg *config.Config) (*repositories.Store, error) {
	return repositories.Open(repositories.Options{
		Path:     cfg.Database.Path,
		InMemory: cfg.Database.InMemory,
		Logger:   &log.Logger,
	})
}

func dbExists(cfg *config.Config) bool {
	_, err := os.Stat(cfg.Database.Path)
	return err == nil
}
