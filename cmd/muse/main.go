package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"muse-go/internal/app"
	"muse-go/internal/config"
)

var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a MuseApp. The caller must defer
// a.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.MuseApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewMuseApp(cfg, operation, verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// promptHidden reads a line from the terminal without echoing it.
func promptHidden(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// unsealToken returns the stored credential, prompting for the key
// passphrase when the sealer needs one.
func unsealToken(a *app.MuseApp) (string, error) {
	passphrase := ""
	if a.Config().Encryption.Type == "" || a.Config().Encryption.Type == "age" {
		var err error
		passphrase, err = promptHidden("Key passphrase")
		if err != nil {
			return "", err
		}
	}
	return a.Service().Token(passphrase)
}

// confirm asks a yes/no question on stderr and returns the answer.
func confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
