// Command hypercrypt encrypts and decrypts files with AES-256-CBC layered
// under a per-segment LFSR byte permutation, optionally splitting the
// ciphertext across several output files or joining them back together.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/sirupsen/logrus"

	"github.com/vilshansen/hypercrypt/constants"
	"github.com/vilshansen/hypercrypt/engine"
	"github.com/vilshansen/hypercrypt/hcerr"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Print(constants.HelpText)
		os.Exit(1)
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "hypercrypt: fatal: %v\n", r)
			os.Exit(1)
		}
	}()

	operation, file, splits, joins, err := getParameters()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hypercrypt: %v\n", err)
		fmt.Print(constants.HelpText)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	e := engine.New(engine.Options{
		Logger:   log,
		Splits:   splits,
		Joins:    joins,
		Progress: newBarProgress(),
	})

	switch operation {
	case "encrypt":
		err = e.EncryptFile(file)
	case "decrypt":
		err = e.DecryptFile(file)
	}
	fmt.Println()

	if err != nil {
		fmt.Fprintf(os.Stderr, "hypercrypt: %s\n", displayStatus(err))
		os.Exit(1)
	}
}

// displayStatus renders an error the way the CLI shows it to the user:
// the hcerr category when one is present, the raw error text otherwise.
func displayStatus(err error) string {
	if hcErr, ok := hcerr.As(err); ok {
		return hcErr.Code.String()
	}
	return err.Error()
}

func getParameters() (operation, file string, splits, joins int, err error) {
	encryptFlag := flag.Bool("e", false, "encrypt a file")
	decryptFlag := flag.Bool("d", false, "decrypt a file")
	splitFlag := flag.Int("s", 1, "number of ciphertext files to split into (encrypt)")
	joinFlag := flag.Int("j", 1, "number of ciphertext files to join from (decrypt)")
	flag.Parse()

	if (*encryptFlag && *decryptFlag) || (!*encryptFlag && !*decryptFlag) {
		return "", "", 0, 0, fmt.Errorf("must specify exactly one of -e (encrypt) or -d (decrypt)")
	}

	args := flag.Args()
	if len(args) != 1 {
		return "", "", 0, 0, fmt.Errorf("expected exactly one file argument, got %d", len(args))
	}

	if *encryptFlag {
		return "encrypt", args[0], *splitFlag, 1, nil
	}
	return "decrypt", args[0], 1, *joinFlag, nil
}

// newBarProgress returns an engine.ProgressFunc that renders a simple
// terminal-width-aware progress bar on stdout, falling back to a fixed
// width when stdout is not a terminal.
func newBarProgress() engine.ProgressFunc {
	return func(status engine.Status, percent int) {
		width := 40
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			width = w - 20
		}

		filled := percent * width / 100
		if filled > width {
			filled = width
		}
		bar := ""
		for i := 0; i < width; i++ {
			if i < filled {
				bar += "#"
			} else {
				bar += "-"
			}
		}
		fmt.Printf("\r%-28s [%s] %3d%%", status, bar, percent)
	}
}
