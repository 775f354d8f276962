package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// inputFlags selects a command's payload: literal text, hex, or a file.
func inputFlags(what string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "data",
			Usage: what + " as text",
		},
		&cli.StringFlag{
			Name:  "hex",
			Usage: what + " as hex",
		},
		&cli.StringFlag{
			Name:  "in",
			Usage: "Read " + what + " from a file (- for stdin)",
		},
	}
}

// readInput returns the payload selected by exactly one of --data, --hex and
// --in.
func readInput(cmd *cli.Command) ([]byte, error) {
	var set []string
	for _, name := range []string{"data", "hex", "in"} {
		if cmd.IsSet(name) {
			set = append(set, "--"+name)
		}
	}
	if len(set) != 1 {
		return nil, errors.New("exactly one of --data, --hex or --in is required")
	}

	switch {
	case cmd.IsSet("data"):
		return []byte(cmd.String("data")), nil
	case cmd.IsSet("hex"):
		b, err := hex.DecodeString(strings.TrimSpace(cmd.String("hex")))
		if err != nil {
			return nil, fmt.Errorf("invalid hex input: %w", err)
		}
		return b, nil
	default:
		path := cmd.String("in")
		if path == "-" {
			return io.ReadAll(cmd.Root().Reader)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		return b, nil
	}
}

// writeOutput writes b raw to --out, or hex to the command writer.
func writeOutput(cmd *cli.Command, b []byte) error {
	if path := cmd.String("out"); path != "" {
		if err := os.WriteFile(path, b, 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprintln(cmd.Root().Writer, hex.EncodeToString(b))
	return err
}

func outFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "out",
		Usage: "Write raw output to a file instead of hex to stdout",
	}
}
