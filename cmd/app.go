package cmd

import (
	"github.com/urfave/cli/v3"
)

// DefaultSimStatePath is where the simulator keeps its seed between runs.
const DefaultSimStatePath = "~/.config/zkctl/simulator.cbor"

// NewApp creates the zkctl root command
func NewApp() *cli.Command {
	return &cli.Command{
		Name:  "zkctl",
		Usage: "Zymkey hardware security module client",
		Flags: GlobalFlags(),
		Commands: []*cli.Command{
			LEDCommand(),
			I2CCommand(),
			TapCommand(),
			RTCCommand(),
			InfoCommand(),
			RandCommand(),
			LockCommand(),
			UnlockCommand(),
			SignCommand(),
			VerifyCommand(),
			PubKeyCommand(),
		},
	}
}

// GlobalFlags returns the flags shared by every command. Each can also be set
// from the environment.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "simulator",
			Usage:   "Use the software simulator instead of libzk_app_utils",
			Sources: cli.EnvVars("ZKCTL_SIMULATOR"),
		},
		&cli.StringFlag{
			Name:    "sim-state",
			Usage:   "Simulator state file (empty for a throwaway simulator)",
			Value:   DefaultSimStatePath,
			Sources: cli.EnvVars("ZKCTL_SIM_STATE"),
		},
		&cli.StringFlag{
			Name:    "audit-log",
			Usage:   "Append a JSON line per device operation to this file",
			Sources: cli.EnvVars("ZKCTL_AUDIT_LOG"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "warn",
			Sources: cli.EnvVars("ZKCTL_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format (text, json)",
			Value:   "text",
			Sources: cli.EnvVars("ZKCTL_LOG_FORMAT"),
		},
	}
}
