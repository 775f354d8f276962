package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/zkclient/pkg/zymkey"
)

// LEDCommand creates the led command
func LEDCommand() *cli.Command {
	return &cli.Command{
		Name:  "led",
		Usage: "Control the device LED",
		Commands: []*cli.Command{
			{
				Name:  "on",
				Usage: "Turn the LED on",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withClient(cmd, func(c *zymkey.Client) error {
						return c.LEDOn()
					})
				},
			},
			{
				Name:  "off",
				Usage: "Turn the LED off",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withClient(cmd, func(c *zymkey.Client) error {
						return c.LEDOff()
					})
				},
			},
			{
				Name:  "flash",
				Usage: "Flash the LED",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "on",
						Usage: "Time the LED is on in each cycle",
						Value: time.Second,
					},
					&cli.DurationFlag{
						Name:  "off",
						Usage: "Time the LED is off in each cycle (0 mirrors --on)",
					},
					&cli.Uint32Flag{
						Name:  "count",
						Usage: "Number of flashes (0 flashes until the next LED command)",
					},
				},
				Action: runLEDFlashCommand,
			},
		},
	}
}

func runLEDFlashCommand(ctx context.Context, cmd *cli.Command) error {
	on, off, count := cmd.Duration("on"), cmd.Duration("off"), cmd.Uint32("count")
	return withClient(cmd, func(c *zymkey.Client) error {
		if err := c.LEDFlash(on, off, count); err != nil {
			return fmt.Errorf("failed to flash LED: %w", err)
		}
		return nil
	})
}

// I2CCommand creates the i2c command
func I2CCommand() *cli.Command {
	return &cli.Command{
		Name:  "i2c",
		Usage: "Configure the I2C interface",
		Commands: []*cli.Command{
			{
				Name:      "set-addr",
				Usage:     "Set the I2C address (0x30-0x37 or 0x60-0x67)",
				ArgsUsage: "ADDRESS",
				Action:    runSetI2CAddrCommand,
			},
		},
	}
}

func runSetI2CAddrCommand(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("exactly one ADDRESS argument is required")
	}
	addr, err := strconv.ParseInt(cmd.Args().First(), 0, 32)
	if err != nil {
		return fmt.Errorf("invalid I2C address: %w", err)
	}

	return withClient(cmd, func(c *zymkey.Client) error {
		if err := c.SetI2CAddress(int(addr)); err != nil {
			return fmt.Errorf("failed to set I2C address 0x%02x: %w", addr, err)
		}
		fmt.Fprintf(cmd.Root().Writer, "I2C address set to 0x%02x\n", addr)
		return nil
	})
}

// TapCommand creates the tap command
func TapCommand() *cli.Command {
	return &cli.Command{
		Name:  "tap",
		Usage: "Configure and wait for tap detection",
		Commands: []*cli.Command{
			{
				Name:  "sensitivity",
				Usage: "Set tap sensitivity",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "axis",
						Usage: "Axis to configure (x, y, z, all)",
						Value: "all",
					},
					&cli.Float32Flag{
						Name:     "percent",
						Usage:    "Sensitivity in percent (0 disables detection, 100 is most sensitive)",
						Required: true,
					},
				},
				Action: runTapSensitivityCommand,
			},
			{
				Name:  "wait",
				Usage: "Wait for a tap",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait",
						Value: 10 * time.Second,
					},
				},
				Action: runTapWaitCommand,
			},
		},
	}
}

func runTapSensitivityCommand(ctx context.Context, cmd *cli.Command) error {
	axis, err := zymkey.ParseAxis(cmd.String("axis"))
	if err != nil {
		return err
	}
	pct := cmd.Float32("percent")

	return withClient(cmd, func(c *zymkey.Client) error {
		if err := c.SetTapSensitivity(axis, pct); err != nil {
			return fmt.Errorf("failed to set tap sensitivity: %w", err)
		}
		return nil
	})
}

func runTapWaitCommand(ctx context.Context, cmd *cli.Command) error {
	timeout := cmd.Duration("timeout")
	return withClient(cmd, func(c *zymkey.Client) error {
		err := c.WaitForTap(timeout)
		if zymkey.IsTimeout(err) {
			return fmt.Errorf("no tap detected within %v", timeout)
		}
		if err != nil {
			return fmt.Errorf("failed to wait for tap: %w", err)
		}
		fmt.Fprintln(cmd.Root().Writer, "tap detected")
		return nil
	})
}

// RTCCommand creates the rtc command
func RTCCommand() *cli.Command {
	return &cli.Command{
		Name:  "rtc",
		Usage: "Read or set the real-time clock",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Print the RTC time",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "precise",
						Usage: "Wait for the next second boundary before reading",
					},
					&cli.BoolFlag{
						Name:  "epoch",
						Usage: "Print seconds since the epoch instead of RFC 3339",
					},
				},
				Action: runRTCGetCommand,
			},
			{
				Name:  "set",
				Usage: "Set the RTC to the host GMT time",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withClient(cmd, func(c *zymkey.Client) error {
						if err := c.SetRTCTime(); err != nil {
							return fmt.Errorf("failed to set RTC: %w", err)
						}
						return nil
					})
				},
			},
		},
	}
}

func runRTCGetCommand(ctx context.Context, cmd *cli.Command) error {
	return withClient(cmd, func(c *zymkey.Client) error {
		t, err := c.RTCTime(cmd.Bool("precise"))
		if err != nil {
			return fmt.Errorf("failed to read RTC: %w", err)
		}
		if cmd.Bool("epoch") {
			fmt.Fprintln(cmd.Root().Writer, t.Unix())
		} else {
			fmt.Fprintln(cmd.Root().Writer, t.Format(time.RFC3339))
		}
		return nil
	})
}

// InfoCommand creates the info command
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show device information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withClient(cmd, func(c *zymkey.Client) error {
				info, err := c.Info()
				if err != nil {
					return fmt.Errorf("failed to get device info: %w", err)
				}

				w := cmd.Root().Writer
				fmt.Fprintln(w, "Zymkey Device Information:")
				fmt.Fprintf(w, "  Model:            %s\n", info.Model)
				fmt.Fprintf(w, "  Firmware Version: %s\n", info.FirmwareVersion)
				fmt.Fprintf(w, "  Serial Number:    %s\n", info.SerialNumber)
				return nil
			})
		},
	}
}
