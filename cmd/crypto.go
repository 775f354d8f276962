package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	zkcrypto "github.com/anchorageoss/zkclient/crypto"
	"github.com/anchorageoss/zkclient/pkg/zymkey"
)

// ErrSignatureMismatch is returned by the verify command when the device
// reports that the signature does not match.
var ErrSignatureMismatch = errors.New("signature does not match")

func slotFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "slot",
		Usage: "Key slot",
		Value: int(zymkey.DefaultSlot),
	}
}

func domainFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "domain",
		Usage: "Key domain (zymkey, cloud)",
		Value: zymkey.KeyDomainLocal.String(),
	}
}

// RandCommand creates the rand command
func RandCommand() *cli.Command {
	return &cli.Command{
		Name:  "rand",
		Usage: "Read random bytes from the device",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "bytes",
				Usage: "Number of bytes",
				Value: 32,
			},
			outFlag(),
		},
		Action: runRandCommand,
	}
}

func runRandCommand(ctx context.Context, cmd *cli.Command) error {
	n := cmd.Int("bytes")
	return withClient(cmd, func(c *zymkey.Client) error {
		b, err := c.RandomBytes(n)
		if err != nil {
			return fmt.Errorf("failed to get random bytes: %w", err)
		}
		return writeOutput(cmd, b)
	})
}

// LockCommand creates the lock command
func LockCommand() *cli.Command {
	return &cli.Command{
		Name:   "lock",
		Usage:  "Encrypt and sign data with a device key",
		Flags:  append(inputFlags("data to lock"), domainFlag(), outFlag()),
		Action: runB2BCommand((*zymkey.Client).Lock, "lock"),
	}
}

// UnlockCommand creates the unlock command
func UnlockCommand() *cli.Command {
	return &cli.Command{
		Name:   "unlock",
		Usage:  "Verify and decrypt data locked by the device",
		Flags:  append(inputFlags("locked data"), domainFlag(), outFlag()),
		Action: runB2BCommand((*zymkey.Client).Unlock, "unlock"),
	}
}

func runB2BCommand(op func(*zymkey.Client, []byte, zymkey.KeyDomain) ([]byte, error), verb string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		domain, err := zymkey.ParseKeyDomain(cmd.String("domain"))
		if err != nil {
			return err
		}
		data, err := readInput(cmd)
		if err != nil {
			return err
		}

		return withClient(cmd, func(c *zymkey.Client) error {
			out, err := op(c, data, domain)
			if err != nil {
				return fmt.Errorf("failed to %s data: %w", verb, err)
			}
			return writeOutput(cmd, out)
		})
	}
}

// SignCommand creates the sign command
func SignCommand() *cli.Command {
	return &cli.Command{
		Name:   "sign",
		Usage:  "Sign the SHA-256 digest of data",
		Flags:  append(inputFlags("data to sign"), slotFlag(), outFlag()),
		Action: runSignCommand,
	}
}

func runSignCommand(ctx context.Context, cmd *cli.Command) error {
	data, err := readInput(cmd)
	if err != nil {
		return err
	}
	slot := zymkey.Slot(cmd.Int("slot"))

	return withClient(cmd, func(c *zymkey.Client) error {
		sig, err := c.Sign(data, slot)
		if err != nil {
			return fmt.Errorf("failed to sign: %w", err)
		}
		return writeOutput(cmd, sig)
	})
}

// VerifyCommand creates the verify command
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify a signature over the SHA-256 digest of data",
		Flags: append(inputFlags("signed data"),
			&cli.StringFlag{
				Name:     "signature",
				Usage:    "Signature as hex",
				Required: true,
			},
			slotFlag(),
		),
		Action: runVerifyCommand,
	}
}

func runVerifyCommand(ctx context.Context, cmd *cli.Command) error {
	data, err := readInput(cmd)
	if err != nil {
		return err
	}
	sig, err := hex.DecodeString(strings.TrimSpace(cmd.String("signature")))
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	slot := zymkey.Slot(cmd.Int("slot"))

	return withClient(cmd, func(c *zymkey.Client) error {
		ok, err := c.Verify(data, sig, slot)
		if err != nil {
			return fmt.Errorf("failed to verify: %w", err)
		}
		if !ok {
			return ErrSignatureMismatch
		}
		fmt.Fprintln(cmd.Root().Writer, "✓ Signature valid")
		return nil
	})
}

// PubKeyCommand creates the pubkey command
func PubKeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "pubkey",
		Usage: "Export the public key of a slot",
		Flags: []cli.Flag{
			slotFlag(),
			&cli.BoolFlag{
				Name:  "pem",
				Usage: "Print a PKIX PEM block instead of raw hex",
			},
			outFlag(),
		},
		Action: runPubKeyCommand,
	}
}

func runPubKeyCommand(ctx context.Context, cmd *cli.Command) error {
	slot := zymkey.Slot(cmd.Int("slot"))
	return withClient(cmd, func(c *zymkey.Client) error {
		raw, err := c.ECDSAPublicKey(slot)
		if err != nil {
			return fmt.Errorf("failed to get public key: %w", err)
		}
		if !cmd.Bool("pem") {
			return writeOutput(cmd, raw)
		}

		pub, err := zkcrypto.ParsePublicKey(raw)
		if err != nil {
			return fmt.Errorf("failed to parse public key: %w", err)
		}
		block, err := zkcrypto.MarshalPublicKeyPEM(pub)
		if err != nil {
			return err
		}
		if cmd.String("out") != "" {
			return writeOutput(cmd, block)
		}
		_, err = cmd.Root().Writer.Write(block)
		return err
	})
}
