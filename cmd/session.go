package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/zkclient/internal/audit"
	"github.com/anchorageoss/zkclient/pkg/zymkey"
	"github.com/anchorageoss/zkclient/pkg/zymkey/zksim"
)

// session bundles an open client with what must be released after the
// command: the audit file and, in simulator mode, the state to persist.
type session struct {
	client    *zymkey.Client
	sim       *zksim.Device
	statePath string
	auditFile *os.File
	logger    *slog.Logger
}

// openSession opens a client as selected by the global flags.
func openSession(cmd *cli.Command) (*session, error) {
	logger, err := newLogger(cmd.String("log-level"), cmd.String("log-format"), cmd.Root().ErrWriter)
	if err != nil {
		return nil, err
	}

	s := &session{logger: logger}
	opts := []zymkey.Option{zymkey.WithLogger(logger)}

	if path := cmd.String("audit-log"); path != "" {
		path, err = homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand audit log path: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		s.auditFile = f
		// zkctl only appends to the trail, so keep a single entry in memory.
		opts = append(opts, zymkey.WithRecorder(audit.NewLogger(f, 1)))
	}

	var lib zymkey.Library
	if cmd.Bool("simulator") {
		if err := s.loadSimulator(cmd.String("sim-state")); err != nil {
			s.release()
			return nil, err
		}
		lib = s.sim
	} else {
		lib = zymkey.NativeLibrary()
	}

	client, err := zymkey.Open(lib, opts...)
	if err != nil {
		s.release()
		return nil, fmt.Errorf("failed to open zymkey: %w", err)
	}
	s.client = client
	return s, nil
}

func (s *session) loadSimulator(path string) error {
	if path == "" {
		s.sim = zksim.New()
		return nil
	}

	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand simulator state path: %w", err)
	}
	s.statePath = path

	sim, err := zksim.Load(path)
	switch {
	case err == nil:
		s.sim = sim
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info("creating simulator state", "path", path)
		s.sim = zksim.New()
	default:
		return err
	}
	return nil
}

// Close closes the client and persists simulator state.
func (s *session) Close() error {
	defer s.release()

	err := s.client.Close()
	if s.sim != nil && s.statePath != "" {
		if mkErr := os.MkdirAll(filepath.Dir(s.statePath), 0o700); mkErr != nil {
			return errors.Join(err, fmt.Errorf("failed to create simulator state directory: %w", mkErr))
		}
		err = errors.Join(err, s.sim.Save(s.statePath))
	}
	return err
}

func (s *session) release() {
	if s.auditFile != nil {
		s.auditFile.Close()
		s.auditFile = nil
	}
}

// withClient runs fn with an open client and closes it afterwards.
func withClient(cmd *cli.Command, fn func(*zymkey.Client) error) (err error) {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close zymkey session: %w", closeErr)
		}
	}()
	return fn(s.client)
}

func newLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
