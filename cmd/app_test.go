package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorageoss/zkclient/internal/audit"
	"github.com/anchorageoss/zkclient/pkg/zymkey"
	"github.com/anchorageoss/zkclient/pkg/zymkey/zksim"
)

// runApp runs zkctl against a simulator persisted at statePath and returns
// what it wrote to stdout.
func runApp(t *testing.T, statePath string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	app := NewApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader("")

	argv := append([]string{"zkctl", "--simulator", "--sim-state", statePath}, args...)
	err := app.Run(context.Background(), argv)
	return stdout.String(), err
}

func newStatePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "zkctl", "simulator.cbor")
}

func TestNewApp(t *testing.T) {
	app := NewApp()
	require.Equal(t, "zkctl", app.Name)
	require.NotEmpty(t, app.Usage)

	names := map[string]bool{}
	for _, f := range GlobalFlags() {
		names[f.Names()[0]] = true
	}
	for _, name := range []string{"simulator", "sim-state", "audit-log", "log-level", "log-format"} {
		require.True(t, names[name], "Should have --%s flag", name)
	}
}

func TestInfoCommand(t *testing.T) {
	state := newStatePath(t)

	out, err := runApp(t, state, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "ZYMKEY-SIM")
	assert.FileExists(t, state)

	again, err := runApp(t, state, "info")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestLockUnlockCommands(t *testing.T) {
	state := newStatePath(t)

	for _, domain := range []string{"zymkey", "cloud"} {
		t.Run(domain, func(t *testing.T) {
			locked, err := runApp(t, state, "lock", "--domain", domain, "--data", "hello, world")
			require.NoError(t, err)
			lockedHex := strings.TrimSpace(locked)

			unlocked, err := runApp(t, state, "unlock", "--domain", domain, "--hex", lockedHex)
			require.NoError(t, err)
			assert.Equal(t, hex.EncodeToString([]byte("hello, world")), strings.TrimSpace(unlocked))
		})
	}

	t.Run("files", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "plain.txt")
		locked := filepath.Join(dir, "locked.bin")
		plain := filepath.Join(dir, "unlocked.txt")
		require.NoError(t, os.WriteFile(in, []byte("file contents"), 0o600))

		_, err := runApp(t, state, "lock", "--in", in, "--out", locked)
		require.NoError(t, err)
		_, err = runApp(t, state, "unlock", "--in", locked, "--out", plain)
		require.NoError(t, err)

		got, err := os.ReadFile(plain)
		require.NoError(t, err)
		assert.Equal(t, "file contents", string(got))
	})

	t.Run("wrong domain", func(t *testing.T) {
		locked, err := runApp(t, state, "lock", "--data", "secret")
		require.NoError(t, err)

		_, err = runApp(t, state, "unlock", "--domain", "cloud", "--hex", strings.TrimSpace(locked))
		assert.ErrorIs(t, err, zymkey.ErrOperationFailed)
	})

	t.Run("unknown domain", func(t *testing.T) {
		_, err := runApp(t, state, "lock", "--domain", "nowhere", "--data", "x")
		assert.ErrorIs(t, err, zymkey.ErrInvalidArgument)
	})

	t.Run("input selection", func(t *testing.T) {
		_, err := runApp(t, state, "lock", "--data", "x", "--hex", "00")
		assert.Error(t, err)
		_, err = runApp(t, state, "lock")
		assert.Error(t, err)
		_, err = runApp(t, state, "lock", "--hex", "zz")
		assert.Error(t, err)
	})
}

func TestSignVerifyCommands(t *testing.T) {
	state := newStatePath(t)

	sig, err := runApp(t, state, "sign", "--data", "hello, world")
	require.NoError(t, err)
	sigHex := strings.TrimSpace(sig)

	out, err := runApp(t, state, "verify", "--data", "hello, world", "--signature", sigHex)
	require.NoError(t, err)
	assert.Contains(t, out, "Signature valid")

	_, err = runApp(t, state, "verify", "--data", "Hello, world", "--signature", sigHex)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	_, err = runApp(t, state, "verify", "--data", "hello, world", "--signature", sigHex, "--slot", "1")
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	_, err = runApp(t, state, "sign", "--data", "x", "--slot=-1")
	assert.ErrorIs(t, err, zymkey.ErrInvalidArgument)
}

func TestPubKeyCommand(t *testing.T) {
	state := newStatePath(t)

	raw, err := runApp(t, state, "pubkey")
	require.NoError(t, err)
	key, err := hex.DecodeString(strings.TrimSpace(raw))
	require.NoError(t, err)
	assert.Len(t, key, 64)

	pem, err := runApp(t, state, "pubkey", "--pem")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pem, "-----BEGIN PUBLIC KEY-----"))

	other, err := runApp(t, state, "pubkey", "--slot", "2")
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}

func TestRandCommand(t *testing.T) {
	out, err := runApp(t, "", "rand", "--bytes", "16")
	require.NoError(t, err)
	b, err := hex.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Len(t, b, 16)

	_, err = runApp(t, "", "rand", "--bytes=-1")
	assert.ErrorIs(t, err, zymkey.ErrInvalidArgument)
}

func TestDeviceCommands(t *testing.T) {
	state := newStatePath(t)

	t.Run("led", func(t *testing.T) {
		_, err := runApp(t, state, "led", "on")
		require.NoError(t, err)
		_, err = runApp(t, state, "led", "flash", "--on", "100ms", "--count", "3")
		require.NoError(t, err)
		_, err = runApp(t, state, "led", "flash", "--on", "0s")
		assert.ErrorIs(t, err, zymkey.ErrInvalidArgument)
		_, err = runApp(t, state, "led", "off")
		require.NoError(t, err)
	})

	t.Run("i2c", func(t *testing.T) {
		out, err := runApp(t, state, "i2c", "set-addr", "0x61")
		require.NoError(t, err)
		assert.Contains(t, out, "0x61")

		_, err = runApp(t, state, "i2c", "set-addr", "0x40")
		assert.ErrorIs(t, err, zymkey.ErrOperationFailed)
		_, err = runApp(t, state, "i2c", "set-addr", "nope")
		assert.Error(t, err)
		_, err = runApp(t, state, "i2c", "set-addr")
		assert.Error(t, err)

		dev, err := zksim.Load(state)
		require.NoError(t, err)
		assert.Equal(t, 0x61, dev.I2CAddress())
	})

	t.Run("tap", func(t *testing.T) {
		_, err := runApp(t, state, "tap", "sensitivity", "--axis", "y", "--percent", "20")
		require.NoError(t, err)
		_, err = runApp(t, state, "tap", "sensitivity", "--axis", "w", "--percent", "20")
		assert.ErrorIs(t, err, zymkey.ErrInvalidArgument)

		dev, err := zksim.Load(state)
		require.NoError(t, err)
		assert.Equal(t, [3]float32{zksim.DefaultTapSensitivity, 20, zksim.DefaultTapSensitivity}, dev.TapSensitivity())

		_, err = runApp(t, state, "tap", "wait", "--timeout", "10ms")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no tap detected")
	})

	t.Run("rtc", func(t *testing.T) {
		out, err := runApp(t, state, "rtc", "get", "--epoch")
		require.NoError(t, err)
		epoch, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
		require.NoError(t, err)
		assert.Positive(t, epoch)

		_, err = runApp(t, state, "rtc", "set")
		require.NoError(t, err)
	})
}

func TestAuditLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")

	_, err := runApp(t, "", "--audit-log", logPath, "rand", "--bytes", "4")
	require.NoError(t, err)
	_, err = runApp(t, "", "--audit-log", logPath, "lock", "--domain", "cloud", "--data", "x")
	require.NoError(t, err)

	f, err := os.Open(logPath)
	require.NoError(t, err)
	defer f.Close()

	var ops []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e audit.Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		assert.Equal(t, audit.StatusOK, e.Status)
		ops = append(ops, e.Operation)
	}
	assert.Equal(t, []string{"Open", "RandomBytes", "Close", "Open", "Lock", "Close"}, ops)
}

func TestSessionCloseReleasesAuditLog(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	f, err := os.Create(filepath.Join(dir, "audit.jsonl"))
	require.NoError(t, err)

	sim := zksim.New()
	client, err := zymkey.Open(sim)
	require.NoError(t, err)

	s := &session{
		client:    client,
		sim:       sim,
		statePath: filepath.Join(blocker, "zkctl", "simulator.cbor"),
		auditFile: f,
	}

	err = s.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulator state directory")
	assert.Nil(t, s.auditFile)
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
	assert.False(t, sim.InUse())
}

func TestNativeUnavailable(t *testing.T) {
	var stdout bytes.Buffer
	app := NewApp()
	app.Writer = &stdout
	app.ErrWriter = &stdout

	err := app.Run(context.Background(), []string{"zkctl", "info"})
	assert.ErrorIs(t, err, zymkey.ErrDeviceUnavailable)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger("debug", "json", &buf)
	require.NoError(t, err)
	logger.Debug("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = newLogger("loud", "text", &buf)
	assert.Error(t, err)
	_, err = newLogger("info", "xml", &buf)
	assert.Error(t, err)
}
