package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorageoss/zkclient/pkg/zymkey"
	"github.com/anchorageoss/zkclient/pkg/zymkey/zksim"
)

func TestRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, 0)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	logger.now = func() time.Time { return fixed }

	logger.Record("LEDOn", nil)
	logger.Record("Unlock", &zymkey.Error{Kind: zymkey.KindOperationFailed, Op: "zkUnlockDataB2B", Code: -22})
	logger.Record("Other", errors.New("plain failure"))

	var entries []Entry
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 3)

	t.Run("success entry", func(t *testing.T) {
		e := entries[0]
		assert.Equal(t, "LEDOn", e.Operation)
		assert.Equal(t, StatusOK, e.Status)
		assert.Equal(t, fixed, e.Timestamp)
		assert.Empty(t, e.Error)
		_, err := uuid.Parse(e.ID)
		assert.NoError(t, err)
	})

	t.Run("device error", func(t *testing.T) {
		e := entries[1]
		assert.Equal(t, StatusError, e.Status)
		assert.Equal(t, "operation failed", e.Kind)
		assert.Equal(t, "zkUnlockDataB2B", e.NativeOp)
		assert.Equal(t, -22, e.Code)
		assert.Contains(t, e.Error, "status -22")
	})

	t.Run("plain error", func(t *testing.T) {
		e := entries[2]
		assert.Equal(t, StatusError, e.Status)
		assert.Empty(t, e.Kind)
		assert.Equal(t, "plain failure", e.Error)
	})

	t.Run("unique ids", func(t *testing.T) {
		assert.NotEqual(t, entries[0].ID, entries[1].ID)
	})
}

func TestQuery(t *testing.T) {
	logger := NewLogger(nil, 0)
	for i := range 5 {
		op := "Sign"
		if i%2 == 1 {
			op = "Verify"
		}
		logger.Record(op, nil)
	}

	t.Run("all operations newest first", func(t *testing.T) {
		got := logger.Query("", 0)
		require.Len(t, got, 5)
		assert.Equal(t, "Sign", got[0].Operation)
		assert.Equal(t, "Verify", got[1].Operation)
	})

	t.Run("filter", func(t *testing.T) {
		assert.Len(t, logger.Query("Verify", 0), 2)
		assert.Len(t, logger.Query("Sign", 0), 3)
		assert.Empty(t, logger.Query("Lock", 0))
	})

	t.Run("limit", func(t *testing.T) {
		assert.Len(t, logger.Query("", 2), 2)
	})
}

func TestStoreLimit(t *testing.T) {
	logger := NewLogger(nil, 3)
	for i := range 10 {
		logger.Record(fmt.Sprintf("op%d", i), nil)
	}

	got := logger.Query("", 0)
	require.Len(t, got, 3)
	assert.Equal(t, "op9", got[0].Operation)
	assert.Equal(t, "op7", got[2].Operation)
}

func TestRecordsClientOperations(t *testing.T) {
	logger := NewLogger(nil, 0)
	dev := zksim.New()

	client, err := zymkey.Open(dev, zymkey.WithRecorder(logger))
	require.NoError(t, err)

	_, err = client.Lock([]byte("hello, world"), zymkey.KeyDomainLocal)
	require.NoError(t, err)
	_, err = client.Unlock([]byte("not locked"), zymkey.KeyDomainLocal)
	require.Error(t, err)
	require.NoError(t, client.Close())

	got := logger.Query("", 0)
	require.Len(t, got, 4)
	assert.Equal(t, "Close", got[0].Operation)

	unlock := logger.Query("Unlock", 0)
	require.Len(t, unlock, 1)
	assert.Equal(t, StatusError, unlock[0].Status)
	assert.Equal(t, "zkUnlockDataB2B", unlock[0].NativeOp)
	assert.Equal(t, zymkey.StatusInvalid, unlock[0].Code)
}
