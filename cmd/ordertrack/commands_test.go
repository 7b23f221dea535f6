package main

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

var orderIDRe = regexp.MustCompile(`MX-\d{8}-\d{6}`)

func TestPlaceStatusTrack(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "place", "--dir", dir, "--cadence", "5ms", "mx-para-500:2", "mx-vita-c")
	require.NoError(t, err)
	id := orderIDRe.FindString(out)
	require.NotEmpty(t, id, out)
	assert.Contains(t, out, "INR")

	out, err = execute(t, "status", "--dir", dir, "--cadence", "5ms", id)
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = execute(t, "track", "--dir", dir, "--cadence", "5ms", "--interval", "2ms", id)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "DELIVERED"), out)

	out, err = execute(t, "status", "--dir", dir, id)
	require.NoError(t, err)
	assert.Contains(t, out, "DELIVERED")
	assert.Equal(t, 6, strings.Count(out, "\n"), out)
}

func TestPlaceRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "place", "--dir", dir, "nope")
	assert.Error(t, err)

	_, err = execute(t, "place", "--dir", dir, "mx-para-500:0")
	assert.Error(t, err)

	_, err = execute(t, "status", "--dir", dir, "MX-20260106-000000")
	assert.Error(t, err)
}

func TestProducts(t *testing.T) {
	out, err := execute(t, "products", "--category", "Pain Relief")
	require.NoError(t, err)
	assert.Contains(t, out, "mx-para-500")
	assert.Contains(t, out, "300.00")
	assert.Contains(t, out, "page 1/1, 2 total")
}

func TestParseLine(t *testing.T) {
	id, qty, err := parseLine("mx-omz-20:3")
	require.NoError(t, err)
	assert.Equal(t, "mx-omz-20", id)
	assert.Equal(t, 3, qty)

	_, qty, err = parseLine("mx-omz-20")
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	_, _, err = parseLine("mx-omz-20:x")
	assert.Error(t, err)
}
