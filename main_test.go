package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/client"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/config"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/driver"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/replay"
)

func init() {
	monitoring.SetLogger(nil)
}

// parseRun parses args with a fresh run command and returns the merged
// settings.
func parseRun(t *testing.T, args ...string) (*config.ClientConfig, error) {
	t.Helper()
	var f runFlags
	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags(args))

	flags := cmd.Flags()
	f.configPath, _ = flags.GetString("config")
	f.host, _ = flags.GetString("host")
	f.port, _ = flags.GetInt("port")
	f.timeout, _ = flags.GetDuration("timeout")
	f.fitnessFile, _ = flags.GetString("fitness-file")
	f.stopOn, _ = flags.GetStringSlice("stop-on")
	f.debugListen, _ = flags.GetString("debug-listen")
	f.logLevel, _ = flags.GetString("log-level")
	return loadSettings(cmd, &f)
}

func TestLoadSettings_Defaults(t *testing.T) {
	cc, err := parseRun(t)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cc.GetHost())
	assert.Equal(t, 3001, cc.GetPort())
	assert.Equal(t, time.Second, cc.GetTimeout())
	assert.Equal(t, "fitnessFile", cc.GetFitnessFile())
	assert.Empty(t, cc.GetStopOn())
}

func TestLoadSettings_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: torcs.lan\nport: 3005\nfitness_file: from-file\n"), 0644))

	cc, err := parseRun(t, "--config", path, "--port", "3002", "--stop-on", "crashed,lap")
	require.NoError(t, err)

	assert.Equal(t, "torcs.lan", cc.GetHost())
	assert.Equal(t, 3002, cc.GetPort())
	assert.Equal(t, "from-file", cc.GetFitnessFile())
	assert.Equal(t, []string{"crashed", "lap"}, cc.GetStopOn())
}

func TestLoadSettings_Invalid(t *testing.T) {
	_, err := parseRun(t, "--port", "0")
	assert.Error(t, err)

	_, err = parseRun(t, "--stop-on", "bored")
	assert.Error(t, err)

	_, err = parseRun(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "scr-client dev"), out.String())
}

func TestClientConfig(t *testing.T) {
	cc, err := config.ParseClientConfig([]byte("host: 127.0.0.1\nport: 3010\ntimeout: 300ms\nstop_on: [stuck]\nweights:\n  speed: 2\n"))
	require.NoError(t, err)

	cfg, err := clientConfig(cc)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3010", cfg.Address())
	assert.Equal(t, 300*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 2.0, cfg.Weights.Speed)
	assert.Equal(t, client.StopConditions{client.StopOnStuck}, cfg.StopOn)
}

func startReplay(t *testing.T, ticks int) *replay.Server {
	t.Helper()
	srv, err := replay.Listen("127.0.0.1:0", replay.Straight(ticks, 80), replay.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return srv
}

func TestRace_AgainstReplayServer(t *testing.T) {
	srv := startReplay(t, 15)

	cc, err := config.ParseClientConfig([]byte(
		"host: 127.0.0.1\nport: " + strconv.Itoa(srv.Addr().Port) + "\ntimeout: 200ms\ndebug_listen: 127.0.0.1:0\n"))
	require.NoError(t, err)

	sink := &client.MemorySink{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fitness, err := race(ctx, cc, driver.NewSimple(), sink)
	require.NoError(t, err)
	require.Len(t, sink.Values(), 1)
	assert.Equal(t, sink.Values()[0], fitness)
	assert.Len(t, srv.Commands(), 15)
}

func TestRunCommand_WritesFitnessFile(t *testing.T) {
	srv := startReplay(t, 10)
	fitnessPath := filepath.Join(t.TempDir(), "runs", "fitness")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{
		"run",
		"--host", "127.0.0.1",
		"--port", strconv.Itoa(srv.Addr().Port),
		"--timeout", "200ms",
		"--fitness-file", fitnessPath,
		"--log-level", "error",
	})
	root.SetContext(context.Background())

	require.NoError(t, root.Execute())

	data, err := os.ReadFile(fitnessPath)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(out.String()), string(data))
}

func TestRunCommand_BadLogLevel(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--log-level", "chatty"})
	assert.Error(t, root.Execute())
}
