package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	return executeWith(logger, args...)
}

func executeWith(logger *logrus.Logger, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(logger)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	return dir
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCheck(t *testing.T) {
	source := "sine\n\tvolume 1\nout\n\tin <- id1:out\n"
	annotated := "sine id1\n\tvolume 1  # ERROR: Unknown parameter\nout id2\n\tin <- id1:out\n"
	dir := newProject(t, map[string]string{"main.txt": source})
	path := filepath.Join(dir, "main.txt")

	out, err := execute(t, "check", dir)
	assert.ErrorIs(t, err, errModules)
	assert.Contains(t, out, path+": line 2: volume 1: Unknown parameter")
	assert.Contains(t, out, "+sine id1\n")
	assert.Contains(t, out, "-sine\n")
	assert.Equal(t, source, read(t, path))

	_, err = execute(t, "check", "--write", dir)
	assert.ErrorIs(t, err, errModules)
	assert.Equal(t, annotated, read(t, path))

	// annotated file doesn't change anymore.
	out, err = execute(t, "check", "--write", dir)
	assert.ErrorIs(t, err, errModules)
	assert.NotContains(t, out, "+sine")
	assert.Equal(t, annotated, read(t, path))
}

func TestDebug(t *testing.T) {
	dir := newProject(t, map[string]string{"main.txt": "sine id1\n"})
	logger, _ := logtest.NewNullLogger()
	_, err := executeWith(logger, "check", dir)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	_, err = executeWith(logger, "--debug", "check", dir)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	_, err = executeWith(logger, "check", "--debug=false", dir)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestCheckValid(t *testing.T) {
	source := "# drone\nsine id1\n\t# low\n\tfrequency 55\n\nout id2\n\tin <- id1:out\n"
	dir := newProject(t, map[string]string{"main.txt": source})
	out, err := execute(t, "check", "--write", dir)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, source, read(t, filepath.Join(dir, "main.txt")))
}

func TestPlan(t *testing.T) {
	dir := newProject(t, map[string]string{
		"main.txt":  "out\n\tin <- id2:out\nsine\n",
		"cycle.txt": "gain id1\n\tin <- id2:out\ngain id2\n\tin <- id1:out\n",
	})
	out, err := execute(t, "plan", dir)
	assert.Error(t, err)
	assert.Contains(t, out, "main: id2 -> id1\n")
	assert.Contains(t, out, "cycle: dependency cycle between nodes: id1, id2\n")

	dir = newProject(t, map[string]string{"main.txt": "sine id1\n"})
	out, err = execute(t, "plan", "--dump", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "main: id1\n")
	assert.Contains(t, out, "Outlets")
}

func TestRun(t *testing.T) {
	dir := newProject(t, map[string]string{
		"main.txt": "sine\n\tfrequency 440\nout\n\tin <- id1:out\n\tchannels 2\n",
		"aim.yaml": "buffer_size: 64\noutput: none\n",
	})
	_, err := execute(t, "run", "--frames", "4", dir)
	require.NoError(t, err)
	assert.Equal(t, "sine id1\n\tfrequency 440\nout id2\n\tin <- id1:out\n\tchannels 2\n", read(t, filepath.Join(dir, "main.txt")))

	wavPath := filepath.Join(dir, "out.wav")
	_, err = execute(t, "run", "--frames", "4", "--output", "wav", "--wav", wavPath, dir)
	require.NoError(t, err)
	f, err := os.Open(wavPath)
	require.NoError(t, err)
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.Equal(t, 4*64*2, len(buf.Data))
}

func TestRunErrors(t *testing.T) {
	dir := newProject(t, map[string]string{
		"main.txt": "gain id1\n\tin <- id2:out\ngain id2\n\tin <- id1:out\n",
		"aim.yaml": "output: none\n",
	})
	_, err := execute(t, "run", "--frames", "1", dir)
	assert.Error(t, err)

	_, err = execute(t, "run", "--frames", "1", "--module", "missing", dir)
	assert.Error(t, err)

	_, err = execute(t, "run", "--output", "speakers", dir)
	assert.Error(t, err)
}

func TestAwaitReload(t *testing.T) {
	dir := newProject(t, map[string]string{"main.txt": "sine id1\n"})
	path := filepath.Join(dir, "main.txt")
	errTest := errors.New("test error")

	// run finished, its result stays in done.
	done := make(chan error, 1)
	done <- errTest
	reload, err := awaitReload(nil, nil, done, path, "sine id1\n")
	assert.NoError(t, err)
	assert.False(t, reload)
	assert.Equal(t, errTest, <-done)

	// watcher failed while running.
	errs := make(chan error, 1)
	errs <- errTest
	reload, err = awaitReload(nil, errs, make(chan error, 1), path, "sine id1\n")
	assert.ErrorIs(t, err, errTest)
	assert.False(t, reload)

	// watcher stopped without error, run finishes later.
	errs = make(chan error, 1)
	errs <- nil
	done = make(chan error, 1)
	go func() { done <- nil }()
	reload, err = awaitReload(nil, errs, done, path, "sine id1\n")
	assert.NoError(t, err)
	assert.False(t, reload)

	// other files and unchanged text are ignored.
	other := filepath.Join(dir, "other.txt")
	changes := make(chan string)
	written := make(chan error, 1)
	go func() {
		changes <- other
		changes <- path
		// unchanged path is handled once the next event is received.
		changes <- other
		written <- os.WriteFile(path, []byte("sine id1\n\tfrequency 110\n"), 0o644)
		changes <- path
	}()
	reload, err = awaitReload(changes, nil, make(chan error, 1), path, "sine id1\n")
	assert.NoError(t, err)
	assert.True(t, reload)
	assert.NoError(t, <-written)
}
