package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/gogpu/splitframe"
	"github.com/spf13/afero"
	"github.com/vbauerster/mpb/v8"
)

// newTestEnv returns an env over an in-memory filesystem holding the
// repository's band shaders.
func newTestEnv(t *testing.T) (*env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, name := range []string{splitframe.DefaultVertexShader, splitframe.DefaultFragmentShader} {
		src, err := os.ReadFile(filepath.Join("..", "..", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if err := afero.WriteFile(fs, name, src, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	var stdout, stderr bytes.Buffer
	return &env{stdout: &stdout, stderr: &stderr, fs: fs}, &stdout, &stderr
}

var summaryLine = regexp.MustCompile(`^frames=600 bands=16 total=\d+\.\d{2}ms avg=\d+\.\d{3}ms/frame fps=\d+\.\d\n$`)

// runApp runs the CLI and skips the test when the shader compiler lacks a
// feature the band shaders use.
func runApp(t *testing.T, e *env, args ...string) error {
	t.Helper()
	t.Cleanup(func() { splitframe.SetLogger(nil) })
	err := newApp(e).Run(append([]string{"splitframe"}, args...))
	if errors.Is(err, splitframe.ErrShaderLoad) && strings.Contains(err.Error(), "not yet implemented") {
		t.Skipf("Skipping: naga feature not yet implemented: %v", err)
	}
	return err
}

func TestRunCommand(t *testing.T) {
	e, stdout, _ := newTestEnv(t)
	if err := runApp(t, e, "run", "--backend", "sim", "--profile", "1,1", "--width", "320", "--height", "200"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if got := stdout.String(); !summaryLine.MatchString(got) {
		t.Errorf("stdout = %q, want one summary line of 600 frames", got)
	}
}

func TestRunCommandProgress(t *testing.T) {
	e, stdout, _ := newTestEnv(t)
	if err := runApp(t, e, "run", "-b", "sim", "--progress", "--width", "64", "--height", "32"); err != nil {
		t.Fatalf("run --progress error = %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "frames=600 ") {
		t.Errorf("stdout = %q, want the summary line", stdout.String())
	}
}

func TestFrameBarRenders(t *testing.T) {
	var stderr bytes.Buffer
	e := &env{stdout: &bytes.Buffer{}, stderr: &stderr, fs: afero.NewMemMapFs()}
	p, bar := newFrameBar(e, 4, mpb.WithAutoRefresh())
	for i := 0; i < 4; i++ {
		bar.Increment()
	}
	bar.SetTotal(-1, true)
	p.Wait()

	if !bar.Completed() || bar.Current() != 4 {
		t.Errorf("bar completed=%v current=%d, want completed at 4", bar.Completed(), bar.Current())
	}
	out := stderr.String()
	for _, want := range []string{"Rendering", "4 / 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCommandVerboseLogs(t *testing.T) {
	e, _, stderr := newTestEnv(t)
	if err := runApp(t, e, "run", "--backend", "sim", "--profile", "1,8", "--verbose", "--width", "64", "--height", "32"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(stderr.String(), "deadline") {
		t.Errorf("verbose log has no deadline migrations:\n%s", stderr.String())
	}
}

func TestRunCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown backend", []string{"run", "--backend", "directx"}, splitframe.ErrUnknownBackend},
		{"bad size", []string{"run", "--backend", "sim", "--width", "0", "--height", "32"}, splitframe.ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEnv(t)
			if err := runApp(t, e, tt.args...); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunCommandMissingShaders(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := &env{stdout: &stdout, stderr: &stderr, fs: afero.NewMemMapFs()}
	err := runApp(t, e, "run", "--backend", "sim")
	if !errors.Is(err, splitframe.ErrShaderLoad) {
		t.Fatalf("error = %v, want ErrShaderLoad", err)
	}

	var report bytes.Buffer
	reportError(&report, err)
	for _, want := range []string{"setup failed", "op=", "status=ERROR_INITIALIZATION_FAILED", "at=shader.go:"} {
		if !strings.Contains(report.String(), want) {
			t.Errorf("report = %q, missing %q", report.String(), want)
		}
	}
}

func TestReportPlainError(t *testing.T) {
	var report bytes.Buffer
	reportError(&report, errors.New("boom"))
	if got := report.String(); got != "splitframe: boom\n" {
		t.Errorf("report = %q", got)
	}
}

func TestDevicesCommand(t *testing.T) {
	e, stdout, _ := newTestEnv(t)
	if err := runApp(t, e, "devices", "--backend", "sim", "--profile", "1,1,2"); err != nil {
		t.Fatalf("devices error = %v", err)
	}
	out := stdout.String()
	for _, want := range []string{
		"backends: ",
		"sim (using sim)",
		"devices (3):",
		"[0] sim-gpu0 (simulated) queues: 0:graphics x1, 1:transfer x2; host-visible",
		"groups (1):",
		"[0] [0 1 2]",
		"domain: cluster devices=[sim-gpu0, sim-gpu1, sim-gpu2] presentable=0x7 primary=0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatBackends(t *testing.T) {
	tests := []struct {
		all, avail []string
		want       string
	}{
		{[]string{"vulkan", "sim"}, []string{"vulkan", "sim"}, "vulkan, sim"},
		{[]string{"vulkan", "sim"}, []string{"sim"}, "vulkan (unavailable), sim"},
		{nil, nil, ""},
	}
	for _, tt := range tests {
		if got := formatBackends(tt.all, tt.avail); got != tt.want {
			t.Errorf("formatBackends(%v, %v) = %q, want %q", tt.all, tt.avail, got, tt.want)
		}
	}
}

func TestSnapshotCommand(t *testing.T) {
	e, stdout, _ := newTestEnv(t)
	if err := runApp(t, e, "snapshot", "-o", "frame.png", "--frames", "10", "--width", "200", "--height", "100"); err != nil {
		t.Fatalf("snapshot error = %v", err)
	}
	if !strings.Contains(stdout.String(), "wrote frame.png") {
		t.Errorf("stdout = %q", stdout.String())
	}

	f, err := e.fs.Open("frame.png")
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("snapshot is %dx%d, want 200x100", b.Dx(), b.Dy())
	}
}
