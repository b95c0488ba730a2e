//go:build unix

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"
)

// When set, the test binary acts as a process that handles one interrupt
// and then hangs.
const helperEnv = "TASKMAN_WANT_SIGNAL_HELPER"

func TestMain(m *testing.M) {
	if os.Getenv(helperEnv) == "1" {
		ctx, stop := interruptContext(context.Background())
		fmt.Println("ready")
		<-ctx.Done()
		fmt.Println("cancelled")
		time.Sleep(time.Minute)
		stop()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestSecondSignalKillsProcess(t *testing.T) {
	c := exec.Command(os.Args[0])
	c.Env = append(os.Environ(), helperEnv+"=1")
	out, err := c.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	lines := bufio.NewScanner(out)
	expect := func(want string) {
		t.Helper()
		if !lines.Scan() || lines.Text() != want {
			c.Process.Kill()
			t.Fatalf("helper: got %q, want %q", lines.Text(), want)
		}
	}

	expect("ready")
	if err := c.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	expect("cancelled")

	done := make(chan error, 1)
	go func() { done <- c.Wait() }()

	// The first signal only cancels. Keep signalling until the default
	// action takes over and the process dies.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	timeout := time.After(10 * time.Second)
	for {
		select {
		case err := <-done:
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("helper exited with %v, want killed by SIGTERM", err)
			}
			ws, ok := exitErr.Sys().(syscall.WaitStatus)
			if !ok || !ws.Signaled() || ws.Signal() != syscall.SIGTERM {
				t.Errorf("helper exit: got %v, want killed by SIGTERM", err)
			}
			return
		case <-tick.C:
			c.Process.Signal(syscall.SIGTERM)
		case <-timeout:
			c.Process.Kill()
			t.Fatal("second SIGTERM was swallowed")
		}
	}
}
