package config

import (
	"os"
	"testing"

	"github.com/breakreminder/breakreminder/internal/models"
)

func TestDaemonInfoRoundTrip(t *testing.T) {
	useTempHome(t)

	info, err := LoadDaemonInfo()
	if err != nil || info != nil {
		t.Fatalf("LoadDaemonInfo on empty home = %v, %v; want nil, nil", info, err)
	}

	want := models.NewDaemonInfo("localhost", 50123, os.Getpid())
	if err := SaveDaemonInfo(want); err != nil {
		t.Fatalf("SaveDaemonInfo: %v", err)
	}

	running, got, err := IsDaemonRunning()
	if err != nil {
		t.Fatalf("IsDaemonRunning: %v", err)
	}
	if !running {
		t.Error("IsDaemonRunning = false for the current process")
	}
	if got.Port != want.Port || got.PID != want.PID {
		t.Errorf("daemon info = %+v, want port %d pid %d", got, want.Port, want.PID)
	}

	if err := RemoveDaemonInfo(); err != nil {
		t.Fatalf("RemoveDaemonInfo: %v", err)
	}
	if err := RemoveDaemonInfo(); err != nil {
		t.Fatalf("second RemoveDaemonInfo: %v", err)
	}
}
