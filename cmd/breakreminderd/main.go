// Package main is the entry point for the breakreminderd daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/breakreminder/breakreminder/internal/buildinfo"
	"github.com/breakreminder/breakreminder/internal/config"
	"github.com/breakreminder/breakreminder/internal/daemon"
	"github.com/breakreminder/breakreminder/internal/daemon/focus"
	"github.com/breakreminder/breakreminder/internal/daemon/tray"
	"github.com/breakreminder/breakreminder/internal/models"
)

func main() {
	// Parse flags
	foreground := flag.Bool("foreground", false, "Run in foreground (no system tray)")
	port := flag.Int("port", 0, "Port to listen on (0 for dynamic allocation)")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("breakreminderd", buildinfo.String())
		return
	}

	log.SetPrefix("[breakreminderd] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := config.EnsureGlobalDir(); err != nil {
		log.Fatalf("Failed to create global directory: %v", err)
	}

	running, info, err := config.IsDaemonRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon already running on port %d (PID %d)", info.Port, info.PID)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	globalDir, err := config.GlobalDir()
	if err != nil {
		log.Fatalf("Failed to resolve global directory: %v", err)
	}

	d, err := daemon.New(daemon.Options{
		Port:     *port,
		Settings: settings,
		Signal:   focus.System(),
		WatchDir: globalDir,
	})
	if err != nil {
		log.Fatalf("Failed to create daemon: %v", err)
	}

	if *foreground {
		log.Println("Running in foreground mode (no system tray)")
		runForeground(d)
	} else {
		log.Println("Running in background mode (with system tray)")
		runWithTray(d)
	}
}

// start launches the daemon services and records daemon.yaml.
func start(d *daemon.Daemon) {
	if err := d.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start daemon: %v", err)
	}

	daemonInfo := models.NewDaemonInfo("localhost", d.Port(), os.Getpid())
	if err := config.SaveDaemonInfo(daemonInfo); err != nil {
		log.Fatalf("Failed to write daemon info: %v", err)
	}
	log.Printf("Daemon ready on port %d (PID %d)", d.Port(), os.Getpid())
}

// stop shuts the daemon down and removes daemon.yaml.
func stop(d *daemon.Daemon) {
	d.Stop()

	if err := config.RemoveDaemonInfo(); err != nil {
		log.Printf("Failed to remove daemon info: %v", err)
	}
	fmt.Println("Daemon stopped")
}

// runForeground runs the daemon without a system tray, blocking on signals.
func runForeground(d *daemon.Daemon) {
	start(d)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case <-d.Done():
	}

	stop(d)
}

// runWithTray runs the daemon with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(d *daemon.Daemon) {
	onStart := func() {
		start(d)
		d.Registry().OnChange(tray.Refresh)
		d.OnSettingsReload(tray.Refresh)

		// Quit the tray on SIGINT/SIGTERM or a shutdown request
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigCh:
				log.Printf("Received signal %v, shutting down...", sig)
			case <-d.Done():
			}
			tray.Quit()
		}()
	}

	onExit := func() {
		stop(d)
	}

	// This blocks the main goroutine until tray exits.
	tray.Run(d, onStart, onExit)
}
