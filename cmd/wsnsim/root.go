package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// newRootCommand assembles the CLI. Commands are built after the .env file
// is loaded, so the WSNSIM_* variables can serve as flag defaults.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wsnsim",
		Short: "wsnsim simulates flooding protocols in a wireless sensor network",
		Long: `wsnsim runs discrete-event simulations of a wireless sensor network in
which a sink floods beacons through a grid of sensors over a shared lossy
medium. Runs are deterministic for a given seed.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newMonteCarloCommand())

	return cmd
}

// execute runs the CLI. Recorder databases flush through atexit, so errors
// leave through atexit.Exit rather than os.Exit.
func execute() {
	if err := newRootCommand().Execute(); err != nil {
		atexit.Exit(1)
	}
}

func envInt(key string, fallback int) int {
	v, found := os.LookupEnv(key)
	if !found {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v, found := os.LookupEnv(key)
	if !found {
		return fallback
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v, found := os.LookupEnv(key)
	if !found {
		return fallback
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
