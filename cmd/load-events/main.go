package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/torus/internal/loadgen"
)

// Default configuration constants.
const (
	defaultNumEvents   = 10000
	defaultRepeatRatio = 0.2
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numEvents  = flag.Int("events", defaultNumEvents, "Number of events to submit")
		repeat     = flag.Float64("repeat", defaultRepeatRatio, "Share of events that reuse an earlier identifier")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", loadgen.DefaultSettle, "Upper bound on waiting for queues to drain")
		outputFile = flag.String("output", "", "Write the submitted sequence to this JSON file")
		logFile    = flag.String("log", "", "Log file for run output (default: load_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	if err := loadgen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &loadgen.Config{
		BaseURL:     *baseURL,
		NumEvents:   *numEvents,
		RepeatRatio: *repeat,
		Workers:     *workers,
		Timeout:     *timeout,
		Settle:      *settle,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
