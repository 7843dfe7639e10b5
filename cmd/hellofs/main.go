package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"fusebridge/internal/config"
	"fusebridge/internal/demo"
	"fusebridge/internal/logging"
	"fusebridge/mount"
)

var (
	logger = logging.GetLogger()
)

func main() {
	// Parse command line flags
	tree := flag.Bool("tree", false, "Serve a generated tree instead of a single hello.txt")
	driverName := flag.String("driver", "", "FUSE driver: libfuse, bazil or gofuse")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	envFile := flag.String("env", "", "Read configuration from this .env file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] MOUNTPOINT [fuse args]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Configure logging based on flags
	if *verbose && cfg.LogLevel < logging.LevelDebug {
		cfg.LogLevel = logging.LevelDebug
	}
	if err := logging.Configure(cfg.LoggingOptions()); err != nil {
		logger.Warn("Failed to close previous log sink: %v", err)
	}

	if *driverName != "" {
		if cfg.Driver, err = config.ParseDriver(*driverName); err != nil {
			logger.Error("%v", err)
			os.Exit(2)
		}
	}

	if flag.NArg() < 1 {
		logger.Error("Mount point is required")
		flag.Usage()
		os.Exit(2)
	}
	mountPoint := filepath.Clean(flag.Arg(0))

	args := config.MountOptions{FSName: cfg.FSName, AllowOther: cfg.AllowOther}.Args()
	if cfg.Debug {
		args = append(args, "-d")
	}
	args = append(args, flag.Args()[1:]...)

	logger.Info("Starting hellofs...")
	logger.Debug("Mount point: %s", mountPoint)
	logger.Debug("Driver: %s", cfg.Driver)

	opts := []mount.Option{
		mount.WithDriver(cfg.Driver),
		mount.WithProgram("hellofs"),
	}
	if *tree {
		err = mount.Run(demo.DefaultTree(), mountPoint, args, opts...)
	} else {
		err = mount.Run(demo.Hello{}, mountPoint, args, opts...)
	}
	if err != nil {
		logger.Error("Mount failed: %v", err)
		os.Exit(1)
	}

	logger.Info("Clean shutdown complete")
}
