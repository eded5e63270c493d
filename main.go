package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"qstore/pkg/codec"
	"qstore/pkg/config"
	"qstore/pkg/core"
	"qstore/pkg/logger"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var command = &cobra.Command{
	Use:   "qstore [flags] PATH...",
	Short: "Compress files and pack directories",
	Long: `qstore stores and restores files and directory trees.

A directory is packed into PATH.` + config.DirSuffix + `, any other file is compressed
into PATH.` + config.FileSuffix + `. Files carrying one of those suffixes are restored
next to themselves instead. Existing files are never replaced without --force.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          entryPoint,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func entryPoint(cmd *cobra.Command, args []string) error {
	printVersion, _ := cmd.Flags().GetBool("version")
	if printVersion {
		cmd.Printf("qstore %s\n", Version)
		return nil
	}
	if len(args) == 0 {
		return cmd.Usage()
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(cfgFile)
	if err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	cfg, err := config.Load(v, args)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	return core.Run(cfg, log)
}

func init() {
	// use stdout as default output for cmd.Print()
	command.SetOut(os.Stdout)

	f := command.Flags()
	f.BoolP(config.KeyForce, "f", false, "Overwrite existing files")
	f.BoolP(config.KeyVerbose, "v", false, "Log every path decision")
	f.BoolP(config.KeyBundle, "b", false, "Pack all directory inputs into one container named after the first")
	f.BoolP(config.KeyList, "l", false, "List tree containers instead of extracting them")
	f.Bool(config.KeyProgress, false, "Show a progress bar for single files")
	f.String(config.KeyCodec, config.DefaultCodec,
		fmt.Sprintf("Compressor for single files (%s)", strings.Join(codec.Names(), ", ")))
	f.String("config", "", "Optional config file (yaml, json or toml)")
	f.Bool("version", false, "Application version")
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
