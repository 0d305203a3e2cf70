package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dl/fileinfo/internal/cli"
)

func main() {
	os.Exit(execute(append(cli.LoadConfigArgs(), os.Args[1:]...)))
}

// options holds raw flag values that need parsing before they fit cli.Config.
type options struct {
	color string
}

func execute(args []string) int {
	var cfg cli.Config
	var opts options
	code := cli.ExitOK

	cmd := newRootCmd(&cfg, &opts, func() error {
		mode, err := cli.ParseColorMode(opts.color)
		if err != nil {
			return err
		}
		cfg.Color = mode
		code = cli.Run(cfg)
		return nil
	})
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fileinfo:", err)
		return cli.ExitError
	}
	return code
}

func newRootCmd(cfg *cli.Config, opts *options, run func() error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fileinfo [flags] PATH...",
		Short: "Resolve paths to canonical files and describe them",
		Long: `fileinfo resolves each PATH to its canonical absolute form and prints
the full path, folder, file name and size.

Paths starting with ./ or ../ are resolved against --base when it is set;
any other path is resolved against the current directory.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			return run()
		},
	}
	bindFlags(cmd.Flags(), cfg, opts)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, cfg *cli.Config, opts *options) {
	fs.StringVarP(&cfg.BaseDir, "base", "b", "", "base directory for ./ and ../ paths")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "print one JSON object per path")
	fs.BoolVar(&cfg.ShowContent, "content", false, "include file content")
	fs.BoolVar(&cfg.RunScripts, "run", false, "run each file as a script and print its exports as JSON")
	fs.StringVar(&opts.color, "color", "auto", "colorize output: auto, always or never")
	fs.IntVarP(&cfg.Workers, "workers", "j", 0, "number of resolver workers (0 = one per CPU)")
	fs.Int64Var(&cfg.MmapThreshold, "mmap-threshold", 0, "file size in bytes from which files are memory-mapped (0 = default)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log debug output to stderr")
}
