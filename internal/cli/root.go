// Package cli implements the reportctl command tree.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yashubustudio/clinicalreport/internal/app"
	"yashubustudio/clinicalreport/internal/config"
	"yashubustudio/clinicalreport/internal/logging"
)

// runtime carries state shared by every subcommand after flag parsing.
type runtime struct {
	cfgFile  string
	logLevel string

	cfg    config.Config
	logger *zap.Logger
}

func (r *runtime) load() error {
	cfg, err := config.Load(r.cfgFile)
	if err != nil {
		return err
	}
	if lvl := strings.TrimSpace(r.logLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	r.cfg = cfg
	r.logger = logger
	return nil
}

func (r *runtime) service(opts ...app.Option) (*app.Service, error) {
	return app.NewService(r.cfg, r.logger, opts...)
}

func (r *runtime) sync() {
	if r.logger != nil {
		_ = r.logger.Sync()
	}
}

// NewRootCmd builds the reportctl command tree.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "reportctl labels radiology reports and answers questions about clinical text",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipConfig"] == "true" {
				return nil
			}
			return rt.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			rt.sync()
		},
	}
	root.PersistentFlags().StringVarP(&rt.cfgFile, "config", "c", config.DefaultFile, "config file (YAML)")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newLabelsCmd(rt),
		newAnswerCmd(rt),
		newBatchCmd(rt),
		newServeCmd(rt),
		newExamplesCmd(),
		newConfigCmd(rt),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, app.Message(err))
		os.Exit(1)
	}
}
