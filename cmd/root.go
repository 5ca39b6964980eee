package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stratoshell/stratoshell/pkg/logger"
	"go.uber.org/zap"
)

const envPrefix = "STRATOSHELL"

var (
	cfgFile     string
	verboseMode bool
)

func init() {
	cobra.OnInitialize(initConfig)
}

// NewRootCmd builds the command tree. Flags are bound to the global viper
// instance, so callers running it more than once should viper.Reset first.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stratoshell",
		Short: "Stratoshell manages cloud servers and the shells running on them",
		Long: `Stratoshell talks to the regional cloud control-plane APIs with signed
requests and opens SSH sessions to the servers it finds there.`,
		SilenceUsage:     true,
		PersistentPreRun: seedLogger,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.stratoshell.yaml)")
	flags.BoolVar(&verboseMode, "verbose", false, "Log debug output to the console")
	flags.StringP("output", "o", "", "Output format: table, json or yaml")
	flags.String("region", "", "Cloud region, for example ap-southeast-1")
	cobra.CheckErr(viper.BindPFlag(keyOutput, flags.Lookup("output")))
	cobra.CheckErr(viper.BindPFlag(keyRegion, flags.Lookup("region")))

	rootCmd.AddCommand(
		newProjectIDCmd(),
		newVPCCmd(),
		newSubnetCmd(),
		newImageCmd(),
		newFlavorCmd(),
		newEIPCmd(),
		newECSCmd(),
		newEVSCmd(),
		newNATCmd(),
		newCCECmd(),
		newSSHCmd(),
	)
	return rootCmd
}

// Execute runs the CLI until it finishes or the process receives SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		logger.Get().Errorf("Command failed: %v", err)
	}
	_ = logger.Get().Sync()
	return err
}

// loggerConfig turns the general.* settings into a logger config. --verbose
// adds debug output on the console.
func loggerConfig() logger.Config {
	cfg := logger.Config{
		Level:         logger.GlobalLogLevel,
		EnableConsole: logger.GlobalEnableConsoleLogger,
		InstantSync:   logger.GlobalInstantSync,
	}
	if logger.GlobalEnableFileLogger {
		cfg.FilePath = logger.GlobalLogPath
	}
	if verboseMode {
		cfg.Level = "debug"
		cfg.EnableConsole = true
	}
	return cfg
}

// seedLogger stores a logger tagged with the command path in the command's
// context, where the cloud client and the SSH layer pick it up.
func seedLogger(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	l := logger.Get().With(zap.String("command", cmd.CommandPath()))
	cmd.SetContext(logger.IntoContext(ctx, l))
}

// initConfig reads the config file, .env and the environment, then sets up
// logging from the result.
func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := homedir.Dir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".stratoshell")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	configErr := viper.ReadInConfig()

	logger.InitLoggerOutputs()
	cfg := loggerConfig()
	if err := logger.Initialize(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Logging to %s disabled: %v\n", cfg.FilePath, err)
		cfg.FilePath = ""
		cobra.CheckErr(logger.Initialize(cfg))
	}

	switch {
	case configErr == nil:
		logger.Get().Debugf("Using config file: %s", viper.ConfigFileUsed())
	case cfgFile != "":
		cobra.CheckErr(fmt.Errorf("failed to read config file %s: %w", cfgFile, configErr))
	}
}
