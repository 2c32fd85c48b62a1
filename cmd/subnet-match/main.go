package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aglyzov/go-subnet/cidr"
	"github.com/aglyzov/go-subnet/rules"
	"github.com/aglyzov/go-subnet/subnettree"
)

const (
	envPrefix         = "SUBNET_MATCH"
	defaultConfigName = ".subnet-match"
)

type options struct {
	configFile string
	logLevel   string
	rulesFile  string
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "subnet-match",
		Short:         "Tell which owners' subnets contain the given IPv4 addresses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, &opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", fmt.Sprintf("config file (default is $HOME/%s.yaml)", defaultConfigName))
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "Log level: debug, info, warning, error")
	root.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "YAML file mapping owners to subnets")

	root.AddCommand(
		&cobra.Command{
			Use:   "match ADDR...",
			Short: "Print the owners of every subnet containing each address",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				tree, err := loadTree(opts.rulesFile)
				if err != nil {
					return err
				}
				return runMatch(cmd.OutOrStdout(), tree, args)
			},
		},
		&cobra.Command{
			Use:   "dump",
			Short: "Print every subnet of the rule set with its owners",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				tree, err := loadTree(opts.rulesFile)
				if err != nil {
					return err
				}
				runDump(cmd.OutOrStdout(), tree)
				return nil
			},
		},
	)

	return root
}

// initConfig reads the config file and SUBNET_MATCH_* environment variables
// and applies them to the flags not set on the command line.
func initConfig(cmd *cobra.Command, opts *options) error {
	v := viper.New()

	if opts.configFile != "" {
		v.SetConfigFile(opts.configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(defaultConfigName)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfgErr := v.ReadInConfig()

	bindFlags(cmd, v)
	initLogger(opts.logLevel)

	if cfgErr != nil {
		if _, notFound := cfgErr.(viper.ConfigFileNotFoundError); !notFound || opts.configFile != "" {
			return fmt.Errorf("reading config: %w", cfgErr)
		}
		log.WithError(cfgErr).Debug("no config file")
	}

	return nil
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			_ = cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func initLogger(level string) {
	ll, err := log.ParseLevel(level)
	if err != nil {
		ll = log.ErrorLevel
	}
	log.SetLevel(ll)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, PadLevelText: true, DisableQuote: true})
}

func loadTree(path string) (*subnettree.Tree, error) {
	if path == "" {
		return nil, fmt.Errorf("no rules file given (--rules or %s_RULES)", envPrefix)
	}

	set, err := rules.LoadFile(path)
	if err != nil {
		return nil, err
	}

	tree := subnettree.New()
	if err := set.Apply(tree); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"file": path, "subnets": set.Len()}).Info("rules loaded")

	return tree, nil
}

func runMatch(w io.Writer, tree *subnettree.Tree, addrs []string) error {
	for _, s := range addrs {
		a, err := cidr.ParseAddr(s)
		if err != nil {
			return err
		}

		owners := tree.Match(a)
		log.WithFields(log.Fields{"addr": s, "owners": len(owners)}).Debug("matched")

		fmt.Fprintf(w, "%s\t%s\n", s, strings.Join(owners, ","))
	}

	return nil
}

func runDump(w io.Writer, tree *subnettree.Tree) {
	tree.Walk(func(network uint32, bits int, owners []string) bool {
		fmt.Fprintf(w, "%s\t%s\n", cidr.FormatPrefix(network, bits), strings.Join(owners, ","))
		return true
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
