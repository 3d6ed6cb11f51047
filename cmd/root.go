package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/endorses/dnsbpf/internal/pkg/bpfasm"
	"github.com/endorses/dnsbpf/internal/pkg/cmdutil"
	"github.com/endorses/dnsbpf/internal/pkg/compiler"
	"github.com/endorses/dnsbpf/internal/pkg/constants"
	"github.com/endorses/dnsbpf/internal/pkg/logger"
	"github.com/endorses/dnsbpf/internal/pkg/version"
)

var cfgFile string

var (
	negate     bool
	ignoreCase bool
	assembly   bool
	l3Offset   int
	inet6      bool
)

var rootCmd = &cobra.Command{
	Use:   "dnsbpf [flags] domain...",
	Short: "dnsbpf compiles domain patterns into BPF filters",
	Long: `dnsbpf creates a raw Berkeley Packet Filter (BPF) rule that matches
packets whose first DNS query name matches the listed domains.

  dnsbpf example.com

prints a rule matching packets that look like a DNS query for exactly
"example.com".

  dnsbpf '*.www.fint.me'

matches any single-label prefix with exactly "www.fint.me" as suffix:
"blah.www.fint.me" matches, "www.fint.me" and "a.b.www.fint.me" do not.
A star is a wildcard only when it is the whole part: "*xxx.example.com"
means a literal star. A question mark matches exactly one character:
"fin?.me" matches "fint.me" and "finX.me" but not "fin.me" or
"finXX.me". Several domains compile into a single rule matching any of
them. Leading and trailing dots are ignored.`,
	Version: version.GetFullVersion(),
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return compiler.ErrNoDomains
		}
		return nil
	},
	RunE: compile,
}

func compile(cmd *cobra.Command, args []string) error {
	opts := compiler.Options{
		Negate:     configBool(cmd, "negate", negate),
		IgnoreCase: configBool(cmd, "ignore-case", ignoreCase),
		L3Offset:   configInt(cmd, "offset", l3Offset),
		IPVersion:  4,
	}
	if configBool(cmd, "inet6", inet6) {
		opts.IPVersion = 6
	}

	prog, err := compiler.Compile(args, opts)
	if err != nil {
		return err
	}
	logger.Debug("compiled patterns",
		"patterns", len(args),
		"instructions", len(prog.Instructions),
		"ipversion", opts.IPVersion)

	if configBool(cmd, "assembly", assembly) {
		fmt.Fprint(cmd.OutOrStdout(), prog.String())
		return nil
	}

	raw, err := bpfasm.Assemble(prog)
	if err != nil {
		return fmt.Errorf("assembling filter: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), bpfasm.FormatRaw(raw))
	return nil
}

// configBool resolves a bool option: an explicitly set flag wins,
// otherwise the config file value if present, otherwise the flag
// default.
func configBool(cmd *cobra.Command, key string, flagValue bool) bool {
	if cmd.Flags().Changed(key) {
		return flagValue
	}
	return cmdutil.GetBoolConfig(key, flagValue)
}

func configInt(cmd *cobra.Command, key string, flagValue int) int {
	if cmd.Flags().Changed(key) {
		return flagValue
	}
	return cmdutil.GetIntConfig(key, flagValue)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dnsbpf.yaml)")

	rootCmd.Flags().BoolVarP(&negate, "negate", "n", false, "capture packets that don't match given domains")
	rootCmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "make the rule case insensitive. use with care")
	rootCmd.Flags().BoolVarP(&assembly, "assembly", "s", false, "print BPF assembly instead of byte code")
	rootCmd.Flags().IntVarP(&l3Offset, "offset", "o", constants.EthernetHeaderLen, "offset of l3 (IP) header")
	rootCmd.Flags().BoolVarP(&inet6, "inet6", "6", false, "rule should match IPv6, not IPv4 packets")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dnsbpf")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
