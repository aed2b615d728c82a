/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/followme/midiout"
)

type Config struct {
	bind           string
	dataDir        string
	demoDelay      time.Duration
	flash          time.Duration
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	// play
	midiChannel int
	midiPort    string
	noSound     bool
	player      string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	return c.validateGame()
}

func (c *Config) validateGame() error {
	if strings.TrimSpace(c.dataDir) == "" {
		return errors.New("--data-dir must not be empty")
	}
	if c.demoDelay <= 0 {
		return fmt.Errorf("invalid demo delay (must be positive): %s", c.demoDelay)
	}
	if c.flash <= 0 {
		return fmt.Errorf("invalid flash duration (must be positive): %s", c.flash)
	}
	if c.midiChannel < 0 || c.midiChannel > 15 {
		return fmt.Errorf("invalid midi channel (must be between 0-15 inclusive): %d", c.midiChannel)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// bindEnv lets every flag in fs be set from its FOLLOWME_* environment variable.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FOLLOWME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "followme",
		Short:         "A sequence memory trainer in the spirit of Simon Says, served as a webapp or played in a terminal.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVarP(&cfg.dataDir, "data-dir", "d", "data", "directory holding player profiles (env: FOLLOWME_DATA_DIR)")
	pfs.DurationVar(&cfg.demoDelay, "demo-delay", 800*time.Millisecond, "base time between demo items, before the playback speed is applied (env: FOLLOWME_DEMO_DELAY)")
	pfs.DurationVar(&cfg.flash, "flash", 250*time.Millisecond, "base time a key stays lit during a demo (env: FOLLOWME_FLASH)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: FOLLOWME_VERBOSE)")

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: FOLLOWME_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: FOLLOWME_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: FOLLOWME_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: FOLLOWME_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before disconnected player sessions are ended, 0 to keep them (env: FOLLOWME_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: FOLLOWME_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: FOLLOWME_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: FOLLOWME_VERSION)")

	bindEnv(v, pfs)
	bindEnv(v, fs)

	cmd.AddCommand(newPlayCmd(cfg, v), newPortsCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("followme v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newPlayCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateGame(); err != nil {
				return err
			}
			return PlayTerminal(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&cfg.midiChannel, "midi-channel", 0, "midi channel for demo notes, 0-15 (env: FOLLOWME_MIDI_CHANNEL)")
	fs.StringVar(&cfg.midiPort, "midi-port", "", "midi output port name or number to mirror demo flashes to (env: FOLLOWME_MIDI_PORT)")
	fs.BoolVar(&cfg.noSound, "no-sound", false, "do not play tones (env: FOLLOWME_NO_SOUND)")
	fs.StringVar(&cfg.player, "player", "", "player id whose profile to use, defaults to one kept in the data directory (env: FOLLOWME_PLAYER)")

	bindEnv(v, fs)

	return cmd
}

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List midi output ports.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, name := range midiout.Ports() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, name)
			}
			return nil
		},
	}
}
