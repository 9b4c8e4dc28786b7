// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"codello.dev/asn1view/tlv"
)

var longRootCmdDescription = `asn1dump parses BER or DER encoded files and prints the tree of
data values they contain. Universal types are decoded and shown next to
their header. Every report carries the BLAKE3 digest of the input rewritten
with minimal definite-length headers.

Flags can also be set in a config file (--config) or through environment
variables prefixed with ASN1DUMP_, for example ASN1DUMP_PROFILE=der.
`

// options is the resolved configuration of a run.
type options struct {
	profile tlv.Profile
	format  string
	jobs    int
}

// newRootCmd returns the asn1dump command. Each command has its own viper
// instance.
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "asn1dump [flags] file...",
		Short:         "Print the structure of BER and DER encoded data",
		Long:          longRootCmdDescription,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := optionsFrom(v)
			if err != nil {
				return err
			}
			return run(cmd.OutOrStdout(), cmd.InOrStdin(), args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file of asn1dump (yaml, json or toml)")
	flags.StringP("profile", "p", "ber", "encoding rules used for parsing, ber or der")
	flags.StringP("format", "f", formatText, "output format, one of "+strings.Join(formats, ", "))
	flags.IntP("jobs", "j", runtime.NumCPU(), "number of files parsed in parallel")
	flags.BoolP("debug", "d", false, "turn on debug logging")
	_ = v.BindPFlags(flags)
	return cmd
}

// initConfig reads in the config file and environment variables.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("ASN1DUMP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrap(err, "reading config")
		}
	}
	if v.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.Debugf("using profile %s and format %s", v.GetString("profile"), v.GetString("format"))
	return nil
}

func optionsFrom(v *viper.Viper) (options, error) {
	var o options
	switch p := strings.ToLower(v.GetString("profile")); p {
	case "ber":
		o.profile = tlv.BER
	case "der":
		o.profile = tlv.DER
	default:
		return o, errors.Errorf("unknown profile %q", p)
	}
	o.format = strings.ToLower(v.GetString("format"))
	if !slices.Contains(formats, o.format) {
		return o, errors.Errorf("unknown format %q", o.format)
	}
	o.jobs = max(v.GetInt("jobs"), 1)
	return o, nil
}

// run dumps files in parallel and writes the reports in argument order. Files
// that fail to parse are left out of the output and their errors are combined.
func run(w io.Writer, stdin io.Reader, files []string, o options) error {
	reports := make([]*Report, len(files))
	errs := make([]error, len(files))
	d := dumper{profile: o.profile}

	var g errgroup.Group
	g.SetLimit(o.jobs)
	for i, name := range files {
		g.Go(func() error {
			data, err := readInput(name, stdin)
			if err != nil {
				errs[i] = errors.Wrap(err, "reading input")
				return nil
			}
			logrus.WithField("file", name).Debugf("read %d bytes", len(data))
			if reports[i], err = d.dump(name, data); err != nil {
				errs[i] = errors.Wrap(err, name)
			}
			return nil
		})
	}
	_ = g.Wait()

	var result *multierror.Error
	var ok []*Report
	for i := range files {
		if errs[i] != nil {
			result = multierror.Append(result, errs[i])
			continue
		}
		ok = append(ok, reports[i])
	}
	if err := encode(w, o.format, ok); err != nil {
		return errors.Wrap(err, "writing output")
	}
	return result.ErrorOrNil()
}

// readInput returns the content of the named file. The name "-" denotes stdin.
func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}
