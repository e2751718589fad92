package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cbegin/fxchain-go"
)

type globals struct {
	sampleRate int
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "fxchain",
		Short:        "Build and edit live audio effect chains",
		SilenceUsage: true,
	}
	root.PersistentFlags().IntVar(&g.sampleRate, "sample-rate", 48000, "output sample rate")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log debug output")
	root.AddCommand(newKindsCmd(), newValidateCmd(g), newRenderCmd(g), newPlayCmd(g))
	return root
}

func (g *globals) logger() *slog.Logger {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List built-in effect kinds and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat := fxchain.BuiltinCatalog()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tPARAM\tTYPE\tDEFAULT\tRANGE\tLIVE")
			for _, name := range cat.List() {
				k, _ := cat.Lookup(name)
				if len(k.Schema) == 0 {
					fmt.Fprintf(w, "%s\t-\t\t\t\t\n", name)
				}
				for _, p := range k.Schema {
					fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\t%t\n", name, p.Name, p.Type, p.Format(p.Default), describeRange(p), p.Live)
				}
			}
			return w.Flush()
		},
	}
}

func describeRange(p fxchain.ParamSpec) string {
	switch {
	case len(p.Choices) > 0:
		return strings.Join(p.Choices, "|")
	case p.Min == p.Max:
		return ""
	}
	r := fmt.Sprintf("%g..%g", p.Min, p.Max)
	if p.Unit != "" {
		r += " " + p.Unit
	}
	return r
}

// session holds a chain loaded from a chain file.
type session struct {
	file   fxchain.File
	chain  *fxchain.Chain
	engine fxchain.Engine
}

func (g *globals) open(path string, engine fxchain.Engine, override func(*fxchain.Config)) (*session, error) {
	f, err := fxchain.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(&f.Config)
	}
	opts := []fxchain.Option{fxchain.WithLogger(g.logger())}
	if f.Input != "" {
		in := f.Input
		if !filepath.IsAbs(in) {
			in = filepath.Join(filepath.Dir(path), in)
		}
		wav, err := fxchain.LoadWAVInput(in, engine.SampleRate())
		if err != nil {
			return nil, err
		}
		opts = append(opts, fxchain.WithInput(wav))
	}
	ch, err := fxchain.New(fxchain.BuiltinCatalog(), engine, f.Config, opts...)
	if err != nil {
		return nil, err
	}
	if err := ch.Build(f.Chain); err != nil {
		return nil, err
	}
	return &session{file: f, chain: ch, engine: engine}, nil
}

func newValidateCmd(g *globals) *cobra.Command {
	var engineChannels int
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a chain file and print the stage addresses it would get",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(args[0], fxchain.NewOfflineEngine(g.sampleRate, engineChannels), nil)
			if err != nil {
				return err
			}
			defer s.chain.Free()
			st, err := s.chain.Status()
			if err != nil {
				return err
			}
			printEntries(cmd, st)
			return nil
		},
	}
	cmd.Flags().IntVar(&engineChannels, "engine-channels", 2, "output channels to route for")
	return cmd
}

func printEntries(cmd *cobra.Command, st fxchain.Status) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tPREFIX\tID\tKIND")
	for _, e := range st.Entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Position, e.Prefix, e.ID, e.Kind)
	}
	w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "%d -> %d channels (%s, %s)\n",
		st.Channels, st.Output, st.Destination.Mode, st.Destination.Strategy)
}

func newRenderCmd(g *globals) *cobra.Command {
	var (
		out            string
		seconds        float64
		engineChannels int
		offset         int
		bits           int
		asFloat        bool
	)
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a chain offline to a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := fxchain.NewOfflineEngine(g.sampleRate, engineChannels)
			s, err := g.open(args[0], engine, nil)
			if err != nil {
				return err
			}
			defer s.chain.Free()
			if err := s.chain.Play(offset); err != nil {
				return err
			}
			samples := engine.RenderSeconds(seconds)
			if asFloat {
				return os.WriteFile(out, fxchain.EncodeWAVFloat32LE(samples, g.sampleRate, engineChannels), 0o644)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := fxchain.WriteWAV(f, samples, g.sampleRate, engineChannels, bits); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "out.wav", "output WAV path")
	cmd.Flags().Float64Var(&seconds, "seconds", 2, "length to render")
	cmd.Flags().IntVar(&engineChannels, "engine-channels", 2, "output channels")
	cmd.Flags().IntVar(&offset, "offset", 0, "first output channel")
	cmd.Flags().IntVar(&bits, "bits", 16, "PCM bit depth (16 or 24)")
	cmd.Flags().BoolVar(&asFloat, "float", false, "write 32-bit float instead of PCM")
	return cmd
}

func newPlayCmd(g *globals) *cobra.Command {
	var (
		offset    int
		realInput bool
	)
	cmd := &cobra.Command{
		Use:   "play FILE",
		Short: "Play a chain on the default device and edit it from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := fxchain.NewDeviceEngine(g.sampleRate)
			if err != nil {
				return err
			}
			override := func(c *fxchain.Config) {
				if cmd.Flags().Changed("real-input") {
					c.RealInput = realInput
				}
			}
			s, err := g.open(args[0], engine, override)
			if err != nil {
				return err
			}
			defer s.chain.Free()
			if err := s.chain.Play(offset); err != nil {
				return err
			}
			c := &console{chain: s.chain, out: cmd.OutOrStdout()}
			fmt.Fprintln(c.out, "type help for commands")
			sc := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(c.out, "> ")
				if !sc.Scan() {
					return sc.Err()
				}
				quit, err := c.exec(sc.Text())
				if err != nil {
					fmt.Fprintln(c.out, "error:", err)
				}
				if quit {
					return nil
				}
			}
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "first output channel")
	cmd.Flags().BoolVar(&realInput, "real-input", false, "use the file's input WAV instead of the placeholder")
	return cmd
}
