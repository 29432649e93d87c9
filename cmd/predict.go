// cmd/predict.go
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aceteam-ai/modulus-cli/internal/model"
	"github.com/aceteam-ai/modulus-cli/internal/predict"
	"github.com/aceteam-ai/modulus-cli/internal/server"
	"github.com/aceteam-ai/modulus-cli/internal/soil"
	"github.com/aceteam-ai/modulus-cli/internal/tui"
	"github.com/aceteam-ai/modulus-cli/internal/ui"
)

type predictOptions struct {
	variant    soil.Variant
	values     map[string]*float64
	class      *classValue
	inputFile  string
	output     outputValue
	showRecord bool
	strict     bool
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the resilient modulus from flags or an input file",
	Long: `Predict the resilient modulus for one variant without the interactive form.

Every input has a flag named after it. Inputs you leave out take the same
defaults the form starts with, unless --strict is set.`,
	Example: `  modulus predict base --soil-class A-4 --repr-thickness 200
  modulus predict subgrade --clay 0 --output json
  modulus predict base --input sample.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func newPredictVariantCmd(v soil.Variant) *cobra.Command {
	opts := &predictOptions{
		variant: v,
		values:  make(map[string]*float64, len(v.Fields)),
		class:   &classValue{options: v.ClassOptions},
		output:  outputText,
	}

	cmd := &cobra.Command{
		Use:   v.Name,
		Short: v.Layer,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, opts)
		},
	}

	for _, f := range v.Fields {
		opts.values[f.Key] = cmd.Flags().Float64(flagName(f.Key), f.Default, flagUsage(f))
	}
	if v.HasClass() {
		cmd.Flags().Var(opts.class, "soil-class", fmt.Sprintf("AASHTO soil class (%s)", strings.Join(v.ClassOptions, ", ")))
		cmd.RegisterFlagCompletionFunc("soil-class", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return v.ClassOptions, cobra.ShellCompDirectiveNoFileComp
		})
	}
	cmd.Flags().StringVarP(&opts.inputFile, "input", "i", "", "Read inputs from a YAML or JSON file")
	cmd.Flags().VarP(&opts.output, "output", "o", "Output format (text, json)")
	cmd.Flags().BoolVar(&opts.showRecord, "show-record", false, "Print the model input row")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Require every input explicitly instead of using defaults")
	return cmd
}

// buildInput merges the input file (if any) with explicitly set flags.
// Flags win over file values.
func buildInput(cmd *cobra.Command, opts *predictOptions) (predict.Input, error) {
	in := predict.Input{UseDefaults: !opts.strict}
	if opts.inputFile != "" {
		data, err := os.ReadFile(opts.inputFile)
		if err != nil {
			return in, fmt.Errorf("could not read input file: %w", err)
		}
		// JSON is valid YAML, so one decoder covers both.
		if err := yaml.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("could not parse input file %s: %w", opts.inputFile, err)
		}
	}
	if in.Values == nil {
		in.Values = make(map[string]float64)
	}
	for key, ptr := range opts.values {
		if cmd.Flags().Changed(flagName(key)) {
			in.Values[key] = *ptr
		}
	}
	if cmd.Flags().Changed("soil-class") {
		in.SoilClass = opts.class.value
	}
	return in, nil
}

func runPredict(cmd *cobra.Command, opts *predictOptions) error {
	in, err := buildInput(cmd, opts)
	if err != nil {
		return err
	}
	snap, err := in.Snapshot(opts.variant)
	if err != nil {
		return err
	}

	registry := newRegistry()
	svc, err := registry.Service(opts.variant.Name)
	if err != nil {
		return err
	}
	if h, ok := registry.Handle(opts.variant.Name); ok {
		loadModel(h, opts.output == outputText)
	}

	res, err := svc.Run(cmd.Context(), snap)
	out := cmd.OutOrStdout()

	if opts.output == outputJSON {
		if err != nil {
			msg, hint := predict.Message(err)
			resp := server.ErrorResponse{Error: msg, Hint: hint}
			var notReady *predict.NotReadyError
			if errors.As(err, &notReady) {
				resp.Failed = notReady.Failed
			}
			writeJSON(out, resp)
			return errReported
		}
		return writeJSON(out, server.PredictResponse{
			ID:         res.ID,
			Variant:    res.Variant,
			ModulusMPa: res.ModulusMPa,
			Display:    res.Display(),
			Demo:       res.Demo,
			Record:     res.Record.Map(),
		})
	}

	sl := ui.NewStatusLine(out)
	if err != nil {
		msg, hint := predict.Message(err)
		sl.Fail(msg)
		if hint != "" {
			sl.Hint(hint)
		}
		return errReported
	}

	sl.Success("Prediction Successful!")
	fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint("Predicted Resilient Modulus:"), color.CyanString(res.Display()))
	if res.Demo {
		sl.Warning(predict.MsgDemoNote)
	}
	if opts.showRecord {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COLUMN\tVALUE")
		for _, c := range res.Record.Cells {
			fmt.Fprintf(w, "%s\t%v\n", c.Column, c.Value())
		}
		w.Flush()
	}
	return nil
}

// loadModel loads an artifact up front, behind a spinner on a terminal. A
// failure is reported later by the prediction itself.
func loadModel(h *model.Handle, interactive bool) {
	if h.State() != model.StateUninitialized {
		return
	}
	if !interactive || !tui.IsTTY() {
		h.Load()
		return
	}
	ui.RunWithSpinner(os.Stderr, fmt.Sprintf("Loading %s model", h.Name()), h.Load)
}

func init() {
	for _, v := range soil.All() {
		predictCmd.AddCommand(newPredictVariantCmd(v))
	}
	rootCmd.AddCommand(predictCmd)
}
