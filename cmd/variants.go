// cmd/variants.go
package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aceteam-ai/modulus-cli/internal/server"
	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

var variantsOutput outputValue = outputText

var variantsCmd = &cobra.Command{
	Use:       "variants [variant]",
	Short:     "List prediction variants and their inputs",
	ValidArgs: soil.Names(),
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		variants := soil.All()
		if len(args) == 1 {
			v, err := soil.Lookup(args[0])
			if err != nil {
				return err
			}
			variants = []soil.Variant{v}
		}
		for i := range variants {
			if variants[i].Name == soil.VariantDemo {
				variants[i] = variants[i].WithGateMode(appConfig.DemoGate())
			}
		}

		out := cmd.OutOrStdout()
		if variantsOutput == outputJSON {
			infos := make([]server.VariantInfo, 0, len(variants))
			for _, v := range variants {
				infos = append(infos, server.VariantInfo{
					Name:          v.Name,
					Title:         v.Title,
					Layer:         v.Layer,
					Fields:        v.Fields,
					Columns:       v.Columns,
					ClassEncoding: v.Class.String(),
					ClassOptions:  v.ClassOptions,
					Gate:          string(v.Gate.Mode),
				})
			}
			return writeJSON(out, map[string]any{"variants": infos})
		}

		if len(args) == 0 {
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tINPUTS\tSOIL CLASS\tGATE\tMODEL")
			for _, v := range variants {
				modelPath := appConfig.ModelPath(v.Name)
				if modelPath == "" {
					modelPath = "(inline formula)"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", v.Name, len(v.Columns), v.Class, v.Gate.Mode, modelPath)
			}
			return w.Flush()
		}

		v := variants[0]
		fmt.Fprintf(out, "%s\n%s\n\n", color.New(color.Bold).Sprint(v.Title), v.Layer)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FLAG\tLABEL\tMIN\tMAX\tDEFAULT\tSTEP\tRULE")
		for _, f := range v.Fields {
			upper := "-"
			if f.HasMax {
				upper = f.FormatValue(f.Max)
			}
			rule := "-"
			if r, ok := v.Gate.Rules[f.Key]; ok {
				rule = r.String()
			}
			if v.Gate.Mode == soil.GateTruthy {
				rule = "!= 0"
			}
			fmt.Fprintf(w, "--%s\t%s\t%s\t%s\t%s\t%g\t%s\n", flagName(f.Key), f.DisplayLabel(),
				f.FormatValue(f.Min), upper, f.FormatValue(f.Default), f.Step, rule)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if v.HasClass() {
			fmt.Fprintf(out, "\n--soil-class (%s): %s\n", v.Class, strings.Join(v.ClassOptions, ", "))
		}
		fmt.Fprintf(out, "\nModel columns: %s\n", strings.Join(v.Columns, ", "))
		return nil
	},
}

func init() {
	variantsCmd.Flags().VarP(&variantsOutput, "output", "o", "Output format (text, json)")
	rootCmd.AddCommand(variantsCmd)
}
