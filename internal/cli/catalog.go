package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ihavespoons/feelsy/internal/emotion"
)

var rareOnly bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the emotion catalog",
	Long: `Inspect the static emotion catalog.

Commands:
  rules     - List classification rules
  sequences - List emotion sequences`,
}

var catalogRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List classification rules",
	Run:   runCatalogRules,
}

var catalogSequencesCmd = &cobra.Command{
	Use:   "sequences",
	Short: "List emotion sequences",
	Run:   runCatalogSequences,
}

func init() {
	catalogRulesCmd.Flags().BoolVar(&rareOnly, "rare", false, "Only show rare rules")

	catalogCmd.AddCommand(catalogRulesCmd)
	catalogCmd.AddCommand(catalogSequencesCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogRules(cmd *cobra.Command, args []string) {
	catalog := emotion.DefaultCatalog()

	for _, rule := range catalog.Rules() {
		if rareOnly && !rule.Rare {
			continue
		}

		marker := " "
		if rule.Rare {
			marker = "*"
		}
		fmt.Printf("%s %-12s intensity %2d  cue: %s\n", marker, rule.Name, rule.Intensity, rule.Cue)
		if verbose {
			fmt.Printf("    patterns: %s\n", strings.Join(rule.Patterns, ", "))
			if len(rule.Tags) > 0 {
				fmt.Printf("    tags: %s\n", strings.Join(rule.Tags, ", "))
			}
		}
	}

	if !rareOnly {
		fmt.Printf("\n%d rules (* = rare)\n", len(catalog.Rules()))
	}
}

func runCatalogSequences(cmd *cobra.Command, args []string) {
	catalog := emotion.DefaultCatalog()

	for _, seq := range catalog.Sequences() {
		fmt.Printf("%-16s virality %3d  %s\n", seq.Name, seq.Virality, strings.Join(seq.Steps, " -> "))
		if verbose && seq.Description != "" {
			fmt.Printf("    %s\n", seq.Description)
		}
	}

	fmt.Printf("\n%d sequences\n", len(catalog.Sequences()))
}
