package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"traqcheck/candidate-onboarding/internal/services"
)

type parseReport struct {
	File             string             `yaml:"file"`
	Name             *string            `yaml:"name"`
	Email            *string            `yaml:"email"`
	Phone            *string            `yaml:"phone"`
	Company          *string            `yaml:"company"`
	Designation      *string            `yaml:"designation"`
	Skills           []string           `yaml:"skills"`
	ConfidenceScores map[string]float64 `yaml:"confidence_scores"`
	Ambiguous        []string           `yaml:"ambiguous,omitempty"`
	TextLength       int                `yaml:"text_length"`
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Extract candidate fields from a resume without storing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		extractor := services.NewFieldExtractor(viper.GetInt("min-text-length"))
		return runParse(cmd.Context(), cmd.OutOrStdout(), extractor, args[0])
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().Int("min-text-length", services.DefaultMinTextLength, "least amount of text a resume must carry")
	viper.BindPFlag("min-text-length", parseCmd.Flags().Lookup("min-text-length"))
}

func runParse(ctx context.Context, w io.Writer, extractor *services.FieldExtractor, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := extractor.Extract(ctx, data, filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", path, err)
	}

	return render(w, parseReport{
		File:             filepath.Base(path),
		Name:             result.Name,
		Email:            result.Email,
		Phone:            result.Phone,
		Company:          result.Company,
		Designation:      result.Designation,
		Skills:           result.Skills,
		ConfidenceScores: result.ConfidenceScores,
		Ambiguous:        result.Ambiguous,
		TextLength:       result.TextLength,
	})
}
