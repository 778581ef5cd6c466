package cli

import (
	"fmt"
	"io"

	"alcyxob/fitness-coach/internal/bodycomp"
	"alcyxob/fitness-coach/internal/domain"

	"github.com/spf13/cobra"
)

// NewBodyCompCommand creates the bodycomp command.
func NewBodyCompCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		in  bodycomp.Input
		sex string
	)

	cmd := &cobra.Command{
		Use:   "bodycomp",
		Short: "Estimate body composition from seven skinfolds",
		Long: `Estimate body density, body-fat percentage and the fat/lean mass split
from seven skinfold measurements (mm) using the generalized equations and
the Siri conversion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Sex = domain.Sex(sex)
			res, err := bodycomp.Calculate(in)
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeBodyComp(cmd.OutOrStdout(), res)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&in.WeightKg, "weight", 0, "body weight in kg")
	f.Float64Var(&in.HeightCm, "height", 0, "height in cm")
	f.IntVar(&in.AgeYears, "age", 0, "age in years")
	f.StringVar(&sex, "sex", string(domain.SexMale), "male or female")
	f.Float64Var(&in.Skinfolds.Chest, "chest", 0, "chest skinfold (mm)")
	f.Float64Var(&in.Skinfolds.Abdominal, "abdominal", 0, "abdominal skinfold (mm)")
	f.Float64Var(&in.Skinfolds.Thigh, "thigh", 0, "thigh skinfold (mm)")
	f.Float64Var(&in.Skinfolds.Tricep, "tricep", 0, "tricep skinfold (mm)")
	f.Float64Var(&in.Skinfolds.Subscapular, "subscapular", 0, "subscapular skinfold (mm)")
	f.Float64Var(&in.Skinfolds.Suprailiac, "suprailiac", 0, "suprailiac skinfold (mm)")
	f.Float64Var(&in.Skinfolds.Midaxillary, "midaxillary", 0, "midaxillary skinfold (mm)")
	for _, name := range []string{"weight", "height", "age"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func writeBodyComp(w io.Writer, r bodycomp.Result) error {
	_, err := fmt.Fprintf(w,
		"Skinfold sum:  %.1f mm\nBody density:  %.4f g/cm3\nBody fat:      %.1f %%\nFat mass:      %.1f kg\nLean mass:     %.1f kg\n",
		bodycomp.Round1(r.SkinfoldSum),
		r.BodyDensity,
		bodycomp.Round1(r.BodyFatPercentage),
		bodycomp.Round1(r.FatMassKg),
		bodycomp.Round1(r.LeanMassKg),
	)
	return err
}
