package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score <lon> <lat>",
	Short: "Query the safety score at a coordinate",
	Long: `Look up the normalized safety score (0 = least safe, 1 = safest) at a
coordinate. The score comes from the analysis point nearest to the query.

Examples:
  # Connaught Place, Delhi
  safepath score 77.2167 28.6315`,
	Args: cobra.ExactArgs(2),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate("score"); err != nil {
		return err
	}

	lon, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return eris.Errorf("score: invalid longitude %q", args[0])
	}
	lat, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return eris.Errorf("score: invalid latitude %q", args[1])
	}

	field, err := initField()
	if err != nil {
		return err
	}

	score, err := field.ScoreAt(lon, lat)
	if err != nil {
		return eris.Wrap(err, "score")
	}

	zap.L().Debug("score computed",
		zap.Float64("lon", lon),
		zap.Float64("lat", lat),
		zap.Float64("score", score),
	)
	fmt.Printf("Location: (%.6f, %.6f)\n", lon, lat)
	fmt.Printf("Score:    %.4f\n", score)
	return nil
}
