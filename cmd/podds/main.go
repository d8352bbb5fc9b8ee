package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/pkg/podds"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		league     = flag.String("league", "", "league identifier for artifact lookup")
		season     = flag.String("season", "", "season identifier for calibration lookup")
		lambdaHome = flag.Float64("lambda-home", 1.5, "expected home goals")
		lambdaAway = flag.Float64("lambda-away", 1.1, "expected away goals")
		seed       = flag.Uint64("seed", 1, "Monte Carlo seed")
		homeOdds   = flag.Float64("home-odds", 0, "decimal odds for a home win (0 disables)")
		drawOdds   = flag.Float64("draw-odds", 0, "decimal odds for a draw (0 disables)")
		awayOdds   = flag.Float64("away-odds", 0, "decimal odds for an away win (0 disables)")
	)
	flag.Parse()

	cfg, err := podds.LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration:", err)
		os.Exit(1)
	}

	req := podds.MatchRequest{
		League: *league,
		Season: *season,
		Seed:   *seed,
		Features: map[string]float64{
			podds.FeatureLambdaHome: *lambdaHome,
			podds.FeatureLambdaAway: *lambdaAway,
		},
	}
	if *homeOdds > 0 && *drawOdds > 0 && *awayOdds > 0 {
		req.Odds = map[string]float64{
			podds.KeyHomeWin: *homeOdds,
			podds.KeyDraw:    *drawOdds,
			podds.KeyAwayWin: *awayOdds,
		}
	}

	predictor := podds.NewPredictor(cfg, podds.NewArtifactSet(cfg))
	prediction, err := predictor.Predict(req)
	if err != nil {
		logger.Error("Prediction failed:", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(prediction, "", "  ")
	if err != nil {
		logger.Error("Failed to encode prediction:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
