package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/piwi3910/CutLearn/internal/env"
	"github.com/piwi3910/CutLearn/internal/policy"
	"github.com/piwi3910/CutLearn/internal/project"
)

var (
	solveCheckpoint string
	solveOutput     string
	solveConfig     string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Pack a job with a trained policy and write the result",
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := project.LoadSettings(solveConfig)
		if err != nil {
			logrus.Fatalf("Cannot load settings: %v", err)
		}

		job, err := loadJob()
		if err != nil {
			logrus.Fatalf("Cannot load job: %v", err)
		}

		agent := policy.NewAgent(settings)
		if solveCheckpoint != "" {
			if snap, ok := project.LoadCheckpoint(solveCheckpoint); ok {
				if err := agent.Restore(snap); err != nil {
					logrus.Fatalf("Cannot restore checkpoint: %v", err)
				}
				logrus.Infof("Loaded checkpoint %s (step %d)", solveCheckpoint, agent.Steps())
			} else {
				logrus.Warnf("Checkpoint %s not loaded, solving with a fresh policy", solveCheckpoint)
			}
		}

		environment := env.New(job)
		obs := environment.Reset()
		agent.Init(obs)
		agent.ResetEpisode()

		placedCount := 0
		for !environment.Done() {
			p, err := agent.Decide(obs, environment.Info())
			if err != nil {
				logrus.Fatalf("Decision failed: %v", err)
			}
			if p == nil {
				logrus.Warnf("No placement possible with %d pieces outstanding",
					environment.Observation().RemainingDemand())
				break
			}
			newObs, _, err := environment.Step(*p)
			if err != nil {
				logrus.Debugf("[solve] rejected placement: %v", err)
				continue
			}
			obs = newObs
			placedCount++
		}

		logrus.Infof("[solve] placed %d pieces, fill=%.3f",
			placedCount, environment.Info().FilledRatio)

		result := project.RunResult{Job: job, Placed: environment.Placements()}
		if err := project.SaveResult(solveOutput, result); err != nil {
			logrus.Fatalf("Cannot write result: %v", err)
		}
		logrus.Infof("Result written to %s", solveOutput)
	},
}

func init() {
	solveCmd.Flags().StringVar(&solveCheckpoint, "checkpoint", "", "Trained model checkpoint")
	solveCmd.Flags().StringVar(&solveOutput, "out", "result.json", "Result file to write")
	solveCmd.Flags().StringVar(&solveConfig, "config", project.DefaultConfigPath(), "Training settings YAML")

	rootCmd.AddCommand(solveCmd)
}
