package main

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/piwi3910/CutLearn/internal/env"
	"github.com/piwi3910/CutLearn/internal/export"
	"github.com/piwi3910/CutLearn/internal/policy"
	"github.com/piwi3910/CutLearn/internal/project"
)

var (
	episodes      int
	configPath    string
	checkpointDir string
	keepCheckpts  int
	saveEvery     int
	metricsPath   string
	resumeFrom    string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the placement policy on a job",
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := project.LoadSettings(configPath)
		if err != nil {
			logrus.Fatalf("Cannot load settings: %v", err)
		}

		job, err := loadJob()
		if err != nil {
			logrus.Fatalf("Cannot load job: %v", err)
		}

		agent := policy.NewAgent(settings)
		if resumeFrom != "" {
			if snap, ok := project.LoadCheckpoint(resumeFrom); ok {
				if err := agent.Restore(snap); err != nil {
					logrus.Fatalf("Cannot restore checkpoint: %v", err)
				}
				logrus.Infof("Resumed from %s at step %d", resumeFrom, agent.Steps())
			}
		}

		environment := env.New(job)
		for ep := 0; ep < episodes; ep++ {
			total, err := runTrainingEpisode(agent, environment)
			if err != nil {
				logrus.Fatalf("Episode %d failed: %v", ep, err)
			}

			fill := environment.Info().FilledRatio
			agent.Metrics().AddEpisode(ep, fill, total)
			logrus.Infof("[train] episode %d: fill=%.3f reward=%.1f steps=%d",
				ep, fill, total, agent.Steps())

			if checkpointDir != "" && saveEvery > 0 && (ep+1)%saveEvery == 0 {
				saveCheckpoint(agent, ep)
			}
		}

		if checkpointDir != "" {
			saveCheckpoint(agent, episodes-1)
		}
		m := agent.Metrics()
		logrus.Infof("[train] done: best fill=%.3f best reward=%.1f (episode %d)",
			m.BestFilledRatio, m.BestReward, m.BestEpisode)

		if metricsPath != "" {
			if err := export.ExportMetricsXLSX(metricsPath, m); err != nil {
				logrus.Errorf("Cannot export metrics: %v", err)
			} else {
				logrus.Infof("Metrics written to %s", metricsPath)
			}
		}
	},
}

// runTrainingEpisode plays one episode to termination, feeding rewards
// back into the agent. Returns the total shaped reward.
func runTrainingEpisode(agent *policy.Agent, environment *env.Environment) (float64, error) {
	obs := environment.Reset()
	agent.Init(obs)
	agent.ResetEpisode()

	total := 0.0
	for !environment.Done() {
		p, err := agent.Decide(obs, environment.Info())
		if err != nil {
			return total, err
		}
		if p == nil {
			// Demand remains but nothing fits anywhere: terminal.
			reward := agent.Reward(nil, obs)
			total += reward
			if err := agent.Observe(reward, true); err != nil {
				return total, err
			}
			break
		}

		newObs, _, err := environment.Step(*p)
		if err != nil {
			// Decoder hints can clamp onto a stock the piece no longer
			// fits; score it like a nil action and move on.
			logrus.Debugf("[train] rejected placement: %v", err)
			reward := agent.Reward(nil, obs)
			total += reward
			if err := agent.Observe(reward, false); err != nil {
				return total, err
			}
			continue
		}

		reward := agent.Reward(p, newObs)
		total += reward
		if err := agent.Observe(reward, environment.Done()); err != nil {
			return total, err
		}
		obs = newObs
	}
	return total, nil
}

func saveCheckpoint(agent *policy.Agent, episode int) {
	snap, err := agent.Snapshot()
	if err != nil {
		logrus.Errorf("Cannot snapshot agent: %v", err)
		return
	}
	path := project.CheckpointPath(filepath.Join(checkpointDir, fmt.Sprintf("episode-%06d", episode)))
	if err := project.SaveCheckpoint(path, snap); err != nil {
		logrus.Errorf("Cannot save checkpoint: %v", err)
		return
	}
	logrus.Infof("Checkpoint saved to %s", path)
	if err := project.RotateCheckpoints(checkpointDir, keepCheckpts); err != nil {
		logrus.Warnf("Cannot rotate checkpoints: %v", err)
	}
}

func init() {
	trainCmd.Flags().IntVar(&episodes, "episodes", 100, "Number of training episodes")
	trainCmd.Flags().StringVar(&configPath, "config", project.DefaultConfigPath(), "Training settings YAML")
	trainCmd.Flags().StringVar(&checkpointDir, "checkpoint-dir", "", "Directory for model checkpoints")
	trainCmd.Flags().IntVar(&keepCheckpts, "keep-checkpoints", 5, "Checkpoints to keep in the run directory")
	trainCmd.Flags().IntVar(&saveEvery, "save-every", 10, "Save a checkpoint every N episodes")
	trainCmd.Flags().StringVar(&metricsPath, "metrics", "", "Write a metrics workbook (.xlsx) after training")
	trainCmd.Flags().StringVar(&resumeFrom, "resume", "", "Checkpoint to resume training from")

	rootCmd.AddCommand(trainCmd)
}
