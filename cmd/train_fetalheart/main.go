package main

import "context"
import "fmt"
import "log/slog"
import "os"
import "os/signal"
import "syscall"

import "github.com/spf13/cobra"

import "github.com/neurlang/fetalheart/config"
import "github.com/neurlang/fetalheart/learning"
import "github.com/neurlang/fetalheart/pipeline"

var (
	configPath string
	datasetDir string
	outputDir  string
	seed       int64
	noPrompt   bool
	pgo        bool
)

var rootCmd = &cobra.Command{
	Use:   "train_fetalheart",
	Short: "Train the fetal heart rate audio classifier",
	Long: `train_fetalheart fine-tunes a pretrained image network on log mel
spectrograms of fetal heart recordings.

The dataset root holds one folder per category (absent, regular, irregular
by default) with WAV files. Results go to <output>/<run id>/.

Examples:
  train_fetalheart --dataset ./dataset --output ./results
  train_fetalheart --config run.yaml --no-prompt`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	f.StringVarP(&datasetDir, "dataset", "d", "", "dataset root, overrides dataset.root")
	f.StringVarP(&outputDir, "output", "o", "", "results folder, overrides output.dir")
	f.Int64Var(&seed, "seed", 0, "seed for shuffling and training, 0 keeps the configured seeds")
	f.BoolVar(&noPrompt, "no-prompt", false, "do not ask for a results folder")
	f.BoolVar(&pgo, "pgo", false, "write a CPU profile to default.pgo")
}

func run(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	c := config.Default()
	if configPath != "" {
		var err error
		if c, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if datasetDir != "" {
		c.Dataset.Root = datasetDir
	}
	if outputDir != "" {
		c.Output.Dir = outputDir
	}
	if noPrompt {
		c.Output.Prompt = false
	}
	if seed != 0 {
		c.Dataset.Seed = seed
		c.Training.Seed = seed
	}
	log.Info("starting", "cpu", learning.CPUName(), "threads", c.Training.Threads)

	if pgo {
		stop, err := startProfile()
		if err != nil {
			return err
		}
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r, err := pipeline.Run(ctx, c, log, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	dir, ok, err := pipeline.OutputDir(&c.Output, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if !ok {
		log.Info("no results folder selected, results not saved")
		return nil
	}
	saved, err := r.Save(dir)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	log.Info("saved results", "dir", saved)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
