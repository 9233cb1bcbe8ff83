package main

import "fmt"
import "os"
import "strings"

import "github.com/spf13/cobra"

import "github.com/neurlang/fetalheart/config"
import "github.com/neurlang/fetalheart/inference"
import "github.com/neurlang/fetalheart/net/feedforward"

var (
	modelPath  string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "infer_fetalheart --model model.json.lzw file.wav...",
	Short: "Classify fetal heart recordings with a trained model",
	Args:  cobra.MinimumNArgs(1),

	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.Default()
		if configPath != "" {
			var err error
			if c, err = config.Load(configPath); err != nil {
				return err
			}
		}
		net, err := feedforward.ReadCompressedFromFile(modelPath)
		if err != nil {
			return err
		}
		m, err := inference.New(net, c.Spectrogram.Params, c.Spectrogram.SampleRate)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, path := range args {
			p, err := m.Infer(path)
			if err != nil {
				return err
			}
			var probs []string
			for i, v := range p.Probabilities {
				probs = append(probs, fmt.Sprintf("%s=%.3f", net.Classes()[i], v))
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", p.Path, p.Label, strings.Join(probs, " "))
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&modelPath, "model", "m", "", "trained model .json.lzw file")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration the model was trained with")
	rootCmd.MarkFlagRequired("model")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
