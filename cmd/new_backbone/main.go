package main

import "fmt"
import "os"

import "github.com/spf13/cobra"

import "github.com/neurlang/fetalheart/backbone"

var o = backbone.DefaultOptions()
var out string

var rootCmd = &cobra.Command{
	Use:           "new_backbone",
	Short:         "Write a freshly initialized image classifier",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := backbone.New(o)
		if err != nil {
			return err
		}
		if err := net.WriteCompressedToFile(out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d layers, %d parameter tensors, input %s\n",
			out, net.Len(), len(net.Params()), net.InputShape())
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&out, "out", "o", "backbone.json.lzw", "destination .json.lzw file")
	f.IntVar(&o.Size, "size", o.Size, "input height and width")
	f.IntSliceVar(&o.Widths, "widths", o.Widths, "filters of the convolution stages")
	f.IntVar(&o.Classes, "classes", o.Classes, "outputs of the classifier")
	f.Int64Var(&o.Seed, "seed", o.Seed, "weight initialization seed")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
