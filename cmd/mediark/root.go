package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "mediark",
		Short:         "按内容指纹归档照片/视频，并清扫重复副本",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "配置文件路径（默认读取 ./mediark.toml，可选）")

	rootCmd.AddCommand(newArchiveCommand(&configFlag))
	rootCmd.AddCommand(newSweepCommand(&configFlag))

	return rootCmd
}
