package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/mediark/internal/config"
	"github.com/John-Robertt/mediark/internal/sweep"
)

func newSweepCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep [root] [quarantine]",
		Short: "按（指纹, 大小）分组清扫归档树，把重复副本搬入隔离目录",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := config.SweepCLI{ConfigPath: *configFlag}
			if len(args) > 0 {
				cli.Root = args[0]
			}
			if len(args) > 1 {
				cli.Quarantine = args[1]
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("读取当前目录失败：%w", err)
			}
			eff, err := config.LoadSweep(cwd, cli)
			if err != nil {
				return err
			}

			// 清扫和归档共用同一把根锁：两者都会移动根下的文件。
			lock, err := acquireRunLock(eff.Root)
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			var obs sweep.Observer
			if w, ok := pickProgressWriter(); ok {
				obs = &sweepLineObserver{w: w}
			}

			rr := sweep.ExecuteWithObserver(cmd.Context(), sweep.Options{
				Root:           eff.Root,
				QuarantineRoot: eff.Quarantine,
			}, obs)

			if rr.Summary.Scanned > 0 {
				if werr := writeSweepReportFile(eff.Root, rr); werr != nil {
					fmt.Fprintf(os.Stderr, "写入 sweep-report.json 失败：%v\n", werr)
				}
			}

			emitSweepReport(rr)
			if rr.Summary.Failed > 0 {
				return errRunHadErrors
			}
			return nil
		},
	}
}
