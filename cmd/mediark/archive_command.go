package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/mediark/internal/archive"
	"github.com/John-Robertt/mediark/internal/config"
	"github.com/John-Robertt/mediark/internal/fingerprint"
	"github.com/John-Robertt/mediark/internal/metadata"
)

func newArchiveCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "archive [source] [dest]",
		Short: "把导入目录归档为按日期分区的规范树（逐条移动，冲突按大小结算）",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := config.ArchiveCLI{ConfigPath: *configFlag}
			if len(args) > 0 {
				cli.Source = args[0]
			}
			if len(args) > 1 {
				cli.Dest = args[1]
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("读取当前目录失败：%w", err)
			}
			eff, err := config.LoadArchive(cwd, cli)
			if err != nil {
				return err
			}

			// 同一归档根必须互斥：流水线内部串行处理条目，
			// 跨进程的并发 run 由文件锁挡在 run 之前。
			lock, err := acquireRunLock(eff.Dest)
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			var obs archive.Observer
			if w, ok := pickProgressWriter(); ok {
				obs = &archiveLineObserver{w: w}
			}

			rr := archive.ExecuteWithObserver(cmd.Context(), archive.Options{
				SourceRoot:  eff.Source,
				DestRoot:    eff.Dest,
				ExcludeDirs: eff.ExcludeDirs,
			}, metadata.EmbeddedResolver{}, fingerprint.ContentService{}, obs)

			// 空 run 不写任何状态（不在归档树内留目录）。
			if rr.Summary.Analyzed > 0 {
				if werr := writeArchiveReportFile(eff.Dest, rr); werr != nil {
					fmt.Fprintf(os.Stderr, "写入 report.json 失败：%v\n", werr)
				}
			}

			emitArchiveReport(rr)
			if rr.Summary.Errors > 0 {
				return errRunHadErrors
			}
			return nil
		},
	}
}
