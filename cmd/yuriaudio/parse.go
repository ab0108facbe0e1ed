package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/YuriAudio2Notion/internal/blurb"
	"github.com/John-Robertt/YuriAudio2Notion/internal/provider/fanjiao"
)

type parsedView struct {
	MainText         string   `json:"main_text"`
	SupplementalText string   `json:"supplemental_text"`
	ProducerName     string   `json:"producer_name"`
	Tags             []string `json:"tags"`
	EpisodeCount     int      `json:"episode_count"`
}

// newParseCommand 离线解析一段专辑简介，便于排查抽取结果。
func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file|-]",
		Short: "解析专辑简介（调试用）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			b, err := io.ReadAll(io.LimitReader(r, 1<<20))
			if err != nil {
				return fmt.Errorf("读取简介失败：%w", err)
			}

			d := blurb.Parse(fanjiao.PlainText(string(b)))
			v := parsedView{
				MainText:         d.MainText,
				SupplementalText: d.SupplementalText,
				ProducerName:     d.ProducerName,
				Tags:             d.Tags,
				EpisodeCount:     d.EpisodeCount,
			}
			if v.Tags == nil {
				v.Tags = []string{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
}
