package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages
		"Starting pipeline for %s":                         "%s のパイプラインを開始します",
		"Pipeline completed: %s":                           "パイプラインが完了しました: %s",
		"Output saved to %s":                               "出力を %s に保存しました",
		"Summary saved to %s":                              "サマリーを %s に保存しました",
		"Failed to write summary: %s":                      "サマリーの書き込みに失敗しました: %s",
		"Interrupted, shutting down...":                    "中断されました。シャットダウン中...",
		"Running %s":                                       "%s を実行中",
		"Cannot remove %s: %v":                             "%s を削除できません: %v",
		"Using %s and %s":                                  "%s と %s を使用します",
		"Dry run: %s":                                      "ドライラン: %s",
		"Segment %d failed: %v":                            "セグメント %d が失敗しました: %v",
		"Skipping segment %d: %v":                          "セグメント %d をスキップします: %v",
		"%s has no audio stream; continuing without audio": "%s に音声ストリームがありません。音声なしで続行します",

		// Cut stage
		"Cutting %d segments from %s":                               "%[2]s から %[1]d セグメントを切り出し中",
		"Cutting frames %s of %s":                                   "%[2]s のフレーム %[1]s を切り出し中",
		"Cut %d clips":                                              "%d クリップを切り出しました",
		"Segment %s starts after the last frame":                    "セグメント %s は最終フレームより後に開始しています",
		"Segment %s starts after the last frame (%d frames)":        "セグメント %s は最終フレームより後に開始しています (%d フレーム)",
		"Segment %s truncated: source ended after %d frames":        "セグメント %s を短縮しました: ソースは %d フレームで終了しています",
		"Segment %d is past the end of the source; no clip written": "セグメント %d はソースの終端を超えているため、クリップは書き出されません",
		"Stopped reading %s after %d frames: %v":                    "%s の読み込みを %d フレームで停止しました: %v",

		// Merge stage
		"Merging %d clips":                        "%d クリップを結合中",
		"Merged %d frames at %s":                  "%[2]s で %[1]d フレームを結合しました",
		"Merged %d frames from %d inputs into %s": "%[2]d 個の入力から %[1]d フレームを %[3]s に結合しました",
		"Merge skipped %s":                        "結合で %s をスキップしました",
		"Merge failed: %v":                        "結合に失敗しました: %v",
		"Profile mismatch: %s is %s, expected %s": "プロファイル不一致: %s は %s ですが、%s が必要です",
		"Skipping %s: %v":                         "%s をスキップします: %v",

		// Audio and remux stages
		"Extracting audio for %d segments":                                "%d セグメントの音声を抽出中",
		"Extracting audio %s-%s into %s":                                  "音声 %s-%s を %s に抽出中",
		"Audio extraction failed: %v":                                     "音声の抽出に失敗しました: %v",
		"Audio extraction failed for segment %d: %v":                      "セグメント %d の音声抽出に失敗しました: %v",
		"Muxing %s and %s into %s":                                        "%s と %s を %s に多重化中",
		"Mux failed for segment %d: %v":                                   "セグメント %d の多重化に失敗しました: %v",
		"Segment %d audio and video differ by %.3fs":                      "セグメント %d の音声と映像の長さが %.3f 秒異なります",
		"Remux failed: %v":                                                "再多重化に失敗しました: %v",
		"Segment %d merged with %d of %d frames; slicing its audio again": "セグメント %d は %d/%d フレームのみ結合されたため、音声を切り直します",

		// Upscale stage
		"Upscaling by %g":          "%g 倍に拡大中",
		"Scaling %s from %s to %s": "%s を %s から %s に拡大中",
		"Upscaled to %dx%d":        "%dx%d に拡大しました",
		"Upscale failed: %v":       "拡大に失敗しました: %v",

		// Soundtrack stage
		"Adding soundtrack from %d audio files": "%d 個の音声ファイルからサウンドトラックを追加中",
		"Joining %d audio files into %s":        "%d 個の音声ファイルを %s に連結中",
		"Muxing %s onto %s":                     "%s を %s に多重化中",
		"Audio join failed: %v":                 "音声の連結に失敗しました: %v",
		"Audio mux failed: %v":                  "音声の多重化に失敗しました: %v",
		"Soundtrack failed: %v":                 "サウンドトラックの追加に失敗しました: %v",

		// Contact sheet
		"Wrote contact sheet %s (%dx%d)":   "コンタクトシート %s を書き出しました (%dx%d)",
		"Skipping %s on contact sheet: %v": "コンタクトシートで %s をスキップします: %v",
		"Contact sheet failed: %v":         "コンタクトシートの作成に失敗しました: %v",
		"Cannot open %s: %v":               "%s を開けません: %v",
		"Cannot read %s: %v":               "%s を読み込めません: %v",

		// Probing
		"Container probe failed for %s: %v": "%s のコンテナ解析に失敗しました: %v",
		"Container probe incomplete for %s": "%s のコンテナ解析が不完全です",
	})
}
