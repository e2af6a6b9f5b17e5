// Package main provides localization for the reelcut CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Input":             "入力",
		"Output":            "出力先",
		"Audio":             "音声",
		"Video and Quality": "動画と品質",
		"Logging":           "ログ",
		"Tools":             "ツール",

		// Root command
		"Cut, merge and upscale highlight reels from a recording": "録画からハイライト動画を切り出し、結合し、拡大します",
		"Error: %s":                     "エラー: %s",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",

		// Commands
		"Run the full pipeline: cut, audio, merge, upscale":       "切り出し・音声・結合・拡大の全工程を実行",
		"Copy an inclusive frame range into a new clip":           "指定フレーム範囲（両端を含む）を新しいクリップにコピー",
		"Concatenate clips that share frame rate and dimensions":  "フレームレートとサイズが同じクリップを連結",
		"Extract the audio of each frame range into its own file": "フレーム範囲ごとの音声を個別のファイルに抽出",
		"Mux each video clip with its audio file":                 "各クリップに対応する音声ファイルを多重化",
		"Resize every frame of a video by a scale factor":         "動画の全フレームを倍率で拡大",
		"Render a PNG contact sheet of clips":                     "クリップのPNGコンタクトシートを作成",
		"Show stream information of media files":                  "メディアファイルのストリーム情報を表示",
		"Show version information":                                "バージョン情報を表示",
		"reelcut version %s":                                      "reelcut バージョン %s",

		// Global flags
		"Log level (debug, info, warn, error)":                                   "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                                "すべてのログ出力を抑制",
		"Do not draw progress bars":                                              "プログレスバーを表示しない",
		"Path to the ffmpeg executable (falls back to FFMPEG_PATH, then PATH)":   "ffmpeg 実行ファイルのパス（未指定時は FFMPEG_PATH、次に PATH）",
		"Path to the ffprobe executable (falls back to FFPROBE_PATH, then PATH)": "ffprobe 実行ファイルのパス（未指定時は FFPROBE_PATH、次に PATH）",
		"install ffmpeg or pass --ffmpeg":                                        "ffmpeg をインストールするか --ffmpeg を指定してください",
		"install ffprobe or pass --ffprobe":                                      "ffprobe をインストールするか --ffprobe を指定してください",

		// Input flags
		"YAML configuration file":                                                   "YAML 設定ファイル",
		"Source video (overrides the configuration file)":                           "元動画（設定ファイルを上書き）",
		"Frame range START-END, repeatable (replaces configured segments)":          "フレーム範囲 START-END、複数指定可（設定のセグメントを置換）",
		"Time range HH:MM:SS-HH:MM:SS, repeatable (replaces configured segments)":   "時間範囲 HH:MM:SS-HH:MM:SS、複数指定可（設定のセグメントを置換）",
		"Frame range START-END, repeatable":                                         "フレーム範囲 START-END、複数指定可",
		"Frame rate for timecodes (default: the source frame rate)":                 "タイムコード用のフレームレート（デフォルト: 元動画のフレームレート）",
		"Frame rate for converting frames to time (default: the source frame rate)": "フレームを時間に変換するフレームレート（デフォルト: 元動画のフレームレート）",
		"Convert a frame number or HH:MM:SS timestamp using the file's frame rate":  "ファイルのフレームレートでフレーム番号または HH:MM:SS を変換",

		// Output flags
		"Output MP4 file path":                               "出力MP4ファイルパス",
		"Output PNG file path":                               "出力PNGファイルパス",
		"Directory for intermediate files":                   "中間ファイルのディレクトリ",
		"Directory for audio_NNN files":                      "audio_NNN ファイルのディレクトリ",
		"Directory for segment_NNN.mp4 files":                "segment_NNN.mp4 ファイルのディレクトリ",
		"Remove intermediate files after a successful run":   "正常終了後に中間ファイルを削除",
		"Write a PNG overview of the clips":                  "クリップの一覧をPNGで書き出し",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",
		"Skip segments that fail to cut instead of aborting": "切り出しに失敗したセグメントを中断せずスキップ",
		"Heading drawn above the tiles":                      "タイルの上に描く見出し",
		"Tiles per row":                                      "1行あたりのタイル数",
		"Tile width in pixels":                               "タイルの幅（ピクセル）",

		// Audio flags
		"Produce a video-only reel":                             "映像のみのハイライトを作成",
		"Fail when segment audio and video lengths differ":      "セグメントの音声と映像の長さが異なる場合は失敗",
		"Re-encode audio with this codec instead of copying it": "音声をコピーせずこのコーデックで再エンコード",
		"Audio bitrate when re-encoding (default: 192k)":        "再エンコード時の音声ビットレート（デフォルト: 192k）",
		"Audio file extension":                                  "音声ファイルの拡張子",
		"VIDEO,AUDIO file pair, repeatable":                     "VIDEO,AUDIO のファイルペア、複数指定可",
		"Audio codec of the muxed files":                        "多重化ファイルの音声コーデック",
		"Audio bitrate of the muxed files":                      "多重化ファイルの音声ビットレート",
		"Allowed audio/video length difference in seconds":      "許容する音声と映像の長さの差（秒）",
		"Fail when a pair differs by more than --max-drift":     "ペアの差が --max-drift を超えたら失敗",
		"Print ffmpeg commands without running them":            "ffmpeg コマンドを実行せずに表示",

		// Video flags
		"Upscale factor (1 disables upscaling)":                             "拡大倍率（1 で拡大しない）",
		"Resize kernel (cubic, bilinear, approx-bilinear, nearest)":         "リサイズ方式（cubic, bilinear, approx-bilinear, nearest）",
		"Quality preset (low, medium, high)":                                "品質プリセット（low, medium, high）",
		"Video CRF value (0-51, lower is better, overrides quality preset)": "動画のCRF値（0-51、低いほど高品質、品質プリセットを上書き）",
		"Encoder speed preset (e.g. veryfast, fast, slow)":                  "エンコード速度プリセット（例: veryfast, fast, slow）",
		"ffmpeg video encoder (default: libx264)":                           "ffmpeg の動画エンコーダ（デフォルト: libx264）",
		"Target video bitrate in kbps instead of CRF":                       "CRF の代わりに使う目標ビットレート（kbps）",

		// Command output
		"Wrote %d frames to %s":                                   "%[1]d フレームを %[2]s に書き出しました",
		"Wrote %d frames (%s -> %s) to %s":                        "%[1]d フレーム（%[2]s -> %[3]s）を %[4]s に書き出しました",
		"Wrote %dx%d sheet with %d tiles to %s":                   "%[3]d タイルの %[1]dx%[2]d シートを %[4]s に書き出しました",
		"Skipped %s":                                              "%s をスキップしました",
		"Segment %s starts after the last frame; nothing written": "セグメント %s は最終フレームより後に開始しているため、何も書き出していません",
		"Wrote %d frames to %s (source ended before frame %d)":    "%[1]d フレームを %[2]s に書き出しました（ソースはフレーム %[3]d の前に終了しました）",

		// Summary
		"Highlight Reel Summary": "ハイライト動画サマリー",
		"Generated at":           "生成日時",
		"Source":                 "元動画",
		"Segments":               "セグメント",
		"Settings":               "設定",
		"Stage Timings":          "工程別の所要時間",
		"Stage":                  "工程",
		"Item":                   "項目",
		"Value":                  "値",
		"File":                   "ファイル",
		"File Size":              "ファイルサイズ",
		"Resolution":             "解像度",
		"Frame Rate":             "フレームレート",
		"Frames":                 "フレーム数",
		"Duration":               "長さ",
		"Length":                 "長さ",
		"Time":                   "時間",
		"Total":                  "合計",
		"Status":                 "状態",
		"OK":                     "成功",
		"Failed":                 "失敗",
		"Truncated":              "短縮",
		"Out of range":           "範囲外",
		"Skipped during merge":   "結合時にスキップ",
		"Scale":                  "拡大倍率",
		"Interpolation":          "補間",
		"Codec":                  "コーデック",
		"Quality":                "品質",
		"Bitrate":                "ビットレート",
		"Contact Sheet":          "コンタクトシート",
		"Yes":                    "はい",
		"No":                     "いいえ",
		"run":                    "実行",
	})
}
