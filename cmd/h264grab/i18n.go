// Package main provides localization for the h264grab CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Decoding": "デコード",
		"Output":   "出力",
		"Debug":    "デバッグ",
		"Logging":  "ログ",

		// Root command
		"Decode the first frame of an H.264 stream into an image": "H.264ストリームの最初のフレームを画像にデコード",

		// Units command
		"List the NAL units of a stream":         "ストリームのNALユニットを一覧表示",
		"Print the listing as JSON":              "一覧をJSONで出力",
		"%d units, %d parameter sets, %d slices": "%d ユニット, パラメータセット %d, スライス %d",

		// Version command
		"Show version information": "バージョン情報を表示",
		"h264grab version %s":      "h264grab バージョン %s",

		// Decoding flags
		"Decoding engine (%s)":                                            "デコードエンジン（%s）",
		"Path to the OpenH264 shared library":                             "OpenH264共有ライブラリのパス",
		"Path to the ffmpeg executable":                                   "ffmpeg実行ファイルのパス",
		"Engine trace level (quiet, error, warning, info, debug, detail)": "エンジンのトレースレベル（quiet, error, warning, info, debug, detail）",
		"Enable engine error concealment":                                 "エンジンのエラー補間を有効化",

		// Output flags
		"Output format (ppm, png, jpeg, bmp, tiff; default: from extension)": "出力形式（ppm, png, jpeg, bmp, tiff、デフォルト: 拡張子から判定）",
		"JPEG quality (1-100)":                                            "JPEG品質（1-100）",
		"Downscale to at most this width (0 = keep size)":                 "この幅以下に縮小（0 = 元のサイズ）",
		"Draw size, engine and unit number along the bottom edge":         "下端にサイズ・エンジン・ユニット番号を描画",
		"Write a run report to file (.json for JSON, Markdown otherwise)": "実行レポートをファイルに出力（.jsonならJSON、それ以外はMarkdown）",
		"YAML configuration file":                                         "YAML設定ファイル",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力のディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Runtime messages
		"No frame decoded from %s": "%s からフレームをデコードできませんでした",

		// Report content
		"Decode Summary":   "デコードサマリー",
		"Input":            "入力",
		"Item":             "項目",
		"Value":            "値",
		"Path":             "パス",
		"Size":             "サイズ",
		"Container":        "コンテナ",
		"NAL Units":        "NALユニット数",
		"Parameter Sets":   "パラメータセット数",
		"Slices":           "スライス数",
		"Engine":           "エンジン",
		"Units Submitted":  "投入ユニット数",
		"Picture Unit":     "ピクチャのユニット",
		"Picture Size":     "ピクチャサイズ",
		"Strides":          "ストライド",
		"Picture":          "ピクチャ",
		"No frame decoded": "フレームをデコードできませんでした",
		"Format":           "形式",
		"Raster Size":      "画像サイズ",
		"File Size":        "ファイルサイズ",
		"Resized":          "縮小",
		"Caption":          "キャプション",
		"Yes":              "はい",
		"No":               "いいえ",
		"Generated at":     "生成日時",
	})
}
