package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Level tags
		"warning": "警告",
		"error":   "エラー",

		// Run level messages (info)
		"Found %d NAL units (%d parameter sets, %d slices)": "%d 個のNALユニットを検出しました (パラメータセット %d, スライス %d)",
		"MP4 input: track %d, %d samples":                   "MP4入力: トラック %d, %d サンプル",
		"Decoding with %s":                                  "%s でデコードします",
		"Decoded %dx%d picture at unit %d":                  "ユニット %[3]d で %[1]dx%[2]d のピクチャをデコードしました",
		"No frame decoded after %d units":                   "%d ユニットを処理しましたがフレームをデコードできませんでした",
		"Wrote %s (%d bytes)":                               "%s を書き出しました (%d バイト)",
		"Report saved to %s":                                "レポートを %s に保存しました",
		"Interrupted, shutting down...":                     "中断されました。終了処理中...",

		// Run level failures
		"Failed to read input: %s":            "入力の読み込みに失敗しました: %s",
		"Failed to read MP4 input: %s":        "MP4入力の読み込みに失敗しました: %s",
		"Failed to select engine: %s":         "デコードエンジンの選択に失敗しました: %s",
		"Failed to open decoder session: %s":  "デコーダーセッションを開けませんでした: %s",
		"Failed to close decoder session: %s": "デコーダーセッションを閉じられませんでした: %s",
		"Failed to decode: %s":                "デコードに失敗しました: %s",
		"Failed to convert picture: %s":       "ピクチャの変換に失敗しました: %s",
		"Failed to encode output: %s":         "出力のエンコードに失敗しました: %s",
		"Failed to write output: %s":          "出力の書き込みに失敗しました: %s",
		"Failed to write report: %s":          "レポートの書き込みに失敗しました: %s",
		"Failed to save debug %s: %s":         "デバッグ出力 %s の保存に失敗しました: %s",

		// Engine and session (debug)
		"Selected engine %s":                     "エンジン %s を選択しました",
		"Engine %s initialized":                  "エンジン %s を初期化しました",
		"Could not set engine trace level: %v":   "エンジンのトレースレベルを設定できませんでした: %v",
		"Unit %d: engine status 0x%x":            "ユニット %d: エンジン状態 0x%x",
		"Unit %d: buffer ready without planes":   "ユニット %d: バッファ準備完了だがプレーンがありません",
		"Unit %d: picture %dx%d (strides %d/%d)": "ユニット %d: ピクチャ %dx%d (ストライド %d/%d)",

		// Convert and output stages (debug)
		"Scaling %dx%d to %dx%d": "%dx%d を %dx%d に縮小します",
		"Encoded %s: %d bytes":   "%s にエンコードしました: %d バイト",
	})
}
