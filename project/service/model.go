package service

import "slack-archive-sync/project/domain"

// DispositionKind はイベント分類の結果種別です
type DispositionKind int

const (
	// DispositionNoOp は対象外のイベント（受信のみ応答）
	DispositionNoOp DispositionKind = iota
	// DispositionVerify は URL 検証リクエスト（challenge をそのまま返す）
	DispositionVerify
	// DispositionProcess は添付ファイルの取り込み対象
	DispositionProcess
	// DispositionIgnore は編集・削除・Bot投稿など取り込み対象外のメッセージ
	DispositionIgnore
)

func (k DispositionKind) String() string {
	switch k {
	case DispositionVerify:
		return "verify"
	case DispositionProcess:
		return "process"
	case DispositionIgnore:
		return "ignore"
	default:
		return "noop"
	}
}

// Disposition はイベント分類の結果を表します
// Kind に応じて Challenge または Event のどちらかが設定されます
type Disposition struct {
	Kind DispositionKind

	// Challenge は DispositionVerify の場合のみ設定されます
	Challenge string

	// Event は DispositionProcess の場合のみ設定されます
	Event *MessageEvent
}

// MessageEvent は取り込み対象のメッセージイベントを表します
type MessageEvent struct {
	// EventID はSlackイベントのID（再送時も同じ値）
	EventID string

	// TeamID はSlackワークスペースのID
	TeamID string

	// ChannelID はメッセージが投稿されたチャンネルのID
	ChannelID string

	// Text はメッセージ本文（未設定の場合は "untitled"）
	Text string

	// Files は添付ファイル（未設定の場合は空）
	Files []domain.Attachment
}

// IngestSummary は1イベント分の取り込み結果の集計です
type IngestSummary struct {
	Attachments int
	Skipped     int
	Failed      int
	Uploaded    int
	Synced      int
	SinkErrors  int
}
