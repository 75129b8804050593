package dto

// Slack Events API のリクエスト種別
const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"
)

// SlackEventRequest は Slack Events API のリクエスト全体を表します
type SlackEventRequest struct {
	Token     string     `json:"token"`
	TeamID    string     `json:"team_id"`
	APIAppID  string     `json:"api_app_id"`
	Event     SlackEvent `json:"event"`
	Type      string     `json:"type"` // "event_callback", "url_verification"
	EventID   string     `json:"event_id"`
	EventTime int64      `json:"event_time"`
	Challenge string     `json:"challenge,omitempty"` // URL検証時のみ
}

// SlackEvent はメッセージイベントを表します
type SlackEvent struct {
	Type      string      `json:"type"`              // "message" など
	SubType   string      `json:"subtype,omitempty"` // "file_share", "message_changed" など
	User      string      `json:"user"`
	Text      string      `json:"text"`
	Channel   string      `json:"channel"`
	Timestamp string      `json:"ts"`
	BotID     string      `json:"bot_id,omitempty"`
	Files     []SlackFile `json:"files,omitempty"` // file_share の場合のみ
}

// SlackFile はメッセージに添付されたファイルを表します
type SlackFile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Mimetype   string `json:"mimetype"`
	Filetype   string `json:"filetype"`
	Size       int64  `json:"size"`
	URLPrivate string `json:"url_private"`
}
