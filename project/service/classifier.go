package service

import (
	"slack-archive-sync/project/domain"
	"slack-archive-sync/project/dto"
)

const (
	eventTypeMessage = "message"
	subTypeFileShare = "file_share"
)

// Classify は Slack イベントを分類します
// 副作用はなく、フィールドが欠けていても panic せず DispositionNoOp に倒します
func Classify(req *dto.SlackEventRequest) Disposition {
	if req == nil {
		return Disposition{Kind: DispositionNoOp}
	}

	switch req.Type {
	case dto.TypeURLVerification:
		return Disposition{Kind: DispositionVerify, Challenge: req.Challenge}
	case dto.TypeEventCallback:
	default:
		return Disposition{Kind: DispositionNoOp}
	}

	ev := req.Event
	if ev.Type != eventTypeMessage {
		return Disposition{Kind: DispositionNoOp}
	}

	// 編集・削除・Bot投稿なども type=message で届くため subtype で除外する
	if ev.SubType != "" && ev.SubType != subTypeFileShare {
		return Disposition{Kind: DispositionIgnore}
	}

	text := ev.Text
	if text == "" {
		text = domain.DefaultTitle
	}

	files := make([]domain.Attachment, 0, len(ev.Files))
	for _, f := range ev.Files {
		files = append(files, domain.Attachment{
			ID:         f.ID,
			Name:       f.Name,
			Title:      f.Title,
			Mimetype:   f.Mimetype,
			URLPrivate: f.URLPrivate,
		})
	}

	return Disposition{
		Kind: DispositionProcess,
		Event: &MessageEvent{
			EventID:   req.EventID,
			TeamID:    req.TeamID,
			ChannelID: ev.Channel,
			Text:      text,
			Files:     files,
		},
	}
}
