package contact

import "errors"

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

type ContactReply struct {
	Reply    string `json:"reply"`
	Fallback bool   `json:"fallback"`
}

const (
	logService         = "contact"
	actionReceived     = "CONTACT_RECEIVED"
	actionReplyFailed  = "CONTACT_REPLY_FAILED"
	maxNameRunes       = 100
	maxMessageRunes    = 2000
	maxReplyTokens     = 80
	fallbackReplyShape = "Cảm ơn %s, Alex đã nhận được thông tin và sẽ phản hồi bạn sớm nhất!"
	replyPromptShape   = `Khách hàng tên %s vừa gửi tin nhắn: "%s". Hãy viết 1 câu cảm ơn cực kỳ chuyên nghiệp, ngắn gọn (dưới 20 từ) để Alex gửi lại họ ngay lập tức. Xưng Alex, gọi Bạn.`
)

var ErrEmptySubmission = errors.New("name and message are required")
