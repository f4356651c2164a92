package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/trungvq/workmate/internal/tools"
)

const (
	defaultGmailBaseURL  = "https://gmail.googleapis.com/gmail/v1"
	defaultEmailPageSize = 5
	maxBodyPreviewRunes  = 2000
)

// GmailService wraps the read-only parts of the Gmail v1 API used by the
// agent: labels, message search/read, and draft listing/reading.
type GmailService struct {
	rest *restClient
}

// NewGmailService creates a service for the authenticated user ('me').
func NewGmailService(creds Credentials, opts ...Option) *GmailService {
	return &GmailService{rest: newRESTClient(defaultGmailBaseURL, creds, opts...)}
}

type header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type messagePart struct {
	MimeType string `json:"mimeType"`
	Headers  []header `json:"headers"`
	Body     struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []messagePart `json:"parts"`
}

type gmailMessage struct {
	ID      string      `json:"id"`
	Snippet string      `json:"snippet"`
	Payload messagePart `json:"payload"`
}

type messageRef struct {
	ID string `json:"id"`
}

type messagesPage struct {
	Messages []messageRef `json:"messages"`
}

type draftRef struct {
	ID string `json:"id"`
}

type draftsPage struct {
	Drafts []draftRef `json:"drafts"`
}

type draft struct {
	ID      string       `json:"id"`
	Message gmailMessage `json:"message"`
}

func headerValue(headers []header, name string, fallback string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return fallback
}

// decodeBody decodes the base64url message body data, padded or not.
func decodeBody(data string) (string, error) {
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded), nil
	}
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// plainTextBody extracts the text/plain body of a payload: the matching part
// for multipart messages, the body itself for simple ones.
func plainTextBody(payload messagePart) string {
	if len(payload.Parts) > 0 {
		for _, p := range payload.Parts {
			if p.MimeType == "text/plain" {
				return p.Body.Data
			}
		}
		return ""
	}
	return payload.Body.Data
}

// ListLabels lists all labels in the user's mailbox.
func (s *GmailService) ListLabels(ctx context.Context) (string, error) {
	var out struct {
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	}
	if err := s.rest.do(ctx, http.MethodGet, "/users/me/labels", nil, nil, &out); err != nil {
		return "", fmt.Errorf("liệt kê nhãn thất bại: %w", err)
	}
	if len(out.Labels) == 0 {
		return "Không tìm thấy nhãn nào.", nil
	}
	names := make([]string, 0, len(out.Labels))
	for _, l := range out.Labels {
		names = append(names, l.Name)
	}
	return "Đây là danh sách các nhãn của bạn:\n- " + strings.Join(names, "\n- "), nil
}

// ListEmails searches the mailbox with combined filters and previews subject,
// sender and ID for each match.
func (s *GmailService) ListEmails(ctx context.Context, query, fromSender, label string, isUnread bool, maxResults int) (string, error) {
	var searchParts []string
	if query != "" {
		searchParts = append(searchParts, query)
	}
	if fromSender != "" {
		searchParts = append(searchParts, "from:"+fromSender)
	}
	if label != "" {
		// Quotes keep labels containing spaces intact; the label: operator
		// covers system and user labels alike.
		searchParts = append(searchParts, fmt.Sprintf("label:%q", label))
	}
	if isUnread {
		searchParts = append(searchParts, "is:unread")
	}
	searchQuery := "in:inbox"
	if len(searchParts) > 0 {
		searchQuery = strings.Join(searchParts, " ")
	}
	if maxResults <= 0 {
		maxResults = defaultEmailPageSize
	}

	var page messagesPage
	err := s.rest.do(ctx, http.MethodGet, "/users/me/messages", map[string]string{
		"q":          searchQuery,
		"maxResults": strconv.Itoa(maxResults),
	}, nil, &page)
	if err != nil {
		return "", fmt.Errorf("tìm kiếm email thất bại: %w", err)
	}
	if len(page.Messages) == 0 {
		return "Không tìm thấy email nào khớp với tiêu chí của bạn.", nil
	}

	previews := make([]string, 0, len(page.Messages))
	for _, ref := range page.Messages {
		var msg gmailMessage
		err := s.rest.do(ctx, http.MethodGet, "/users/me/messages/"+ref.ID, map[string]string{
			"format": "metadata",
		}, nil, &msg)
		if err != nil {
			return "", fmt.Errorf("đọc email %s thất bại: %w", ref.ID, err)
		}
		subject := headerValue(msg.Payload.Headers, "subject", "Không có tiêu đề")
		sender := headerValue(msg.Payload.Headers, "from", "Không rõ người gửi")
		previews = append(previews, fmt.Sprintf("- ID: %s\n  Tiêu đề: %s\n  Người gửi: %s", ref.ID, subject, sender))
	}
	return "Đây là các email được tìm thấy:\n\n" + strings.Join(previews, "\n\n"), nil
}

// ReadEmailContent reads one email by ID and returns its snippet plus the
// text/plain body, truncated.
func (s *GmailService) ReadEmailContent(ctx context.Context, emailID string) (string, error) {
	if emailID == "" {
		return "", fmt.Errorf("cần phải có ID của email để đọc")
	}
	var msg gmailMessage
	err := s.rest.do(ctx, http.MethodGet, "/users/me/messages/"+emailID, map[string]string{
		"format": "full",
	}, nil, &msg)
	if err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("không tìm thấy email với ID '%s'", emailID)
		}
		return "", fmt.Errorf("đọc email thất bại: %w", err)
	}

	bodyData := plainTextBody(msg.Payload)
	if bodyData == "" {
		return "Không thể trích xuất nội dung văn bản từ email này.", nil
	}
	decoded, err := decodeBody(bodyData)
	if err != nil {
		return "", fmt.Errorf("giải mã nội dung email thất bại: %w", err)
	}
	if runes := []rune(decoded); len(runes) > maxBodyPreviewRunes {
		decoded = string(runes[:maxBodyPreviewRunes]) + "..."
	}

	snippet := msg.Snippet
	if snippet == "" {
		snippet = "Không có tóm tắt."
	}
	return fmt.Sprintf("Tóm tắt ngắn: %s\n\nNội dung đầy đủ:\n---\n%s", snippet, decoded), nil
}

// ListDrafts lists unsent drafts with their subjects.
func (s *GmailService) ListDrafts(ctx context.Context, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = defaultEmailPageSize
	}
	var page draftsPage
	err := s.rest.do(ctx, http.MethodGet, "/users/me/drafts", map[string]string{
		"maxResults": strconv.Itoa(maxResults),
	}, nil, &page)
	if err != nil {
		return "", fmt.Errorf("liệt kê thư nháp thất bại: %w", err)
	}
	if len(page.Drafts) == 0 {
		return "Bạn không có thư nháp nào.", nil
	}

	previews := make([]string, 0, len(page.Drafts))
	for _, ref := range page.Drafts {
		var d draft
		if err := s.rest.do(ctx, http.MethodGet, "/users/me/drafts/"+ref.ID, nil, nil, &d); err != nil {
			return "", fmt.Errorf("đọc thư nháp %s thất bại: %w", ref.ID, err)
		}
		subject := headerValue(d.Message.Payload.Headers, "subject", "Không có tiêu đề")
		previews = append(previews, fmt.Sprintf("- ID Nháp: %s\n  Tiêu đề: %s", ref.ID, subject))
	}
	return "Đây là danh sách các thư nháp của bạn:\n\n" + strings.Join(previews, "\n\n"), nil
}

// ReadDraftContent reads one draft by ID: recipient, subject and body.
func (s *GmailService) ReadDraftContent(ctx context.Context, draftID string) (string, error) {
	if draftID == "" {
		return "", fmt.Errorf("cần phải có ID của thư nháp để đọc")
	}
	var d draft
	err := s.rest.do(ctx, http.MethodGet, "/users/me/drafts/"+draftID, map[string]string{
		"format": "full",
	}, nil, &d)
	if err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("không tìm thấy thư nháp với ID '%s'", draftID)
		}
		return "", fmt.Errorf("đọc thư nháp thất bại: %w", err)
	}

	headers := d.Message.Payload.Headers
	recipient := headerValue(headers, "to", "Chưa có người nhận")
	subject := headerValue(headers, "subject", "Không có tiêu đề")

	content := "Nội dung trống."
	if bodyData := plainTextBody(d.Message.Payload); bodyData != "" {
		decoded, err := decodeBody(bodyData)
		if err != nil {
			return "", fmt.Errorf("giải mã nội dung thư nháp thất bại: %w", err)
		}
		content = decoded
	}

	return fmt.Sprintf("Người nhận: %s\nTiêu đề: %s\n--- Nội dung ---\n%s", recipient, subject, content), nil
}

// Tools exposes the Gmail operations as registry specs.
func (s *GmailService) Tools() []tools.Spec {
	return []tools.Spec{
		{
			Name:        "list_labels",
			Description: "Liệt kê tất cả các nhãn (labels) có trong hộp thư của người dùng.",
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.ListLabels(ctx)
			},
		},
		{
			Name:        "list_emails",
			Description: "Tìm kiếm và liệt kê các email với các bộ lọc chi tiết. Trả về tiêu đề, người gửi và ID của mỗi email.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Các từ khóa chung để tìm trong nội dung email"},
					"from_sender": {"type": "string", "description": "Lọc email từ một người gửi cụ thể"},
					"label": {"type": "string", "description": "Lọc email theo nhãn, ví dụ 'INBOX' hoặc 'Project X'"},
					"is_unread": {"type": "boolean", "description": "Chỉ tìm các email chưa đọc"},
					"max_results": {"type": "integer", "description": "Số lượng email tối đa trả về"}
				}
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.ListEmails(ctx,
					tools.StringArg(args, "query"),
					tools.StringArg(args, "from_sender"),
					tools.StringArg(args, "label"),
					tools.BoolArg(args, "is_unread"),
					tools.IntArg(args, "max_results", defaultEmailPageSize))
			},
		},
		{
			Name:        "read_email_content",
			Description: "Đọc nội dung chi tiết của một email cụ thể bằng ID của nó.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"email_id": {"type": "string", "description": "ID của email cần đọc"}
				},
				"required": ["email_id"]
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.ReadEmailContent(ctx, tools.StringArg(args, "email_id"))
			},
		},
		{
			Name:        "list_drafts",
			Description: "Liệt kê các thư nháp chưa gửi trong hộp thư của người dùng.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"max_results": {"type": "integer", "description": "Số lượng thư nháp tối đa trả về"}
				}
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.ListDrafts(ctx, tools.IntArg(args, "max_results", defaultEmailPageSize))
			},
		},
		{
			Name:        "read_draft_content",
			Description: "Đọc nội dung chi tiết của một thư nháp cụ thể bằng ID của nó: người nhận, tiêu đề và nội dung.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"draft_id": {"type": "string", "description": "ID của thư nháp cần đọc"}
				},
				"required": ["draft_id"]
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.ReadDraftContent(ctx, tools.StringArg(args, "draft_id"))
			},
		},
	}
}
