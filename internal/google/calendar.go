package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/trungvq/workmate/internal/tools"
)

const (
	defaultCalendarBaseURL = "https://www.googleapis.com/calendar/v3"
	calendarTimeZoneName   = "Asia/Ho_Chi_Minh"
)

// CalendarService wraps the Google Calendar v3 events API for one calendar.
type CalendarService struct {
	rest       *restClient
	calendarID string
	loc        *time.Location
	now        func() time.Time
}

// NewCalendarService creates a service operating on calendarID. Times without
// an explicit offset are interpreted in UTC+tzOffsetHours.
func NewCalendarService(creds Credentials, calendarID string, tzOffsetHours int, opts ...Option) *CalendarService {
	return &CalendarService{
		rest:       newRESTClient(defaultCalendarBaseURL, creds, opts...),
		calendarID: calendarID,
		loc:        time.FixedZone(fmt.Sprintf("UTC+%d", tzOffsetHours), tzOffsetHours*3600),
		now:        time.Now,
	}
}

type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

func (t eventTime) value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

type attendee struct {
	Email string `json:"email"`
}

type reminders struct {
	UseDefault bool `json:"useDefault"`
}

type event struct {
	ID          string     `json:"id,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Start       *eventTime `json:"start,omitempty"`
	End         *eventTime `json:"end,omitempty"`
	Attendees   []attendee `json:"attendees,omitempty"`
	Reminders   *reminders `json:"reminders,omitempty"`
}

type eventList struct {
	Items []event `json:"items"`
}

// normalizeTime parses an ISO-8601 timestamp, attaching the service's zone
// when the input has no offset.
func (s *CalendarService) normalizeTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", value, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("thời gian %q không đúng định dạng ISO 8601", value)
	}
	return t, nil
}

// ListEvents lists events between startTime and endTime (ISO-8601). With no
// start the window opens at the start of today in the service zone; with no
// end it spans seven days.
func (s *CalendarService) ListEvents(ctx context.Context, startTime, endTime string) (string, error) {
	var start time.Time
	if startTime == "" {
		n := s.now().In(s.loc)
		start = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 1, 0, s.loc)
	} else {
		var err error
		if start, err = s.normalizeTime(startTime); err != nil {
			return "", err
		}
	}

	var end time.Time
	if endTime == "" {
		end = start.AddDate(0, 0, 7)
	} else {
		var err error
		if end, err = s.normalizeTime(endTime); err != nil {
			return "", err
		}
	}

	var list eventList
	err := s.rest.do(ctx, http.MethodGet, "/calendars/"+s.calendarID+"/events", map[string]string{
		"timeMin":      start.Format(time.RFC3339),
		"timeMax":      end.Format(time.RFC3339),
		"singleEvents": "true",
		"orderBy":      "startTime",
	}, nil, &list)
	if err != nil {
		return "", fmt.Errorf("liệt kê sự kiện thất bại: %w", err)
	}

	if len(list.Items) == 0 {
		return "Không có sự kiện nào được tìm thấy trong khoảng thời gian này.", nil
	}

	formatted := make([]string, 0, len(list.Items))
	for _, ev := range list.Items {
		id := ev.ID
		if id == "" {
			id = "Không có ID"
		}
		summary := ev.Summary
		if summary == "" {
			summary = "Không có tiêu đề"
		}
		notes := ev.Description
		if notes == "" {
			notes = "Không có mô tả"
		}
		var when string
		if ev.Start != nil {
			when = ev.Start.value()
		}
		formatted = append(formatted, fmt.Sprintf("- ID: %s\n  Tóm tắt: %s\n  Thời gian: %s\n  Ghi chú: %s", id, summary, when, notes))
	}
	return "Đây là các sự kiện được tìm thấy:\n" + strings.Join(formatted, "\n\n"), nil
}

// CreateEvent inserts an event into the calendar.
func (s *CalendarService) CreateEvent(ctx context.Context, summary, startTime, endTime, description string, attendees []string) (string, error) {
	if summary == "" {
		return "", fmt.Errorf("không thể tạo sự kiện mà không có tiêu đề")
	}
	body := event{
		Summary:     summary,
		Description: description,
		Start:       &eventTime{DateTime: startTime, TimeZone: calendarTimeZoneName},
		End:         &eventTime{DateTime: endTime, TimeZone: calendarTimeZoneName},
		Reminders:   &reminders{UseDefault: true},
	}
	for _, email := range attendees {
		body.Attendees = append(body.Attendees, attendee{Email: email})
	}

	var created event
	if err := s.rest.do(ctx, http.MethodPost, "/calendars/"+s.calendarID+"/events", nil, body, &created); err != nil {
		return "", fmt.Errorf("tạo sự kiện thất bại: %w", err)
	}

	var when string
	if created.Start != nil {
		when = created.Start.value()
	}
	return fmt.Sprintf("Đã tạo thành công sự kiện '%s' vào lúc %s.", created.Summary, when), nil
}

// UpdateEvent fetches an event by ID, applies the non-empty new fields, and
// writes it back.
func (s *CalendarService) UpdateEvent(ctx context.Context, eventID, newSummary, newStartTime, newEndTime, newDescription string, newAttendees []string) (string, error) {
	if eventID == "" {
		return "", fmt.Errorf("cần phải có ID của sự kiện để cập nhật")
	}

	var ev event
	if err := s.rest.do(ctx, http.MethodGet, "/calendars/"+s.calendarID+"/events/"+eventID, nil, nil, &ev); err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("không tìm thấy sự kiện với ID '%s'", eventID)
		}
		return "", fmt.Errorf("cập nhật sự kiện thất bại: %w", err)
	}

	if newSummary != "" {
		ev.Summary = newSummary
	}
	if newStartTime != "" {
		if ev.Start == nil {
			ev.Start = &eventTime{TimeZone: calendarTimeZoneName}
		}
		ev.Start.DateTime = newStartTime
	}
	if newEndTime != "" {
		if ev.End == nil {
			ev.End = &eventTime{TimeZone: calendarTimeZoneName}
		}
		ev.End.DateTime = newEndTime
	}
	if newDescription != "" {
		ev.Description = newDescription
	}
	if len(newAttendees) > 0 {
		ev.Attendees = ev.Attendees[:0]
		for _, email := range newAttendees {
			ev.Attendees = append(ev.Attendees, attendee{Email: email})
		}
	}

	var updated event
	if err := s.rest.do(ctx, http.MethodPut, "/calendars/"+s.calendarID+"/events/"+eventID, nil, ev, &updated); err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("không tìm thấy sự kiện với ID '%s'", eventID)
		}
		return "", fmt.Errorf("cập nhật sự kiện thất bại: %w", err)
	}
	return fmt.Sprintf("Đã cập nhật thành công sự kiện '%s'.", updated.Summary), nil
}

// DeleteEvent deletes an event by ID.
func (s *CalendarService) DeleteEvent(ctx context.Context, eventID string) (string, error) {
	if eventID == "" {
		return "", fmt.Errorf("cần phải có ID của sự kiện để xóa")
	}
	if err := s.rest.do(ctx, http.MethodDelete, "/calendars/"+s.calendarID+"/events/"+eventID, nil, nil, nil); err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("không tìm thấy sự kiện với ID '%s' để xóa", eventID)
		}
		return "", fmt.Errorf("xóa sự kiện thất bại: %w", err)
	}
	return fmt.Sprintf("Đã xóa thành công sự kiện với ID: %s.", eventID), nil
}

// Tools exposes the calendar operations as registry specs.
func (s *CalendarService) Tools() []tools.Spec {
	return []tools.Spec{
		{
			Name:        "list_events",
			Description: "Liệt kê các sự kiện trong một khoảng thời gian cụ thể. 'start_time' và 'end_time' phải ở định dạng ISO 8601; bỏ trống để lấy 7 ngày tới.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"start_time": {"type": "string", "description": "Thời gian bắt đầu, ISO 8601"},
					"end_time": {"type": "string", "description": "Thời gian kết thúc, ISO 8601"}
				}
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.ListEvents(ctx, tools.StringArg(args, "start_time"), tools.StringArg(args, "end_time"))
			},
		},
		{
			Name:        "create_event",
			Description: "Tạo một sự kiện mới trong lịch chính. 'summary' là tiêu đề; 'start_time' và 'end_time' phải có định dạng ISO 8601.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"summary": {"type": "string", "description": "Tiêu đề của sự kiện"},
					"start_time": {"type": "string", "description": "Thời gian bắt đầu, ISO 8601"},
					"end_time": {"type": "string", "description": "Thời gian kết thúc, ISO 8601"},
					"description": {"type": "string", "description": "Mô tả chi tiết"},
					"attendees": {"type": "array", "items": {"type": "string"}, "description": "Email của người tham dự"}
				},
				"required": ["summary", "start_time", "end_time"]
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.CreateEvent(ctx,
					tools.StringArg(args, "summary"),
					tools.StringArg(args, "start_time"),
					tools.StringArg(args, "end_time"),
					tools.StringArg(args, "description"),
					tools.StringSliceArg(args, "attendees"))
			},
		},
		{
			Name:        "update_event",
			Description: "Cập nhật một sự kiện đã có bằng ID của nó. Chỉ các trường được cung cấp mới bị thay đổi.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"event_id": {"type": "string", "description": "ID của sự kiện cần cập nhật"},
					"new_summary": {"type": "string"},
					"new_start_time": {"type": "string"},
					"new_end_time": {"type": "string"},
					"new_description": {"type": "string"},
					"new_attendees": {"type": "array", "items": {"type": "string"}}
				},
				"required": ["event_id"]
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.UpdateEvent(ctx,
					tools.StringArg(args, "event_id"),
					tools.StringArg(args, "new_summary"),
					tools.StringArg(args, "new_start_time"),
					tools.StringArg(args, "new_end_time"),
					tools.StringArg(args, "new_description"),
					tools.StringSliceArg(args, "new_attendees"))
			},
		},
		{
			Name:        "delete_event",
			Description: "Xóa một sự kiện bằng ID của nó. Hành động này không thể hoàn tác.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"event_id": {"type": "string", "description": "ID của sự kiện cần xóa"}
				},
				"required": ["event_id"]
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.DeleteEvent(ctx, tools.StringArg(args, "event_id"))
			},
		},
	}
}
