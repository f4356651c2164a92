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

const defaultTasksBaseURL = "https://tasks.googleapis.com/tasks/v1"

// TasksService wraps the Google Tasks v1 API for one task list.
type TasksService struct {
	rest       *restClient
	taskListID string
}

// NewTasksService creates a service operating on taskListID ('@default' for
// the default list).
func NewTasksService(creds Credentials, taskListID string, opts ...Option) *TasksService {
	return &TasksService{
		rest:       newRESTClient(defaultTasksBaseURL, creds, opts...),
		taskListID: taskListID,
	}
}

type task struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Notes  string `json:"notes,omitempty"`
	Status string `json:"status,omitempty"`
	Due    string `json:"due,omitempty"`
}

type taskItems struct {
	Items []task `json:"items"`
}

// formatDueDate converts a YYYY-MM-DD date into the RFC3339 timestamp the API
// requires (midnight UTC).
func formatDueDate(dateStr string) (string, error) {
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return "", fmt.Errorf("định dạng ngày '%s' không hợp lệ. Vui lòng dùng YYYY-MM-DD", dateStr)
	}
	return t.UTC().Format(time.RFC3339), nil
}

// ListTasks lists all tasks in the list, completed and hidden ones included.
func (s *TasksService) ListTasks(ctx context.Context) (string, error) {
	var list taskItems
	err := s.rest.do(ctx, http.MethodGet, "/lists/"+s.taskListID+"/tasks", map[string]string{
		"showCompleted": "true",
		"showHidden":    "true",
	}, nil, &list)
	if err != nil {
		return "", fmt.Errorf("liệt kê công việc thất bại: %w", err)
	}

	if len(list.Items) == 0 {
		return "Bạn không có công việc nào.", nil
	}

	formatted := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		id := item.ID
		if id == "" {
			id = "Không có ID"
		}
		title := item.Title
		if title == "" {
			title = "Không có tiêu đề"
		}
		status := item.Status
		if status == "" {
			status = "needsAction"
		}
		due := "Không có hạn"
		if item.Due != "" {
			due = strings.SplitN(item.Due, "T", 2)[0]
		}
		formatted = append(formatted, fmt.Sprintf("-  ID: %s\n  Tiêu đề: %s\n  Hạn chót: %s\n  Trạng thái: %s", id, title, due, status))
	}
	return "Đây là danh sách các công việc của bạn:\n" + strings.Join(formatted, "\n\n"), nil
}

// CreateTask inserts a new task. dueDate, when set, must be YYYY-MM-DD.
func (s *TasksService) CreateTask(ctx context.Context, title, notes, dueDate string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("không thể tạo công việc mà không có tiêu đề")
	}
	body := task{Title: title, Notes: notes}
	if dueDate != "" {
		due, err := formatDueDate(dueDate)
		if err != nil {
			return "", err
		}
		body.Due = due
	}

	var created task
	if err := s.rest.do(ctx, http.MethodPost, "/lists/"+s.taskListID+"/tasks", nil, body, &created); err != nil {
		return "", fmt.Errorf("tạo công việc thất bại: %w", err)
	}
	return fmt.Sprintf("Đã tạo thành công công việc: '%s'.", created.Title), nil
}

// UpdateTask patches an existing task. newStatus must be 'completed' or
// 'needsAction' when provided; at least one field must be set.
func (s *TasksService) UpdateTask(ctx context.Context, taskID, newTitle, newNotes, newStatus string) (string, error) {
	if taskID == "" {
		return "", fmt.Errorf("cần phải có ID của công việc để cập nhật")
	}

	body := task{}
	if newTitle != "" {
		body.Title = newTitle
	}
	if newNotes != "" {
		body.Notes = newNotes
	}
	if newStatus != "" {
		if newStatus != "completed" && newStatus != "needsAction" {
			return "", fmt.Errorf("trạng thái mới phải là 'completed' hoặc 'needsAction'")
		}
		body.Status = newStatus
	}
	if body == (task{}) {
		return "", fmt.Errorf("không có thông tin gì để cập nhật")
	}

	var updated task
	if err := s.rest.do(ctx, http.MethodPatch, "/lists/"+s.taskListID+"/tasks/"+taskID, nil, body, &updated); err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("không tìm thấy công việc với ID '%s'", taskID)
		}
		return "", fmt.Errorf("cập nhật công việc thất bại: %w", err)
	}
	return fmt.Sprintf("Đã cập nhật thành công công việc ID %s. Tiêu đề mới: '%s'.", taskID, updated.Title), nil
}

// DeleteTask deletes a task by ID.
func (s *TasksService) DeleteTask(ctx context.Context, taskID string) (string, error) {
	if taskID == "" {
		return "", fmt.Errorf("cần phải có ID của công việc để xóa")
	}
	if err := s.rest.do(ctx, http.MethodDelete, "/lists/"+s.taskListID+"/tasks/"+taskID, nil, nil, nil); err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("không tìm thấy công việc với ID '%s' để xóa", taskID)
		}
		return "", fmt.Errorf("xóa công việc thất bại: %w", err)
	}
	return fmt.Sprintf("Đã xóa thành công công việc với ID: %s.", taskID), nil
}

// Tools exposes the task operations as registry specs.
func (s *TasksService) Tools() []tools.Spec {
	return []tools.Spec{
		{
			Name:        "list_tasks",
			Description: "Liệt kê các công việc trong danh sách mặc định, bao gồm cả công việc đã hoàn thành.",
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.ListTasks(ctx)
			},
		},
		{
			Name:        "create_task",
			Description: "Tạo một công việc mới. 'title' là bắt buộc; 'notes' là mô tả chi tiết; 'due_date' phải có định dạng YYYY-MM-DD.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"title": {"type": "string", "description": "Tiêu đề công việc"},
					"notes": {"type": "string", "description": "Mô tả chi tiết"},
					"due_date": {"type": "string", "description": "Hạn chót, định dạng YYYY-MM-DD"}
				},
				"required": ["title"]
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.CreateTask(ctx,
					tools.StringArg(args, "title"),
					tools.StringArg(args, "notes"),
					tools.StringArg(args, "due_date"))
			},
		},
		{
			Name:        "update_task",
			Description: "Cập nhật một công việc đã có bằng ID của nó. 'new_status' là 'completed' để đánh dấu hoàn thành hoặc 'needsAction' để đánh dấu chưa hoàn thành.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"task_id": {"type": "string", "description": "ID của công việc cần cập nhật"},
					"new_title": {"type": "string"},
					"new_notes": {"type": "string"},
					"new_status": {"type": "string", "enum": ["completed", "needsAction"]}
				},
				"required": ["task_id"]
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.UpdateTask(ctx,
					tools.StringArg(args, "task_id"),
					tools.StringArg(args, "new_title"),
					tools.StringArg(args, "new_notes"),
					tools.StringArg(args, "new_status"))
			},
		},
		{
			Name:        "delete_task",
			Description: "Xóa một công việc bằng ID của nó. Hành động này không thể hoàn tác.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"task_id": {"type": "string", "description": "ID của công việc cần xóa"}
				},
				"required": ["task_id"]
			}`),
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				return s.DeleteTask(ctx, tools.StringArg(args, "task_id"))
			},
		},
	}
}
