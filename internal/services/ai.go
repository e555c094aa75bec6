package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/taskbot/internal/constants"
	"github.com/yukikurage/taskbot/internal/models"
)

// TaskGenerator extracts tasks from free text.
type TaskGenerator interface {
	GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error)
}

type AIService struct {
	client *openai.Client
	now    func() time.Time
}

type GeneratedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		now:    time.Now,
	}
}

// NewAIServiceWithBaseURL targets an OpenAI compatible endpoint.
func NewAIServiceWithBaseURL(apiKey, baseURL string) *AIService {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		now:    time.Now,
	}
}

// GenerateTasksFromText analyzes text and extracts tasks using OpenAI GPT
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}

	currentTime := s.now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`You extract actionable tasks from chat messages.

Current time: %s

Text:
%s

Return a JSON array of the tasks you found:
[
  {
    "title": "short task title",
    "description": "details of the task",
    "due_date": "deadline in ISO8601, e.g. 2025-10-28T23:59:59Z, or null when none is given"
  }
]

Rules:
- Return [] when there is no task
- Resolve relative deadlines such as "tomorrow" or "next week" to concrete dates
- due_date is either an ISO8601 string or null
- Return only JSON, no explanation`, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// GenerateTasks appends the tasks extracted from text, assigned to
// assignees. Entries without a title are skipped.
func (m *TaskManager) GenerateTasks(ctx context.Context, channelID, text string, assignees []models.Assignee) ([]*models.Task, error) {
	if m.ai == nil {
		return nil, ErrAIServiceNotConfigured
	}

	generated, err := m.ai.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}
	if len(generated) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(generated) > constants.MaxAIGeneratedTasks {
		generated = generated[:constants.MaxAIGeneratedTasks]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var created []*models.Task
	for _, g := range generated {
		t := models.NewTask(m.newID(), m.workspaceID, now)
		if err := t.Apply(now, models.SetTitle(g.Title), models.SetDescription(g.Description)); err != nil {
			continue
		}
		if g.DueDate != nil {
			end := models.Day(*g.DueDate)
			t.EndDate = &end
		}
		t.AddAssignees(assignees...)
		created = append(created, t)
	}
	if len(created) == 0 {
		return nil, ErrAINoValidTasks
	}

	err = m.commit(func(tasks []*models.Task) ([]*models.Task, error) {
		for _, t := range created {
			tasks = append(tasks, t.Clone())
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Created %d task(s):\n%s", len(created), titles(created))
	return created, m.post(ctx, channelID, msg)
}
