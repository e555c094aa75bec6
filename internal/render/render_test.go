package render

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskbot/internal/models"
)

var start = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func newTask(title, description string) *models.Task {
	return &models.Task{ID: title, Title: title, Description: description, StartDate: start}
}

func TestWrapColumn(t *testing.T) {
	assert.Equal(t, []string{"the quick", "brown fox"}, WrapColumn("the quick brown fox", 10))
	assert.Equal(t, []string{"ab", "cdefg", "hijkl", "mn"}, WrapColumn("ab cdefghijkl mn", 5))
	assert.Equal(t, []string{""}, WrapColumn("", 10))
	assert.Equal(t, []string{"a b"}, WrapColumn("a\n  b", 10))
}

func TestWrapColumn_HardSplitsLongWord(t *testing.T) {
	word := strings.Repeat("a", 95)

	lines := WrapColumn(word, 40)

	require.Len(t, lines, 3)
	assert.Len(t, lines[0], 40)
	assert.Len(t, lines[1], 40)
	assert.Len(t, lines[2], 15)
	assert.Equal(t, word, strings.Join(lines, ""))
}

func TestWrapColumn_CountsRunes(t *testing.T) {
	lines := WrapColumn(strings.Repeat("é", 12), 5)

	require.Len(t, lines, 3)
	assert.Equal(t, 5, utf8.RuneCountInString(lines[0]))
	assert.Equal(t, 2, utf8.RuneCountInString(lines[2]))
}

func TestPages_NoTasksYieldsHeaderPage(t *testing.T) {
	pages := Pages(nil)

	require.Len(t, pages, 1)
	assert.Equal(t, Default().Header(), pages[0])
}

func TestPages_BlockLayout(t *testing.T) {
	end := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	task := newTask("Ship release", "")
	task.Done = true
	task.EndDate = &end
	task.AddAssignees(models.UserRef("7"), models.RoleRef("QA"))

	pages := Pages([]*models.Task{task})

	require.Len(t, pages, 1)
	lines := strings.Split(strings.TrimSuffix(pages[0], "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "`|Ship release"))
	assert.Contains(t, lines[1], "|-"+strings.Repeat(" ", 39)+"|")
	assert.Contains(t, lines[1], "|true   |01/03/2024|02/04/2024|`<@7> QA")
}

func TestPages_ContinuationRowsHaveBlankCells(t *testing.T) {
	task := newTask(strings.Repeat("t", 90), "short")

	rows := Default().Block(task)

	require.Len(t, rows, 3)
	assert.Equal(t, "`|"+strings.Repeat("t", 40)+"|"+strings.Repeat(" ", 40)+"|`\n", rows[1])
	assert.Contains(t, rows[0], "|false  |01/03/2024|-         |`")
}

func TestPages_CapAndCoverage(t *testing.T) {
	var tasks []*models.Task
	for i := 0; i < 60; i++ {
		task := newTask(fmt.Sprintf("task-%02d", i), strings.Repeat("word ", i%15))
		task.AddAssignees(models.UserRef(fmt.Sprint(i)))
		tasks = append(tasks, task)
	}

	pages := Pages(tasks)

	require.Greater(t, len(pages), 1)
	header := Default().Header()
	for _, page := range pages {
		assert.LessOrEqual(t, utf8.RuneCountInString(page), 2000)
		assert.True(t, strings.HasPrefix(page, header))
	}
	joined := strings.Join(pages, "")
	for i := 0; i < 60; i++ {
		assert.Equal(t, 1, strings.Count(joined, fmt.Sprintf("<@%d>", i)), "assignee %d", i)
		assert.Equal(t, 1, strings.Count(joined, fmt.Sprintf("task-%02d", i)), "task %d", i)
	}
}

func TestPages_ManyAssigneesWrapAcrossRows(t *testing.T) {
	task := newTask("crowded", "")
	for i := 0; i < 120; i++ {
		task.AddAssignees(models.UserRef(fmt.Sprint(i)))
	}

	rows := Default().Block(task)
	require.Greater(t, len(rows), 1)
	assert.Contains(t, rows[1], "|"+strings.Repeat(" ", 7)+"|"+strings.Repeat(" ", 10)+"|"+strings.Repeat(" ", 10)+"|`<@")

	pages := Pages([]*models.Task{task})

	require.Greater(t, len(pages), 1)
	for _, page := range pages {
		assert.LessOrEqual(t, utf8.RuneCountInString(page), 2000)
	}
	joined := strings.Join(pages, "")
	for i := 0; i < 120; i++ {
		assert.Equal(t, 1, strings.Count(joined, fmt.Sprintf("<@%d>", i)), "assignee %d", i)
	}
	assert.Equal(t, 1, strings.Count(joined, "crowded"))
}

func TestPages_OverflowingBlockStartsNextPage(t *testing.T) {
	r := Default()
	rowLen := utf8.RuneCountInString(r.Block(newTask("a", ""))[0])
	r.MaxPageChars = utf8.RuneCountInString(r.Header()) + 2*rowLen

	pages := r.Pages([]*models.Task{newTask("a", ""), newTask("b", ""), newTask("c", "")})

	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "`|a ")
	assert.Contains(t, pages[0], "`|b ")
	assert.Contains(t, pages[1], "`|c ")
}

func TestPages_OversizedBlockIsSplitByRow(t *testing.T) {
	r := Default()
	r.MaxPageChars = 400
	description := strings.TrimSpace(strings.Repeat(strings.Repeat("x", 40)+" ", 20))

	pages := r.Pages([]*models.Task{newTask("big", description)})

	require.Greater(t, len(pages), 1)
	rows := 0
	for _, page := range pages {
		assert.LessOrEqual(t, utf8.RuneCountInString(page), 400)
		rows += strings.Count(page, "\n") - 1
	}
	assert.Equal(t, 20, rows)
}

func TestPaginator(t *testing.T) {
	p := NewPaginator([]string{"one", "two", "three"})

	assert.Equal(t, "one", p.Current())
	assert.False(t, p.HasPrevious())
	assert.False(t, p.Previous())
	assert.True(t, p.Next())
	assert.True(t, p.Next())
	assert.Equal(t, 2, p.Index())
	assert.False(t, p.HasNext())
	assert.False(t, p.Next())
	assert.True(t, p.Previous())
	assert.Equal(t, "two", p.Current())
}

func TestReminder(t *testing.T) {
	end := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	task := newTask("Pay invoices", "vendor batch")
	task.EndDate = &end
	task.AddAssignees(models.RoleRef("Finance"), models.UserRef("3"))

	assert.Equal(t,
		"# TASK Pay invoices is not done\n## finish this task before 30/06/2024\nvendor batch\nFinance <@3>",
		Reminder(task))

	task.EndDate = nil
	assert.True(t, strings.HasPrefix(Reminder(task), "# TASK Pay invoices is not done\n## finish this task\n"))
}
